// Package config loads application settings from config files, environment
// variables and .env files.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// PlaceholderAPIKeys are values that ship in example configs and must be
// treated as unset.
var PlaceholderAPIKeys = []string{"your_tavily_api_key_here", "test_key"}

type Config struct {
	LLM     LLMConfig     `mapstructure:"llm"`
	Tavily  TavilyConfig  `mapstructure:"tavily"`
	Gmail   GmailConfig   `mapstructure:"gmail"`
	Search  SearchConfig  `mapstructure:"search"`
	Session SessionConfig `mapstructure:"session"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type LLMConfig struct {
	Provider string `mapstructure:"provider"`
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	BaseURL  string `mapstructure:"base_url"`
}

type TavilyConfig struct {
	APIKey string `mapstructure:"api_key"`
}

type GmailConfig struct {
	CredentialsPath string `mapstructure:"credentials_path"`
	TokenPath       string `mapstructure:"token_path"`
}

// SearchConfig holds the fixed-window quota for the search service.
type SearchConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowSeconds int `mapstructure:"window_seconds"`
}

type SessionConfig struct {
	StorePath string `mapstructure:"store_path"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration. A missing config file is not an error; defaults
// and environment variables still apply.
func Load(cfgFile string) (*Config, error) {
	// .env files are optional.
	_ = godotenv.Load()
	_ = godotenv.Load(".env.local")

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("REMA")
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gpt-4o")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")

	v.SetDefault("gmail.credentials_path", "credentials/credentials.json")
	v.SetDefault("gmail.token_path", "credentials/token.json")

	v.SetDefault("search.max_requests", 10)
	v.SetDefault("search.window_seconds", 60)

	v.SetDefault("session.store_path", "./data/sessions.db")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// IsPlaceholderKey reports whether an API key is empty or one of the known
// placeholder values.
func IsPlaceholderKey(key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return true
	}
	for _, p := range PlaceholderAPIKeys {
		if key == p {
			return true
		}
	}
	return false
}

// ValidateLLM reports whether the LLM configuration is usable.
func (c *Config) ValidateLLM() bool {
	return strings.TrimSpace(c.LLM.APIKey) != "" && c.LLM.Model != "" && c.LLM.BaseURL != ""
}

// ValidateTavily reports whether a real Tavily key is configured.
func (c *Config) ValidateTavily() bool {
	return !IsPlaceholderKey(c.Tavily.APIKey)
}

// ValidateGmail reports whether the Gmail credential paths are set and the
// credentials file exists.
func (c *Config) ValidateGmail() bool {
	if c.Gmail.CredentialsPath == "" || c.Gmail.TokenPath == "" {
		return false
	}
	_, err := os.Stat(c.Gmail.CredentialsPath)
	return err == nil
}
