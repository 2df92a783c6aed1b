// Package llm is a minimal client for OpenAI-compatible chat-completions
// endpoints, covering tool calling and SSE streaming.
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ChatMessage is one entry in a conversation.
type ChatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
}

// ToolFunction declares a callable function to the model.
type ToolFunction struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Parameters  any    `json:"parameters,omitempty"`
}

// Tool wraps a function declaration.
type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolCallFunction carries the model's chosen function and raw JSON arguments.
type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolCall is one function invocation requested by the model.
type ToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function ToolCallFunction `json:"function"`
}

// ChatRequest is an OpenAI-compatible chat completion request.
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Tools       []Tool        `json:"tools,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type choice struct {
	Index        int         `json:"index"`
	FinishReason string      `json:"finish_reason"`
	Message      ChatMessage `json:"message"`
}

// ChatResponse is the assistant's reply for one request.
type ChatResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []choice `json:"choices"`
}

// ResponseFromMessage wraps a single message in a response, for callers that
// fabricate model turns (scripted agents, tests).
func ResponseFromMessage(msg ChatMessage) *ChatResponse {
	return &ChatResponse{Choices: []choice{{Message: msg}}}
}

// Message returns the first choice's message, or a zero message.
func (r *ChatResponse) Message() ChatMessage {
	if len(r.Choices) == 0 {
		return ChatMessage{}
	}
	return r.Choices[0].Message
}

// Client talks to one chat-completions endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds a client for the given base URL (e.g.
// https://api.openai.com/v1).
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

func (c *Client) post(ctx context.Context, reqBody ChatRequest) (*http.Response, error) {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(reqBody); err != nil {
		return nil, fmt.Errorf("request encode failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", buf)
	if err != nil {
		return nil, fmt.Errorf("http.NewRequestWithContext failed: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpClient.Do failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, fmt.Errorf("chat completion error (status %d): %s", resp.StatusCode, string(b))
	}

	return resp, nil
}

// Chat sends a non-streaming completion request.
func (c *Client) Chat(ctx context.Context, reqBody ChatRequest) (*ChatResponse, error) {
	reqBody.Stream = false

	resp, err := c.post(ctx, reqBody)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var cr ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("response decode failed: %w", err)
	}

	return &cr, nil
}

type streamDelta struct {
	Content   string `json:"content"`
	ToolCalls []struct {
		Index    int    `json:"index"`
		ID       string `json:"id"`
		Type     string `json:"type"`
		Function struct {
			Name      string `json:"name"`
			Arguments string `json:"arguments"`
		} `json:"function"`
	} `json:"tool_calls"`
}

type streamChunk struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int         `json:"index"`
		FinishReason string      `json:"finish_reason"`
		Delta        streamDelta `json:"delta"`
	} `json:"choices"`
}

// ChatStream sends a streaming completion request, invoking onDelta for every
// text fragment, and returns the fully accumulated response.
func (c *Client) ChatStream(ctx context.Context, reqBody ChatRequest, onDelta func(string)) (*ChatResponse, error) {
	reqBody.Stream = true

	resp, err := c.post(ctx, reqBody)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		content   strings.Builder
		toolCalls []ToolCall
		id        string
		model     string
	)

	for scanner.Scan() {
		line := scanner.Text()

		// Some providers omit the space after the field name.
		var data string
		switch {
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimPrefix(line, "data:")
		default:
			continue
		}

		if data == "[DONE]" {
			break
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}

		if chunk.ID != "" {
			id = chunk.ID
		}
		if chunk.Model != "" {
			model = chunk.Model
		}

		for _, ch := range chunk.Choices {
			if ch.Delta.Content != "" {
				content.WriteString(ch.Delta.Content)
				if onDelta != nil {
					onDelta(ch.Delta.Content)
				}
			}

			for _, tc := range ch.Delta.ToolCalls {
				for tc.Index >= len(toolCalls) {
					toolCalls = append(toolCalls, ToolCall{Type: "function"})
				}
				acc := &toolCalls[tc.Index]
				if tc.ID != "" {
					acc.ID = tc.ID
				}
				if tc.Function.Name != "" {
					acc.Function.Name = tc.Function.Name
				}
				acc.Function.Arguments += tc.Function.Arguments
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("stream read failed: %w", err)
	}

	msg := ChatMessage{Role: "assistant", Content: content.String()}
	if len(toolCalls) > 0 {
		msg.ToolCalls = toolCalls
	}

	return &ChatResponse{
		ID:      id,
		Model:   model,
		Choices: []choice{{Message: msg}},
	}, nil
}
