package validate_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pydevup/research-email-multi-agent-system/internal/validate"
)

func TestEmailsClassification(t *testing.T) {
	input := []string{
		"valid@example.com",
		"invalid-email",
		"another.valid@domain.co.uk",
		"@nodomain.com",
	}

	result := validate.Emails(input)

	assert.Equal(t, []string{"valid@example.com", "another.valid@domain.co.uk"}, result.ValidEmails)
	assert.Equal(t, []string{"invalid-email", "@nodomain.com"}, result.InvalidEmails)
	assert.Empty(t, result.SuspiciousEmails)
	assert.Equal(t, 2, result.TotalValid)
	assert.Equal(t, 2, result.TotalInvalid)
	assert.Equal(t, 0, result.TotalSuspicious)
}

func TestEmailsSuspiciousDomains(t *testing.T) {
	cases := []struct {
		name  string
		email string
	}{
		{name: "consecutive dots", email: "user@bad..example.com"},
		{name: "consecutive dashes", email: "user@bad--example.com"},
		{name: "domain starts with dash", email: "user@-example.com"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := validate.Emails([]string{tc.email})
			assert.Equal(t, []string{tc.email}, result.SuspiciousEmails)
			assert.Empty(t, result.ValidEmails)
			assert.Empty(t, result.InvalidEmails)
		})
	}
}

func TestEmailsEveryInputClassifiedExactlyOnce(t *testing.T) {
	input := []string{
		"one@example.com",
		"not-an-email",
		"two@ok.org",
		"weird@a..b.com",
		"",
		"three@fine.io",
		strings.Repeat("a", 300) + "@long.com",
	}

	result := validate.Emails(input)

	total := result.TotalValid + result.TotalInvalid + result.TotalSuspicious
	assert.Equal(t, len(input), total)
	assert.Len(t, result.ValidEmails, result.TotalValid)
	assert.Len(t, result.InvalidEmails, result.TotalInvalid)
	assert.Len(t, result.SuspiciousEmails, result.TotalSuspicious)
}

func TestEmailsSanitizesBeforeMatching(t *testing.T) {
	// Quotes are stripped before the format check, so the remainder is valid.
	result := validate.Emails([]string{`"quoted"@example.com`})
	assert.Equal(t, []string{"quoted@example.com"}, result.ValidEmails)
}

func TestEmailsEmptyInput(t *testing.T) {
	result := validate.Emails(nil)
	assert.Equal(t, 0, result.TotalValid+result.TotalInvalid+result.TotalSuspicious)
}
