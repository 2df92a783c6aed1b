package sanitize_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pydevup/research-email-multi-agent-system/internal/sanitize"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		name      string
		input     string
		maxLength int
		expected  string
	}{
		{name: "empty", input: "", maxLength: 100, expected: ""},
		{name: "plain text untouched", input: "hello world", maxLength: 100, expected: "hello world"},
		{name: "strips angle brackets", input: "<script>alert(1)</script>", maxLength: 100, expected: "scriptalert(1)/script"},
		{name: "strips quotes and backslash", input: `a"b'c\d`, maxLength: 100, expected: "abcd"},
		{name: "trims surrounding space", input: "  padded  ", maxLength: 100, expected: "padded"},
		{name: "truncates to max length", input: strings.Repeat("x", 50), maxLength: 10, expected: strings.Repeat("x", 10)},
		{name: "zero max falls back to default", input: strings.Repeat("y", 1200), maxLength: 0, expected: strings.Repeat("y", sanitize.DefaultMaxLength)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, sanitize.Sanitize(tc.input, tc.maxLength))
		})
	}
}

func TestSanitizeNeverExceedsEmailLength(t *testing.T) {
	out := sanitize.Sanitize(strings.Repeat("a", 400)+"@example.com", sanitize.EmailMaxLength)
	assert.LessOrEqual(t, len(out), sanitize.EmailMaxLength)
}
