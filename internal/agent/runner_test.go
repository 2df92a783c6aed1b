package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pydevup/research-email-multi-agent-system/internal/llm"
)

// scriptedClient replays a fixed sequence of model turns.
type scriptedClient struct {
	turns    []llm.ChatMessage
	requests []llm.ChatRequest
	deltas   []string
}

func (c *scriptedClient) ChatStream(_ context.Context, req llm.ChatRequest, onDelta func(string)) (*llm.ChatResponse, error) {
	c.requests = append(c.requests, req)
	if len(c.turns) == 0 {
		return nil, errors.New("script exhausted")
	}

	msg := c.turns[0]
	c.turns = c.turns[1:]

	if len(c.deltas) > 0 && onDelta != nil {
		for _, d := range c.deltas {
			onDelta(d)
		}
	}

	return llm.ResponseFromMessage(msg), nil
}

func toolCall(id, name, args string) llm.ToolCall {
	return llm.ToolCall{
		ID:   id,
		Type: "function",
		Function: llm.ToolCallFunction{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestRunnerToolLoop(t *testing.T) {
	client := &scriptedClient{
		turns: []llm.ChatMessage{
			{Role: "assistant", ToolCalls: []llm.ToolCall{toolCall("call-1", "echo", `{"text":"hello"}`)}},
			{Role: "assistant", Content: "done: hello"},
		},
	}

	var handled []string
	echo := ToolDef{
		Name: "echo",
		Handler: func(_ context.Context, args json.RawMessage) (any, error) {
			var in struct {
				Text string `json:"text"`
			}
			require.NoError(t, json.Unmarshal(args, &in))
			handled = append(handled, in.Text)
			return map[string]string{"echoed": in.Text}, nil
		},
	}

	r := NewRunner("test_agent", client, "test-model", "system", []ToolDef{echo}, zap.NewNop())

	var events []Event
	result, err := r.Run(context.Background(), "say hello", func(ev Event) {
		events = append(events, ev)
	})
	require.NoError(t, err)
	assert.Equal(t, "done: hello", result.Output)
	assert.Equal(t, []string{"hello"}, handled)

	// Tool start, tool result, then the final answer.
	require.Len(t, events, 3)
	started, ok := events[0].(ToolCallStartedEvent)
	require.True(t, ok)
	assert.Equal(t, "echo", started.Tool)

	res, ok := events[1].(ToolCallResultEvent)
	require.True(t, ok)
	assert.JSONEq(t, `{"echoed":"hello"}`, res.Result)

	ended, ok := events[2].(RunEndedEvent)
	require.True(t, ok)
	assert.Equal(t, "done: hello", ended.Output)

	// Second request carries the assistant tool-call message and the tool reply.
	require.Len(t, client.requests, 2)
	msgs := client.requests[1].Messages
	require.Len(t, msgs, 4)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Equal(t, "user", msgs[1].Role)
	assert.Equal(t, "assistant", msgs[2].Role)
	assert.Equal(t, "tool", msgs[3].Role)
	assert.Equal(t, "call-1", msgs[3].ToolCallID)
}

func TestRunnerEmitsTextDeltas(t *testing.T) {
	client := &scriptedClient{
		turns:  []llm.ChatMessage{{Role: "assistant", Content: "hi there"}},
		deltas: []string{"hi ", "there"},
	}
	r := NewRunner("test_agent", client, "test-model", "system", nil, zap.NewNop())

	var got string
	_, err := r.Run(context.Background(), "greet", func(ev Event) {
		if d, ok := ev.(TextDeltaEvent); ok {
			got += d.Delta
		}
	})
	require.NoError(t, err)
	assert.Equal(t, "hi there", got)
}

func TestRunnerToolErrorBecomesPayload(t *testing.T) {
	client := &scriptedClient{
		turns: []llm.ChatMessage{
			{Role: "assistant", ToolCalls: []llm.ToolCall{toolCall("call-1", "boom", `{}`)}},
			{Role: "assistant", Content: "recovered"},
		},
	}

	boom := ToolDef{
		Name: "boom",
		Handler: func(context.Context, json.RawMessage) (any, error) {
			return nil, errors.New("exploded")
		},
	}

	r := NewRunner("test_agent", client, "test-model", "system", []ToolDef{boom}, zap.NewNop())

	result, err := r.Run(context.Background(), "go", nil)
	require.NoError(t, err)
	assert.Equal(t, "recovered", result.Output)

	// The model sees the error as a tool reply, the run is not aborted.
	msgs := client.requests[1].Messages
	assert.JSONEq(t, `{"error":"exploded"}`, msgs[3].Content)
}

func TestRunnerUnknownTool(t *testing.T) {
	client := &scriptedClient{
		turns: []llm.ChatMessage{
			{Role: "assistant", ToolCalls: []llm.ToolCall{toolCall("call-1", "nope", `{}`)}},
			{Role: "assistant", Content: "ok"},
		},
	}
	r := NewRunner("test_agent", client, "test-model", "system", nil, zap.NewNop())

	result, err := r.Run(context.Background(), "go", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Output)

	msgs := client.requests[1].Messages
	assert.JSONEq(t, `{"error":"unknown tool: nope"}`, msgs[3].Content)
}

func TestRunnerMaxTurnsExceeded(t *testing.T) {
	call := llm.ChatMessage{Role: "assistant", ToolCalls: []llm.ToolCall{toolCall("c", "spin", `{}`)}}
	turns := make([]llm.ChatMessage, defaultMaxTurns+1)
	for i := range turns {
		turns[i] = call
	}
	client := &scriptedClient{turns: turns}

	spin := ToolDef{
		Name: "spin",
		Handler: func(context.Context, json.RawMessage) (any, error) {
			return map[string]string{"status": "again"}, nil
		},
	}
	r := NewRunner("looper", client, "test-model", "system", []ToolDef{spin}, zap.NewNop())

	_, err := r.Run(context.Background(), "go", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not finish")
}

func TestRunnerModelErrorAborts(t *testing.T) {
	client := &scriptedClient{}
	r := NewRunner("test_agent", client, "test-model", "system", nil, zap.NewNop())

	_, err := r.Run(context.Background(), "go", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model call failed")
}
