// Package agent implements the two tool-calling agents: a research agent that
// searches the web and summarizes findings, and an email agent restricted to
// Gmail operations. The research agent can delegate to the email agent as if
// it were a tool.
package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/pydevup/research-email-multi-agent-system/internal/llm"
)

const defaultMaxTurns = 8

// LLMClient is the slice of the llm package a runner needs.
type LLMClient interface {
	ChatStream(ctx context.Context, req llm.ChatRequest, onDelta func(string)) (*llm.ChatResponse, error)
}

// ToolHandler executes one tool call. Raw JSON arguments come straight from
// the model; results must be JSON-encodable. A returned error is converted
// into an error payload for the model to self-correct on, it does not abort
// the run.
type ToolHandler func(ctx context.Context, args json.RawMessage) (any, error)

// ToolDef declares a tool to the model and binds its handler.
type ToolDef struct {
	Name        string
	Description string
	Parameters  map[string]any
	Handler     ToolHandler
}

// RunResult is the final product of one agent run.
type RunResult struct {
	Output string
}

// Runner drives one agent: system prompt, tool registry, and the
// request/execute loop against the model.
type Runner struct {
	name         string
	client       LLMClient
	model        string
	systemPrompt string
	tools        []ToolDef
	byName       map[string]ToolDef
	maxTurns     int
	log          *zap.Logger
}

// NewRunner assembles an agent runner.
func NewRunner(name string, client LLMClient, model, systemPrompt string, tools []ToolDef, log *zap.Logger) *Runner {
	byName := make(map[string]ToolDef, len(tools))
	for _, t := range tools {
		byName[t.Name] = t
	}

	return &Runner{
		name:         name,
		client:       client,
		model:        model,
		systemPrompt: systemPrompt,
		tools:        tools,
		byName:       byName,
		maxTurns:     defaultMaxTurns,
		log:          log,
	}
}

// Name returns the agent's name.
func (r *Runner) Name() string { return r.name }

// Tools returns the registered tool definitions.
func (r *Runner) Tools() []ToolDef { return r.tools }

func (r *Runner) toolDecls() []llm.Tool {
	decls := make([]llm.Tool, 0, len(r.tools))
	for _, t := range r.tools {
		decls = append(decls, llm.Tool{
			Type: "function",
			Function: llm.ToolFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return decls
}

// Run executes one agent turn loop: the model is called, requested tools are
// executed to completion one at a time, and the loop repeats until the model
// produces a final text answer. Events are emitted through onEvent (may be
// nil).
func (r *Runner) Run(ctx context.Context, prompt string, onEvent func(Event)) (*RunResult, error) {
	emit := onEvent
	if emit == nil {
		emit = func(Event) {}
	}

	messages := []llm.ChatMessage{
		{Role: "system", Content: r.systemPrompt},
		{Role: "user", Content: prompt},
	}

	for turn := 0; turn < r.maxTurns; turn++ {
		resp, err := r.client.ChatStream(ctx, llm.ChatRequest{
			Model:    r.model,
			Messages: messages,
			Tools:    r.toolDecls(),
		}, func(delta string) {
			emit(TextDeltaEvent{Delta: delta})
		})
		if err != nil {
			return nil, fmt.Errorf("model call failed: %w", err)
		}

		msg := resp.Message()
		messages = append(messages, msg)

		if len(msg.ToolCalls) == 0 {
			emit(RunEndedEvent{Output: msg.Content})
			return &RunResult{Output: msg.Content}, nil
		}

		for _, tc := range msg.ToolCalls {
			result := r.execute(ctx, tc, emit)
			messages = append(messages, llm.ChatMessage{
				Role:       "tool",
				ToolCallID: tc.ID,
				Content:    result,
			})
		}
	}

	return nil, fmt.Errorf("agent %s did not finish within %d turns", r.name, r.maxTurns)
}

func (r *Runner) execute(ctx context.Context, tc llm.ToolCall, emit func(Event)) string {
	args := json.RawMessage(tc.Function.Arguments)
	emit(ToolCallStartedEvent{Tool: tc.Function.Name, Arguments: args})

	payload := r.executePayload(ctx, tc.Function.Name, args)

	encoded, err := json.Marshal(payload)
	if err != nil {
		encoded = []byte(fmt.Sprintf(`{"error":%q}`, err.Error()))
	}

	result := string(encoded)
	emit(ToolCallResultEvent{Tool: tc.Function.Name, Result: result})

	return result
}

func (r *Runner) executePayload(ctx context.Context, name string, args json.RawMessage) any {
	tool, ok := r.byName[name]
	if !ok {
		r.log.Warn("unknown tool requested", zap.String("agent", r.name), zap.String("tool", name))
		return map[string]string{"error": "unknown tool: " + name}
	}

	r.log.Debug("executing tool", zap.String("agent", r.name), zap.String("tool", name))

	payload, err := tool.Handler(ctx, args)
	if err != nil {
		r.log.Error("tool execution failed", zap.String("tool", name), zap.Error(err))
		return map[string]string{"error": err.Error()}
	}

	return payload
}
