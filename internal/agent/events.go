package agent

import "encoding/json"

// Event is the closed set of run events a console can render. Consumers
// switch over the concrete types; no other event kinds exist.
type Event interface {
	isEvent()
}

// TextDeltaEvent carries a fragment of streamed model text.
type TextDeltaEvent struct {
	Delta string
}

// ToolCallStartedEvent fires when the model requests a tool invocation.
type ToolCallStartedEvent struct {
	Tool      string
	Arguments json.RawMessage
}

// ToolCallResultEvent carries the JSON-encoded result of a tool invocation.
type ToolCallResultEvent struct {
	Tool   string
	Result string
}

// RunEndedEvent fires once per run with the final output.
type RunEndedEvent struct {
	Output string
}

func (TextDeltaEvent) isEvent()       {}
func (ToolCallStartedEvent) isEvent() {}
func (ToolCallResultEvent) isEvent()  {}
func (RunEndedEvent) isEvent()        {}
