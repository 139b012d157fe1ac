// Package agent wraps one configured language-model endpoint behind a
// structured-output run loop with a bounded retry policy and optional
// callable tools. Constructed agents are cached in a Registry keyed by
// configuration fingerprint.
package agent

import (
	"context"
	"encoding/json"
)

// Message roles used on the model wire.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one entry of a model conversation.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolName   string     `json:"tool_name,omitempty"`
}

// ToolCall is a model request to invoke a named tool with JSON arguments.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolSpec declares a callable tool: a JSON-schema parameter description
// plus the handler executed when the model calls it.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  json.RawMessage
	Handler     func(ctx context.Context, args json.RawMessage) (string, error)
}

// Request is one completion round sent to a model client.
type Request struct {
	Instructions string
	Messages     []Message
	Tools        []ToolSpec
	MaxTokens    int
	Temperature  float32
}

// Response is the model's reply: either final content or tool calls to run.
type Response struct {
	Content   string
	ToolCalls []ToolCall
	Usage     Usage
}

// Usage counts tokens for one completion round.
type Usage struct {
	RequestTokens  int `json:"request_tokens"`
	ResponseTokens int `json:"response_tokens"`
	TotalTokens    int `json:"total_tokens"`
}

// Add accumulates another round's usage.
func (u *Usage) Add(other Usage) {
	u.RequestTokens += other.RequestTokens
	u.ResponseTokens += other.ResponseTokens
	u.TotalTokens += other.TotalTokens
}

// ModelClient is the provider port. Implementations translate a Request
// into one round-trip against a concrete LLM API.
type ModelClient interface {
	Complete(ctx context.Context, req *Request) (*Response, error)
}

// Validator is implemented by output types that carry invariants beyond
// JSON well-formedness. A validation failure is treated like any other
// schema violation: fatal to the calling stage.
type Validator interface {
	Validate() error
}
