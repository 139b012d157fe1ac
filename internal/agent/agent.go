package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	// maxAttempts bounds completion round-trips against transient
	// model/tool-transport failures. Schema violations are never retried.
	maxAttempts = 2

	// defaultMaxToolRounds bounds the tool loop so a model that keeps
	// requesting tool calls cannot spin forever.
	defaultMaxToolRounds = 12
)

// ErrNoOutput is returned when the model produced neither content nor tool
// calls within the allowed rounds.
var ErrNoOutput = errors.New("agent: model produced no structured output")

// SchemaError wraps a structured-output violation. It is fatal to the
// calling stage and is never retried.
type SchemaError struct {
	Raw string
	Err error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("agent: structured output violation: %v", e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// Agent binds a model client to fixed instructions, an output schema
// (the target struct), optional tools, and model-call settings.
type Agent struct {
	client        ModelClient
	instructions  string
	tools         []ToolSpec
	maxTokens     int
	temperature   float32
	maxToolRounds int
	logger        *zap.Logger
}

// Option configures an Agent.
type Option func(*Agent)

// WithTools equips the agent with callable tools.
func WithTools(tools ...ToolSpec) Option {
	return func(a *Agent) { a.tools = append(a.tools, tools...) }
}

// WithMaxToolRounds overrides the tool-loop bound.
func WithMaxToolRounds(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxToolRounds = n
		}
	}
}

// New creates an agent. Temperature is pinned by the caller (0.0 throughout
// the pipeline) for reproducibility.
func New(client ModelClient, instructions string, maxTokens int, temperature float32, logger *zap.Logger, opts ...Option) *Agent {
	a := &Agent{
		client:        client,
		instructions:  instructions,
		maxTokens:     maxTokens,
		temperature:   temperature,
		maxToolRounds: defaultMaxToolRounds,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Instructions returns the agent's fixed instruction string.
func (a *Agent) Instructions() string { return a.instructions }

// RunResult carries the transcript and token usage of one agent run.
type RunResult struct {
	Messages []Message
	Usage    Usage
	Raw      string
}

// Run sends the prompt, drives the tool loop to completion, and decodes the
// model's final content into out. Malformed or invariant-violating output
// surfaces as a *SchemaError; the raw output is never silently coerced.
func (a *Agent) Run(ctx context.Context, prompt string, out any) (*RunResult, error) {
	result := &RunResult{
		Messages: []Message{{Role: RoleUser, Content: prompt}},
	}
	messages := []Message{{Role: RoleUser, Content: prompt}}

	for round := 0; round < a.maxToolRounds; round++ {
		resp, err := a.complete(ctx, messages)
		if err != nil {
			return result, err
		}
		result.Usage.Add(resp.Usage)

		if len(resp.ToolCalls) > 0 {
			assistant := Message{Role: RoleAssistant, Content: resp.Content, ToolCalls: resp.ToolCalls}
			messages = append(messages, assistant)
			result.Messages = append(result.Messages, assistant)

			for _, call := range resp.ToolCalls {
				toolMsg, err := a.dispatch(ctx, call)
				if err != nil {
					return result, err
				}
				messages = append(messages, toolMsg)
				result.Messages = append(result.Messages, toolMsg)
			}
			continue
		}

		assistant := Message{Role: RoleAssistant, Content: resp.Content}
		result.Messages = append(result.Messages, assistant)
		result.Raw = resp.Content

		if err := decode(resp.Content, out); err != nil {
			return result, err
		}
		return result, nil
	}

	return result, ErrNoOutput
}

// complete performs one completion round with the fixed retry budget.
func (a *Agent) complete(ctx context.Context, messages []Message) (*Response, error) {
	req := &Request{
		Instructions: a.instructions,
		Messages:     messages,
		Tools:        a.tools,
		MaxTokens:    a.maxTokens,
		Temperature:  a.temperature,
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := a.client.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if a.logger != nil && attempt < maxAttempts {
			a.logger.Warn("Model call failed, retrying",
				zap.Int("attempt", attempt),
				zap.Error(err))
		}
	}
	return nil, fmt.Errorf("model call failed after %d attempts: %w", maxAttempts, lastErr)
}

// dispatch runs one tool call and wraps its result as a tool message. A
// handler error is reported back to the model rather than aborting the run;
// search hiccups are the model's problem to route around.
func (a *Agent) dispatch(ctx context.Context, call ToolCall) (Message, error) {
	spec, ok := a.tool(call.Name)
	if !ok {
		return Message{}, fmt.Errorf("model requested unknown tool %q", call.Name)
	}

	content, err := spec.Handler(ctx, call.Arguments)
	if err != nil {
		if a.logger != nil {
			a.logger.Warn("Tool call failed",
				zap.String("tool", call.Name),
				zap.Error(err))
		}
		content = fmt.Sprintf("tool error: %v", err)
	}

	return Message{
		Role:       RoleTool,
		Content:    content,
		ToolCallID: call.ID,
		ToolName:   call.Name,
	}, nil
}

func (a *Agent) tool(name string) (ToolSpec, bool) {
	for _, t := range a.tools {
		if t.Name == name {
			return t, true
		}
	}
	return ToolSpec{}, false
}

// decode strictly parses model content into out. Providers occasionally
// wrap the JSON object in prose or fencing, so decoding falls back to the
// outermost brace pair before giving up.
func decode(content string, out any) error {
	trimmed := strings.TrimSpace(content)
	if err := json.Unmarshal([]byte(trimmed), out); err != nil {
		start := strings.Index(trimmed, "{")
		end := strings.LastIndex(trimmed, "}")
		if start < 0 || end <= start {
			return &SchemaError{Raw: content, Err: err}
		}
		if err := json.Unmarshal([]byte(trimmed[start:end+1]), out); err != nil {
			return &SchemaError{Raw: content, Err: err}
		}
	}

	if v, ok := out.(Validator); ok {
		if err := v.Validate(); err != nil {
			return &SchemaError{Raw: content, Err: err}
		}
	}
	return nil
}
