package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"

	"leadsagent/internal/agent"
)

// Client is an implementation of the agent.ModelClient interface using
// Google Gemini
type Client struct {
	client      *genai.Client
	modelName   string
	temperature float32
	logger      *zap.Logger
}

// NewClient creates a new Gemini-backed model client
func NewClient(client *genai.Client, modelName string, temperature float32, logger *zap.Logger) *Client {
	return &Client{
		client:      client,
		modelName:   modelName,
		temperature: temperature,
		logger:      logger,
	}
}

// Close closes the underlying Gemini client
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Complete runs one generation turn
func (c *Client) Complete(ctx context.Context, req *agent.Request) (*agent.Response, error) {
	model := c.client.GenerativeModel(c.modelName)
	model.SetTemperature(c.temperature)
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if req.Instructions != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.Instructions)},
		}
	}
	if len(req.Tools) > 0 {
		tools, err := buildTools(req.Tools)
		if err != nil {
			return nil, err
		}
		model.Tools = tools
	} else {
		model.ResponseMIMEType = "application/json"
	}

	history, last, err := buildContents(req.Messages)
	if err != nil {
		return nil, err
	}
	if last == nil {
		return nil, fmt.Errorf("no message to send to Gemini")
	}

	cs := model.StartChat()
	cs.History = history
	resp, err := cs.SendMessage(ctx, last.Parts...)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	out := &agent.Response{}
	for i, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			out.Content += string(p)
		case genai.FunctionCall:
			args, err := json.Marshal(p.Args)
			if err != nil {
				return nil, fmt.Errorf("failed to encode Gemini function call arguments: %w", err)
			}
			// Gemini does not assign call IDs; results are matched back
			// by function name instead.
			out.ToolCalls = append(out.ToolCalls, agent.ToolCall{
				ID:        fmt.Sprintf("%s-%d", p.Name, i),
				Name:      p.Name,
				Arguments: args,
			})
		}
	}
	if resp.UsageMetadata != nil {
		out.Usage = agent.Usage{
			RequestTokens:  int(resp.UsageMetadata.PromptTokenCount),
			ResponseTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:    int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	c.logger.Debug("Gemini completion finished",
		zap.String("model", c.modelName),
		zap.Int("tool_calls", len(out.ToolCalls)),
		zap.Int("total_tokens", out.Usage.TotalTokens))

	return out, nil
}

// buildContents converts the portable message history into Gemini contents.
// The final content is returned separately because the chat API sends it as
// the live message rather than history.
func buildContents(messages []agent.Message) (history []*genai.Content, last *genai.Content, err error) {
	var contents []*genai.Content
	for _, m := range messages {
		switch m.Role {
		case agent.RoleUser:
			contents = append(contents, &genai.Content{
				Role:  "user",
				Parts: []genai.Part{genai.Text(m.Content)},
			})
		case agent.RoleAssistant:
			content := &genai.Content{Role: "model"}
			if m.Content != "" {
				content.Parts = append(content.Parts, genai.Text(m.Content))
			}
			for _, tc := range m.ToolCalls {
				var args map[string]any
				if len(tc.Arguments) > 0 {
					if err := json.Unmarshal(tc.Arguments, &args); err != nil {
						return nil, nil, fmt.Errorf("failed to decode function call arguments: %w", err)
					}
				}
				content.Parts = append(content.Parts, genai.FunctionCall{Name: tc.Name, Args: args})
			}
			contents = append(contents, content)
		case agent.RoleTool:
			contents = append(contents, &genai.Content{
				Role: "function",
				Parts: []genai.Part{genai.FunctionResponse{
					Name:     m.ToolName,
					Response: map[string]any{"result": m.Content},
				}},
			})
		default:
			return nil, nil, fmt.Errorf("unsupported message role %q", m.Role)
		}
	}
	if len(contents) == 0 {
		return nil, nil, nil
	}
	return contents[:len(contents)-1], contents[len(contents)-1], nil
}

func buildTools(specs []agent.ToolSpec) ([]*genai.Tool, error) {
	declarations := make([]*genai.FunctionDeclaration, 0, len(specs))
	for _, spec := range specs {
		schema, err := toSchema(spec.Parameters)
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", spec.Name, err)
		}
		declarations = append(declarations, &genai.FunctionDeclaration{
			Name:        spec.Name,
			Description: spec.Description,
			Parameters:  schema,
		})
	}
	return []*genai.Tool{{FunctionDeclarations: declarations}}, nil
}

// toSchema converts a JSON Schema document into the genai schema type.
// Only the subset used by tool parameter declarations is supported.
func toSchema(raw json.RawMessage) (*genai.Schema, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var doc struct {
		Type        string                     `json:"type"`
		Description string                     `json:"description"`
		Enum        []string                   `json:"enum"`
		Properties  map[string]json.RawMessage `json:"properties"`
		Items       json.RawMessage            `json:"items"`
		Required    []string                   `json:"required"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse parameter schema: %w", err)
	}

	schema := &genai.Schema{
		Description: doc.Description,
		Enum:        doc.Enum,
		Required:    doc.Required,
	}
	switch doc.Type {
	case "object":
		schema.Type = genai.TypeObject
	case "string":
		schema.Type = genai.TypeString
	case "number":
		schema.Type = genai.TypeNumber
	case "integer":
		schema.Type = genai.TypeInteger
	case "boolean":
		schema.Type = genai.TypeBoolean
	case "array":
		schema.Type = genai.TypeArray
	default:
		return nil, fmt.Errorf("unsupported schema type %q", doc.Type)
	}

	if len(doc.Properties) > 0 {
		schema.Properties = make(map[string]*genai.Schema, len(doc.Properties))
		for name, prop := range doc.Properties {
			sub, err := toSchema(prop)
			if err != nil {
				return nil, fmt.Errorf("property %s: %w", name, err)
			}
			schema.Properties[name] = sub
		}
	}
	if len(doc.Items) > 0 {
		items, err := toSchema(doc.Items)
		if err != nil {
			return nil, err
		}
		schema.Items = items
	}
	return schema, nil
}
