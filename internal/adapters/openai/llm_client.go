package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"leadsagent/internal/agent"
)

// Client is an implementation of the agent.ModelClient interface using the
// OpenAI chat completions API. A custom base URL routes the same client to
// OpenAI-compatible gateways.
type Client struct {
	client      *openai.Client
	modelName   string
	temperature float32
	logger      *zap.Logger
}

// NewClient creates a new OpenAI-backed model client
func NewClient(client *openai.Client, modelName string, temperature float32, logger *zap.Logger) *Client {
	return &Client{
		client:      client,
		modelName:   modelName,
		temperature: temperature,
		logger:      logger,
	}
}

// Complete runs one chat completion turn
func (c *Client) Complete(ctx context.Context, req *agent.Request) (*agent.Response, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:       c.modelName,
		Messages:    c.buildMessages(req),
		MaxTokens:   req.MaxTokens,
		Temperature: c.temperature,
	}

	if len(req.Tools) > 0 {
		chatReq.Tools = buildTools(req.Tools)
	} else {
		// Tool turns must stay free-form; only final answers are forced
		// into JSON mode.
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	choice := resp.Choices[0].Message
	out := &agent.Response{
		Content: choice.Content,
		Usage: agent.Usage{
			RequestTokens:  resp.Usage.PromptTokens,
			ResponseTokens: resp.Usage.CompletionTokens,
			TotalTokens:    resp.Usage.TotalTokens,
		},
	}
	for _, tc := range choice.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, agent.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
		})
	}

	c.logger.Debug("OpenAI completion finished",
		zap.String("model", c.modelName),
		zap.Int("tool_calls", len(out.ToolCalls)),
		zap.Int("total_tokens", out.Usage.TotalTokens))

	return out, nil
}

func (c *Client) buildMessages(req *agent.Request) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.Instructions != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.Instructions,
		})
	}
	for _, m := range req.Messages {
		msg := openai.ChatCompletionMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: string(tc.Arguments),
				},
			})
		}
		messages = append(messages, msg)
	}
	return messages
}

func buildTools(specs []agent.ToolSpec) []openai.Tool {
	tools := make([]openai.Tool, 0, len(specs))
	for _, spec := range specs {
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  spec.Parameters,
			},
		})
	}
	return tools
}
