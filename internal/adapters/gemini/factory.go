package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"leadsagent/internal/agent"
	"leadsagent/internal/config"
)

// Factory creates new instances of the Gemini model client
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new factory for Gemini model clients
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateModelClient creates a new Gemini-backed model client
func (f *Factory) CreateModelClient() (agent.ModelClient, error) {
	geminiCfg := f.cfg.GetGemini()
	llmCfg := f.cfg.GetLLM()

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(geminiCfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return NewClient(client, geminiCfg.ModelName, float32(llmCfg.Temperature), f.logger), nil
}
