package openai

import (
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"leadsagent/internal/agent"
	"leadsagent/internal/config"
)

// Factory creates new instances of the OpenAI model client
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new factory for OpenAI model clients
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateModelClient creates a new OpenAI-backed model client
func (f *Factory) CreateModelClient() (agent.ModelClient, error) {
	openaiCfg := f.cfg.GetOpenAI()
	llmCfg := f.cfg.GetLLM()

	clientCfg := openai.DefaultConfig(openaiCfg.APIKey)
	if openaiCfg.BaseURL != "" {
		clientCfg.BaseURL = openaiCfg.BaseURL
	}
	client := openai.NewClientWithConfig(clientCfg)

	return NewClient(client, openaiCfg.ModelName, float32(llmCfg.Temperature), f.logger), nil
}
