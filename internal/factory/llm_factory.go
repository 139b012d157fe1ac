package factory

import (
	"fmt"

	"go.uber.org/zap"

	"leadsagent/internal/adapters/bedrock"
	"leadsagent/internal/adapters/gemini"
	"leadsagent/internal/adapters/openai"
	"leadsagent/internal/agent"
	"leadsagent/internal/config"
)

// LLMFactory creates model clients
type LLMFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger) *LLMFactory {
	return &LLMFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateModelClient creates a new model client based on the configuration
func (f *LLMFactory) CreateModelClient() (agent.ModelClient, error) {
	llmConfig := f.cfg.GetLLM()

	switch llmConfig.Provider {
	case "bedrock":
		return bedrock.NewFactory(f.cfg, f.logger).CreateModelClient()
	case "gemini":
		return gemini.NewFactory(f.cfg, f.logger).CreateModelClient()
	case "openai":
		return openai.NewFactory(f.cfg, f.logger).CreateModelClient()
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", llmConfig.Provider)
	}
}
