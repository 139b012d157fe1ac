package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"leadsagent/internal/agent"
	"leadsagent/internal/config"
	"leadsagent/internal/core"
	"leadsagent/internal/factory"
	"leadsagent/internal/logging"
	"leadsagent/internal/prompts"
	"leadsagent/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewSearchFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}

	// Register model client
	if err := container.Provide(func(f *factory.LLMFactory) (agent.ModelClient, error) {
		return f.CreateModelClient()
	}); err != nil {
		return nil, err
	}

	// Register cache repository
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheRepository, error) {
		return f.CreateCacheRepository()
	}); err != nil {
		return nil, err
	}

	// Register search tool
	if err := container.Provide(func(f *factory.SearchFactory) core.SearchTool {
		return f.CreateSearchTool()
	}); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register prompt store
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *prompts.Store {
		base := prompts.LoadOrEmpty(cfg.GetString("prompts.config_path"), logger)
		return prompts.NewStore(base, logger)
	}); err != nil {
		return nil, err
	}

	// Register agent registry
	if err := container.Provide(agent.NewRegistry); err != nil {
		return nil, err
	}

	// Register classification pipeline
	if err := container.Provide(core.NewPipeline); err != nil {
		return nil, err
	}

	return container, nil
}
