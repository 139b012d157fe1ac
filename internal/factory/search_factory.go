package factory

import (
	"go.uber.org/zap"

	"leadsagent/internal/adapters/search"
	"leadsagent/internal/config"
	"leadsagent/internal/core"
)

// SearchFactory creates web-search tools
type SearchFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewSearchFactory creates a new search factory
func NewSearchFactory(cfg *config.Config, logger *zap.Logger) *SearchFactory {
	return &SearchFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateSearchTool creates the web-search tool used during research
func (f *SearchFactory) CreateSearchTool() core.SearchTool {
	researchCfg := f.cfg.GetResearch()
	return search.NewDuckDuckGo(researchCfg.MaxResultsPerSearch, f.logger)
}
