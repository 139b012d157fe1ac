package prompts

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
)

// Store holds the loaded base prompt configuration plus an optional runtime
// override. Readers may be concurrent; patch and reset replace the override
// atomically so a reader never observes a partially merged configuration.
type Store struct {
	mu       sync.RWMutex
	base     PromptConfig
	override *PromptConfig
	logger   *zap.Logger
}

// NewStore creates a store around an already-loaded base configuration.
func NewStore(base PromptConfig, logger *zap.Logger) *Store {
	return &Store{base: base, logger: logger}
}

// Effective returns the runtime override if one is set, else the loaded base.
func (s *Store) Effective() PromptConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.override != nil {
		return *s.override
	}
	return s.base
}

// ApplyPatch deep-merges a partial configuration onto the current effective
// configuration, validates the merged whole, and installs it as the runtime
// override. On validation failure nothing changes and the prior effective
// configuration stays active.
func (s *Store) ApplyPatch(patch PromptConfig) (PromptConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.base
	if s.override != nil {
		current = *s.override
	}
	merged := merge(current, patch)
	if err := merged.Validate(); err != nil {
		return PromptConfig{}, err
	}
	s.override = &merged
	if s.logger != nil {
		s.logger.Info("Applied prompt config patch")
	}
	return merged, nil
}

// Replace installs a complete configuration as the runtime override,
// validating it first.
func (s *Store) Replace(cfg PromptConfig) (PromptConfig, error) {
	if err := cfg.Validate(); err != nil {
		return PromptConfig{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.override = &cfg
	return cfg, nil
}

// Reset drops the runtime override, reverting to the loaded base.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.override = nil
}

// Load resolves the base prompt configuration. Priority:
//  1. explicit path argument (from runtime settings)
//  2. PROMPT_CONFIG_JSON environment variable (inline JSON)
//  3. PROMPT_CONFIG_PATH environment variable
//  4. prompt_config.json, then config/prompt_config.json
//  5. empty defaults
//
// The persisted form is a flat JSON object matching PromptConfig.
func Load(explicitPath string) (PromptConfig, error) {
	if explicitPath != "" {
		return loadFile(explicitPath)
	}

	if raw := os.Getenv("PROMPT_CONFIG_JSON"); raw != "" {
		return parse([]byte(raw), "PROMPT_CONFIG_JSON")
	}

	if path := os.Getenv("PROMPT_CONFIG_PATH"); path != "" {
		return loadFile(path)
	}

	for _, candidate := range []string{"prompt_config.json", "config/prompt_config.json"} {
		if _, err := os.Stat(candidate); err == nil {
			return loadFile(candidate)
		}
	}

	return PromptConfig{}, nil
}

// LoadOrEmpty loads the base configuration, logging and falling back to
// empty defaults on failure so a broken config file never blocks startup.
func LoadOrEmpty(explicitPath string, logger *zap.Logger) PromptConfig {
	cfg, err := Load(explicitPath)
	if err != nil {
		if logger != nil {
			logger.Warn("Failed to load prompt config, using defaults", zap.Error(err))
		}
		return PromptConfig{}
	}
	return cfg
}

func loadFile(path string) (PromptConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PromptConfig{}, fmt.Errorf("failed to read prompt config %s: %w", path, err)
	}
	return parse(data, path)
}

func parse(data []byte, source string) (PromptConfig, error) {
	var cfg PromptConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return PromptConfig{}, fmt.Errorf("failed to parse prompt config from %s: %w", source, err)
	}
	if err := cfg.Validate(); err != nil {
		return PromptConfig{}, fmt.Errorf("prompt config from %s: %w", source, err)
	}
	return cfg, nil
}
