package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	llm := cfg.GetLLM()
	assert.Equal(t, "openai", llm.Provider)
	assert.Equal(t, float32(0.0), llm.Temperature)
	assert.Equal(t, 4096, llm.MaxBodySize)
	assert.Equal(t, 900, llm.TriageMaxTokens)
	assert.Equal(t, 8000, llm.ResearchMaxTokens)
	assert.Equal(t, 2500, llm.ScoringMaxTokens)

	research := cfg.GetResearch()
	assert.Equal(t, 4, research.MaxSearches)
	assert.Equal(t, 5, research.MaxResultsPerSearch)

	assert.False(t, cfg.GetBool("cache.enabled"))
	assert.Equal(t, "memory", cfg.GetString("cache.type"))

	ttl, err := cfg.GetDuration("cache.ttl")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, ttl)
}

func TestProviderIdentityOpenAI(t *testing.T) {
	v := NewEmptyViper()
	v.Set("openai.base_url", "https://gateway.internal/v1")
	v.Set("openai.model_name", "gpt-4o")
	v.Set("openai.api_key", "sk-test")
	cfg := NewFromViper(v)

	assert.Equal(t, "gpt-4o", cfg.ModelName())
	assert.Equal(t, "https://gateway.internal/v1", cfg.Endpoint())
	assert.Equal(t, "sk-test", cfg.Credential())
}

func TestProviderIdentityGemini(t *testing.T) {
	v := NewEmptyViper()
	v.Set("llm.provider", "gemini")
	v.Set("gemini.model_name", "gemini-1.5-pro")
	v.Set("gemini.api_key", "g-key")
	cfg := NewFromViper(v)

	assert.Equal(t, "gemini-1.5-pro", cfg.ModelName())
	assert.Equal(t, "gemini", cfg.Endpoint())
	assert.Equal(t, "g-key", cfg.Credential())
}

func TestProviderIdentityBedrock(t *testing.T) {
	v := NewEmptyViper()
	v.Set("llm.provider", "bedrock")
	v.Set("bedrock.region", "eu-west-1")
	cfg := NewFromViper(v)

	assert.Equal(t, "anthropic.claude-3-haiku-20240307-v1:0", cfg.ModelName())
	assert.Equal(t, "bedrock:eu-west-1", cfg.Endpoint())
	assert.Empty(t, cfg.Credential())
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("LEADS_AGENT_LLM_PROVIDER", "gemini")
	t.Setenv("LEADS_AGENT_GEMINI_API_KEY", "from-env")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.GetLLM().Provider)
	assert.Equal(t, "from-env", cfg.GetGemini().APIKey)
}
