package config

// LLMConfig represents the shared LLM pipeline configuration
type LLMConfig struct {
	Provider          string
	Temperature       float32
	MaxBodySize       int
	TriageMaxTokens   int
	ResearchMaxTokens int
	ScoringMaxTokens  int
}

// OpenAIConfig represents the configuration for an OpenAI-compatible endpoint
type OpenAIConfig struct {
	BaseURL   string
	ModelName string
	APIKey    string
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey    string
	ModelName string
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region  string
	ModelID string
}

// ResearchConfig represents the web-research stage configuration
type ResearchConfig struct {
	MaxSearches         int
	MaxResultsPerSearch int
}

// GetLLM returns the shared LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider:          c.GetString("llm.provider"),
		Temperature:       float32(c.GetFloat64("llm.temperature")),
		MaxBodySize:       c.GetInt("llm.max_body_size"),
		TriageMaxTokens:   c.GetInt("llm.triage_max_tokens"),
		ResearchMaxTokens: c.GetInt("llm.research_max_tokens"),
		ScoringMaxTokens:  c.GetInt("llm.scoring_max_tokens"),
	}
}

// GetOpenAI returns the OpenAI endpoint configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		BaseURL:   c.GetString("openai.base_url"),
		ModelName: c.GetString("openai.model_name"),
		APIKey:    c.GetString("openai.api_key"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:    c.GetString("gemini.api_key"),
		ModelName: c.GetString("gemini.model_name"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:  c.GetString("bedrock.region"),
		ModelID: c.GetString("bedrock.model_id"),
	}
}

// GetResearch returns the research stage configuration
func (c *Config) GetResearch() ResearchConfig {
	return ResearchConfig{
		MaxSearches:         c.GetInt("research.max_searches"),
		MaxResultsPerSearch: c.GetInt("research.max_results_per_search"),
	}
}

// ModelName returns the model name for the active provider
func (c *Config) ModelName() string {
	switch c.GetString("llm.provider") {
	case "gemini":
		return c.GetString("gemini.model_name")
	case "bedrock":
		return c.GetString("bedrock.model_id")
	default:
		return c.GetString("openai.model_name")
	}
}

// Endpoint returns the endpoint identity for the active provider, used to
// fingerprint agent configurations
func (c *Config) Endpoint() string {
	switch c.GetString("llm.provider") {
	case "gemini":
		return "gemini"
	case "bedrock":
		return "bedrock:" + c.GetString("bedrock.region")
	default:
		return c.GetString("openai.base_url")
	}
}

// Credential returns the credential for the active provider
func (c *Config) Credential() string {
	switch c.GetString("llm.provider") {
	case "gemini":
		return c.GetString("gemini.api_key")
	case "bedrock":
		return ""
	default:
		return c.GetString("openai.api_key")
	}
}
