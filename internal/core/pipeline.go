package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"leadsagent/internal/agent"
	"leadsagent/internal/config"
	"leadsagent/internal/prompts"
	"leadsagent/internal/utils"
)

// StageError is a fatal failure of one pipeline stage, carrying the stage
// name and the underlying cause.
type StageError struct {
	Stage prompts.Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Options control one classification run.
type Options struct {
	// MaxSearches caps the research agent's web searches; 0 uses the
	// configured default.
	MaxSearches int

	// Debug materializes an execution trace alongside the result.
	Debug bool
}

// Outcome is the pipeline's return value: the typed result plus the trace
// when one was requested.
type Outcome struct {
	LeadID    string
	Result    Result
	Trace     *Trace
	FromCache bool
}

// Pipeline orchestrates the triage -> research -> scoring state machine
// for one lead at a time. A Pipeline is safe for concurrent use; runs
// share no mutable state beyond the prompt store, agent registry, and
// dedup cache, all of which are concurrency-safe.
type Pipeline struct {
	client   agent.ModelClient
	registry *agent.Registry
	store    *prompts.Store
	search   SearchTool
	cache    CacheRepository
	text     *utils.TextProcessor
	logger   *zap.Logger

	endpoint   string
	model      string
	credential string

	llm          config.LLMConfig
	maxSearches  int
	cacheEnabled bool
	cacheTTL     time.Duration
}

// NewPipeline assembles the orchestrator from its collaborators. cache may
// be nil when dedup is disabled.
func NewPipeline(
	client agent.ModelClient,
	registry *agent.Registry,
	store *prompts.Store,
	search SearchTool,
	cache CacheRepository,
	text *utils.TextProcessor,
	logger *zap.Logger,
	cfg *config.Config,
) *Pipeline {
	cacheTTL, err := cfg.GetDuration("cache.ttl")
	if err != nil {
		cacheTTL = 24 * time.Hour
	}
	return &Pipeline{
		client:       client,
		registry:     registry,
		store:        store,
		search:       search,
		cache:        cache,
		text:         text,
		logger:       logger,
		endpoint:     cfg.Endpoint(),
		model:        cfg.ModelName(),
		credential:   cfg.Credential(),
		llm:          cfg.GetLLM(),
		maxSearches:  cfg.GetResearch().MaxSearches,
		cacheEnabled: cfg.GetBool("cache.enabled") && cache != nil,
		cacheTTL:     cacheTTL,
	}
}

// Classify runs the pipeline for one lead:
//
//	START -> TRIAGED -> (SKIPPED | RESEARCHED) -> (SKIPPED | SCORED) -> DONE
//
// Triage always runs and its failure aborts the run. A promising lead is
// researched and then scored; a research failure degrades instead of
// aborting, while a scoring failure is fatal.
func (p *Pipeline) Classify(ctx context.Context, lead Lead, opts Options) (*Outcome, error) {
	leadID := LeadID(lead)
	logger := p.logger.With(zap.String("lead_id", leadID))

	maxSearches := opts.MaxSearches
	if maxSearches <= 0 {
		maxSearches = p.maxSearches
	}

	var trace *Trace
	if opts.Debug {
		trace = newTrace()
	}

	if p.cacheEnabled {
		if entry, err := p.cache.Get(ctx, leadID); err == nil {
			if result, err := DecodeResult(entry.Kind, entry.Payload); err == nil {
				logger.Debug("Dedup cache hit", zap.String("kind", string(entry.Kind)))
				return &Outcome{LeadID: leadID, Result: result, Trace: trace, FromCache: true}, nil
			}
		}
	}

	triage, err := p.runTriage(ctx, lead, trace)
	if err != nil {
		return nil, &StageError{Stage: prompts.StageTriage, Err: err}
	}
	logger.Info("Lead triaged",
		zap.String("decision", string(triage.Decision)),
		zap.Float64("confidence", triage.Confidence))

	var final Result = triage
	if triage.Decision == DecisionPromising {
		enriched := p.runResearch(ctx, lead, triage, maxSearches, trace)

		scored, err := p.runScoring(ctx, lead, triage, enriched, trace)
		if err != nil {
			return nil, &StageError{Stage: prompts.StageScoring, Err: err}
		}
		logger.Info("Lead scored",
			zap.Int("score", scored.Score),
			zap.String("action", string(scored.Action)))
		final = scored
	}

	p.storeResult(ctx, leadID, final, logger)

	return &Outcome{LeadID: leadID, Result: final, Trace: trace}, nil
}

// agentFor returns the cached agent for a stage configuration, building it
// on first use. The registry key covers everything that shapes the agent's
// behavior, so a prompt-config patch transparently yields a fresh agent.
func (p *Pipeline) agentFor(instructions string, maxTokens int, tools []agent.ToolSpec) *agent.Agent {
	key := agent.Fingerprint(p.endpoint, p.model, p.credential, instructions, tools, maxTokens)
	return p.registry.GetOrCreate(key, func() *agent.Agent {
		return agent.New(p.client, instructions, maxTokens, p.llm.Temperature, p.logger,
			agent.WithTools(tools...))
	})
}

func (p *Pipeline) storeResult(ctx context.Context, leadID string, result Result, logger *zap.Logger) {
	if !p.cacheEnabled {
		return
	}
	kind, payload, err := EncodeResult(result)
	if err != nil {
		logger.Error("Failed to encode result for cache", zap.Error(err))
		return
	}
	entry := &CacheEntry{
		LeadID:    leadID,
		Kind:      kind,
		Payload:   payload,
		Decision:  result.Base().Decision,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(p.cacheTTL),
	}
	if scored, ok := result.(*ScoredClassification); ok {
		entry.Score = scored.Score
	}
	if err := p.cache.Set(ctx, entry); err != nil {
		logger.Error("Failed to update dedup cache", zap.Error(err))
	}
}
