package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"leadsagent/internal/agent"
	"leadsagent/internal/config"
	"leadsagent/internal/prompts"
)

const (
	triageIgnoreJSON    = `{"decision":"ignore","confidence":0.9,"reason":"obvious spam"}`
	triagePromisingJSON = `{"decision":"promising","confidence":0.85,"reason":"real intent","company":"Acme","lead_summary":"Acme wants help","key_signals":["budget mentioned"]}`
	researchJSON        = `{"decision":"promising","confidence":0.85,"reason":"real intent","company":"Acme","company_research":{"company_name":"Acme","company_description":"B2B SaaS"},"research_summary":"Acme is a funded B2B SaaS company"}`
	scoredJSON          = `{"decision":"promising","confidence":0.9,"reason":"real intent","company":"Acme","score":4,"action":"follow_up","score_reason":"plausible fit"}`
)

// fakeModelClient routes on the stage-specific base instructions and
// replays scripted responses.
type fakeModelClient struct {
	respond func(stage string, req *agent.Request) (*agent.Response, error)
	calls   map[string]int
}

func newFakeModelClient(respond func(stage string, req *agent.Request) (*agent.Response, error)) *fakeModelClient {
	return &fakeModelClient{respond: respond, calls: make(map[string]int)}
}

func (f *fakeModelClient) Complete(ctx context.Context, req *agent.Request) (*agent.Response, error) {
	stage := stageOf(req.Instructions)
	f.calls[stage]++
	return f.respond(stage, req)
}

func stageOf(instructions string) string {
	switch {
	case strings.Contains(instructions, "FAST triage"):
		return "triage"
	case strings.Contains(instructions, "researching a promising inbound lead"):
		return "research"
	case strings.Contains(instructions, "scoring an inbound lead"):
		return "scoring"
	default:
		return "unknown"
	}
}

func textResponse(content string) (*agent.Response, error) {
	return &agent.Response{
		Content: content,
		Usage:   agent.Usage{RequestTokens: 10, ResponseTokens: 5, TotalTokens: 15},
	}, nil
}

type fakeSearch struct {
	queries []string
	result  string
	err     error
}

func (f *fakeSearch) Search(ctx context.Context, query string) (string, error) {
	f.queries = append(f.queries, query)
	return f.result, f.err
}

type fakeCache struct {
	entries map[string]*CacheEntry
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]*CacheEntry)}
}

func (f *fakeCache) Get(ctx context.Context, leadID string) (*CacheEntry, error) {
	entry, ok := f.entries[leadID]
	if !ok {
		return nil, errors.New("not found")
	}
	return entry, nil
}

func (f *fakeCache) Set(ctx context.Context, entry *CacheEntry) error {
	f.entries[entry.LeadID] = entry
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, leadID string) error {
	delete(f.entries, leadID)
	return nil
}

func (f *fakeCache) Cleanup(ctx context.Context) error { return nil }

func testLead() Lead {
	return Lead{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@acme.io",
		Company:   "Acme",
		Message:   "We need help migrating to the cloud. Budget approved.",
	}
}

func newTestPipeline(t *testing.T, client agent.ModelClient, search SearchTool, cache CacheRepository) *Pipeline {
	t.Helper()
	registry, err := agent.NewRegistry()
	require.NoError(t, err)

	v := config.NewEmptyViper()
	if cache != nil {
		v.Set("cache.enabled", true)
	}
	cfg := config.NewFromViper(v)

	store := prompts.NewStore(prompts.PromptConfig{}, zap.NewNop())
	return NewPipeline(client, registry, store, search, cache, nil, zap.NewNop(), cfg)
}

func TestClassifyIgnoredLeadStopsAfterTriage(t *testing.T) {
	client := newFakeModelClient(func(stage string, req *agent.Request) (*agent.Response, error) {
		require.Equal(t, "triage", stage, "only triage may run for an ignored lead")
		return textResponse(triageIgnoreJSON)
	})
	pipeline := newTestPipeline(t, client, &fakeSearch{}, nil)

	outcome, err := pipeline.Classify(context.Background(), testLead(), Options{})
	require.NoError(t, err)

	assert.Equal(t, "jane@acme.io", outcome.LeadID)
	assert.Equal(t, KindClassification, outcome.Result.Kind())
	assert.Equal(t, DecisionIgnore, outcome.Result.Base().Decision)
	assert.False(t, outcome.FromCache)
	assert.Equal(t, 1, client.calls["triage"])
	assert.Zero(t, client.calls["research"])
	assert.Zero(t, client.calls["scoring"])
}

func TestClassifyPromisingLeadRunsAllStages(t *testing.T) {
	search := &fakeSearch{result: "1. Acme\nhttps://acme.io\nB2B SaaS platform"}
	client := newFakeModelClient(func(stage string, req *agent.Request) (*agent.Response, error) {
		switch stage {
		case "triage":
			return textResponse(triagePromisingJSON)
		case "research":
			// First research round asks for one search, second answers
			last := req.Messages[len(req.Messages)-1]
			if last.Role != agent.RoleTool {
				return &agent.Response{ToolCalls: []agent.ToolCall{{
					ID:        "call-1",
					Name:      "web_search",
					Arguments: json.RawMessage(`{"query":"\"Acme\" site:acme.io"}`),
				}}}, nil
			}
			require.Contains(t, last.Content, "B2B SaaS platform")
			return textResponse(researchJSON)
		case "scoring":
			return textResponse(scoredJSON)
		default:
			return nil, fmt.Errorf("unexpected stage %q", stage)
		}
	})
	pipeline := newTestPipeline(t, client, search, nil)

	outcome, err := pipeline.Classify(context.Background(), testLead(), Options{})
	require.NoError(t, err)

	require.Equal(t, KindScored, outcome.Result.Kind())
	scored := outcome.Result.(*ScoredClassification)
	assert.Equal(t, 4, scored.Score)
	assert.Equal(t, ActionFollowUp, scored.Action)
	assert.Equal(t, "Acme is a funded B2B SaaS company", scored.ResearchSummary)

	require.Len(t, search.queries, 1)
	assert.Equal(t, `"Acme" site:acme.io`, search.queries[0])
}

func TestClassifyResearchFailureDegrades(t *testing.T) {
	client := newFakeModelClient(func(stage string, req *agent.Request) (*agent.Response, error) {
		switch stage {
		case "triage":
			return textResponse(triagePromisingJSON)
		case "research":
			return nil, errors.New("model unavailable")
		case "scoring":
			// Scoring still receives the degraded research result
			prompt := req.Messages[0].Content
			require.Contains(t, prompt, "Research failed")
			return textResponse(scoredJSON)
		default:
			return nil, fmt.Errorf("unexpected stage %q", stage)
		}
	})
	pipeline := newTestPipeline(t, client, &fakeSearch{}, nil)

	outcome, err := pipeline.Classify(context.Background(), testLead(), Options{Debug: true})
	require.NoError(t, err)

	assert.Equal(t, KindScored, outcome.Result.Kind())
	require.NotNil(t, outcome.Trace)
	assert.Contains(t, outcome.Trace.Errors, "research")

	// Transient failures get the full retry budget before degrading
	assert.Equal(t, 2, client.calls["research"])
}

func TestClassifyDegradedResultKeepsTriageFields(t *testing.T) {
	client := newFakeModelClient(func(stage string, req *agent.Request) (*agent.Response, error) {
		switch stage {
		case "triage":
			return textResponse(triagePromisingJSON)
		case "research":
			// Schema-valid but empty research counts as a failure
			return textResponse(`{"decision":"promising","confidence":0.85,"reason":"real intent"}`)
		case "scoring":
			var enriched EnrichedClassification
			prompt := req.Messages[0].Content
			start := strings.Index(prompt, "{")
			require.NoError(t, json.Unmarshal([]byte(prompt[start:strings.LastIndex(prompt, "}")+1]), &enriched))
			assert.Equal(t, DecisionPromising, enriched.Decision)
			assert.Equal(t, "Acme", enriched.Company)
			assert.NotEmpty(t, enriched.ResearchSummary)
			return textResponse(scoredJSON)
		default:
			return nil, fmt.Errorf("unexpected stage %q", stage)
		}
	})
	pipeline := newTestPipeline(t, client, &fakeSearch{}, nil)

	_, err := pipeline.Classify(context.Background(), testLead(), Options{})
	require.NoError(t, err)
}

func TestClassifyTriageFailureIsFatal(t *testing.T) {
	client := newFakeModelClient(func(stage string, req *agent.Request) (*agent.Response, error) {
		return textResponse(`not even json at all`)
	})
	pipeline := newTestPipeline(t, client, &fakeSearch{}, nil)

	_, err := pipeline.Classify(context.Background(), testLead(), Options{})
	require.Error(t, err)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, prompts.StageTriage, stageErr.Stage)

	var schemaErr *agent.SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestClassifyScoringFailureIsFatal(t *testing.T) {
	client := newFakeModelClient(func(stage string, req *agent.Request) (*agent.Response, error) {
		switch stage {
		case "triage":
			return textResponse(triagePromisingJSON)
		case "research":
			return textResponse(researchJSON)
		default:
			// Violates the rubric: score 5 demands prioritize
			return textResponse(`{"decision":"promising","confidence":0.9,"reason":"x","score":5,"action":"follow_up"}`)
		}
	})
	pipeline := newTestPipeline(t, client, &fakeSearch{}, nil)

	_, err := pipeline.Classify(context.Background(), testLead(), Options{})
	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, prompts.StageScoring, stageErr.Stage)
}

func TestClassifyDedupCacheHit(t *testing.T) {
	cache := newFakeCache()
	client := newFakeModelClient(func(stage string, req *agent.Request) (*agent.Response, error) {
		return textResponse(triageIgnoreJSON)
	})
	pipeline := newTestPipeline(t, client, &fakeSearch{}, cache)

	first, err := pipeline.Classify(context.Background(), testLead(), Options{})
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	require.Equal(t, 1, client.calls["triage"])

	second, err := pipeline.Classify(context.Background(), testLead(), Options{})
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.LeadID, second.LeadID)
	assert.Equal(t, first.Result, second.Result)

	// No further model calls on the hit
	assert.Equal(t, 1, client.calls["triage"])
}

func TestClassifyCachedScoredResultKeepsScore(t *testing.T) {
	cache := newFakeCache()
	client := newFakeModelClient(func(stage string, req *agent.Request) (*agent.Response, error) {
		switch stage {
		case "triage":
			return textResponse(triagePromisingJSON)
		case "research":
			return textResponse(researchJSON)
		default:
			return textResponse(scoredJSON)
		}
	})
	pipeline := newTestPipeline(t, client, &fakeSearch{}, cache)

	first, err := pipeline.Classify(context.Background(), testLead(), Options{})
	require.NoError(t, err)

	entry, err := cache.Get(context.Background(), first.LeadID)
	require.NoError(t, err)
	assert.Equal(t, KindScored, entry.Kind)
	assert.Equal(t, 4, entry.Score)
	assert.Equal(t, DecisionPromising, entry.Decision)

	second, err := pipeline.Classify(context.Background(), testLead(), Options{})
	require.NoError(t, err)
	require.True(t, second.FromCache)
	assert.Equal(t, 4, second.Result.(*ScoredClassification).Score)
}

func TestClassifyDebugTraceRecordsStages(t *testing.T) {
	client := newFakeModelClient(func(stage string, req *agent.Request) (*agent.Response, error) {
		switch stage {
		case "triage":
			return textResponse(triagePromisingJSON)
		case "research":
			return textResponse(researchJSON)
		default:
			return textResponse(scoredJSON)
		}
	})
	pipeline := newTestPipeline(t, client, &fakeSearch{}, nil)

	outcome, err := pipeline.Classify(context.Background(), testLead(), Options{Debug: true})
	require.NoError(t, err)

	require.NotNil(t, outcome.Trace)
	assert.Contains(t, outcome.Trace.Usage, "triage")
	assert.Contains(t, outcome.Trace.Usage, "research")
	assert.Contains(t, outcome.Trace.Usage, "scoring")
	assert.NotEmpty(t, outcome.Trace.Messages)
	assert.Empty(t, outcome.Trace.Errors)
}

func TestClassifyWithoutDebugHasNoTrace(t *testing.T) {
	client := newFakeModelClient(func(stage string, req *agent.Request) (*agent.Response, error) {
		return textResponse(triageIgnoreJSON)
	})
	pipeline := newTestPipeline(t, client, &fakeSearch{}, nil)

	outcome, err := pipeline.Classify(context.Background(), testLead(), Options{})
	require.NoError(t, err)
	assert.Nil(t, outcome.Trace)
}

func TestClassifySearchBudgetExhaustion(t *testing.T) {
	search := &fakeSearch{result: "1. Acme\nhttps://acme.io\nresult"}
	var budgetNotices int
	client := newFakeModelClient(func(stage string, req *agent.Request) (*agent.Response, error) {
		switch stage {
		case "triage":
			return textResponse(triagePromisingJSON)
		case "research":
			for _, m := range req.Messages {
				if m.Role == agent.RoleTool && strings.Contains(m.Content, "Search budget exhausted") {
					budgetNotices++
				}
			}
			// Keep asking for searches until the tool pushes back
			if budgetNotices == 0 {
				return &agent.Response{ToolCalls: []agent.ToolCall{{
					ID:        fmt.Sprintf("call-%d", len(req.Messages)),
					Name:      "web_search",
					Arguments: json.RawMessage(`{"query":"\"Acme\" pricing"}`),
				}}}, nil
			}
			return textResponse(researchJSON)
		default:
			return textResponse(scoredJSON)
		}
	})
	pipeline := newTestPipeline(t, client, search, nil)

	_, err := pipeline.Classify(context.Background(), testLead(), Options{MaxSearches: 2})
	require.NoError(t, err)

	// Two searches ran, the third was refused
	assert.Len(t, search.queries, 2)
	assert.GreaterOrEqual(t, budgetNotices, 1)
}
