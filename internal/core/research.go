package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"leadsagent/internal/agent"
	"leadsagent/internal/prompts"
)

// searchBudget caps web searches for one research run. It travels in the
// context so the cached research agent stays stateless across runs.
type searchBudget struct {
	remaining atomic.Int32
}

type searchBudgetKey struct{}

func withSearchBudget(ctx context.Context, max int) context.Context {
	b := &searchBudget{}
	b.remaining.Store(int32(max))
	return context.WithValue(ctx, searchBudgetKey{}, b)
}

func spendSearch(ctx context.Context) bool {
	b, ok := ctx.Value(searchBudgetKey{}).(*searchBudget)
	if !ok {
		return true
	}
	return b.remaining.Add(-1) >= 0
}

var webSearchParams = json.RawMessage(`{
	"type": "object",
	"properties": {
		"query": {
			"type": "string",
			"description": "The search query. Use quotes, site:, exclusions and small OR groups to keep it specific."
		}
	},
	"required": ["query"]
}`)

// runResearch gathers web context for a promising lead. It never fails the
// pipeline: on any error, or when the agent comes back empty-handed, it
// synthesizes a degraded result that copies every triage field and states
// the failure in the research summary.
func (p *Pipeline) runResearch(ctx context.Context, lead Lead, triage *Classification, maxSearches int, trace *Trace) *EnrichedClassification {
	instructions := prompts.Build(prompts.StageResearch, p.store.Effective())
	ag := p.agentFor(instructions, p.llm.ResearchMaxTokens, []agent.ToolSpec{p.webSearchTool()})

	ctx = withSearchBudget(ctx, maxSearches)

	var out EnrichedClassification
	run, err := ag.Run(ctx, researchPrompt(lead, triage, maxSearches), &out)
	trace.record(prompts.StageResearch, run)

	if err != nil {
		trace.recordError(prompts.StageResearch, err)
		p.logger.Warn("Research failed, continuing with degraded result", zap.Error(err))
		return degraded(triage, fmt.Sprintf("Research failed: %v", err))
	}
	if !out.HasFindings() {
		trace.recordError(prompts.StageResearch, fmt.Errorf("research returned no findings"))
		p.logger.Warn("Research returned no findings, continuing with degraded result")
		return degraded(triage, "Research failed: agent returned no findings")
	}
	return &out
}

// degraded copies the triage output into the enriched shape with an
// explicit failure note, so the loss is visible downstream instead of
// silently dropped.
func degraded(triage *Classification, note string) *EnrichedClassification {
	return &EnrichedClassification{
		Classification:  *triage,
		ResearchSummary: note,
	}
}

// webSearchTool exposes the search port to the research agent. Budget
// exhaustion is reported as tool content, letting the model wrap up from
// what it already has.
func (p *Pipeline) webSearchTool() agent.ToolSpec {
	return agent.ToolSpec{
		Name:        "web_search",
		Description: "Search the web. Returns titles, URLs and snippets of the top results.",
		Parameters:  webSearchParams,
		Handler: func(ctx context.Context, args json.RawMessage) (string, error) {
			var in struct {
				Query string `json:"query"`
			}
			if err := json.Unmarshal(args, &in); err != nil {
				return "", fmt.Errorf("invalid web_search arguments: %w", err)
			}
			if strings.TrimSpace(in.Query) == "" {
				return "", fmt.Errorf("web_search requires a non-empty query")
			}
			if !spendSearch(ctx) {
				return "Search budget exhausted. Synthesize your findings from the results you already have.", nil
			}
			return p.search.Search(ctx, in.Query)
		},
	}
}

func researchPrompt(lead Lead, triage *Classification, maxSearches int) string {
	domain := lead.EmailDomain()
	company := firstNonEmpty(triage.Company, lead.Company, domain)
	contact := lead.ContactName()

	var sb strings.Builder
	sb.WriteString("Research this promising lead:\n\n")
	fmt.Fprintf(&sb, "Contact: %s\n", orUnknown(contact))
	fmt.Fprintf(&sb, "Email: %s\n", orUnknown(lead.Email))
	fmt.Fprintf(&sb, "Company (best guess): %s\n", orUnknown(company))
	fmt.Fprintf(&sb, "Email Domain: %s\n", orUnknown(domain))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Lead summary (triage): %s\n", orNA(triage.LeadSummary))
	fmt.Fprintf(&sb, "Key signals (triage): %s\n", orNA(strings.Join(triage.KeySignals, ", ")))
	sb.WriteString("\nOriginal message:\n")
	sb.WriteString(lead.Text())
	sb.WriteString("\n\nTriage classification:\n")
	fmt.Fprintf(&sb, "- Decision: %s\n", triage.Decision)
	fmt.Fprintf(&sb, "- Confidence: %.0f%%\n", triage.Confidence*100)
	fmt.Fprintf(&sb, "- Reason: %s\n", triage.Reason)
	sb.WriteString("\nResearch plan:\n")
	fmt.Fprintf(&sb, "1) If an email domain is present (%s), search it to identify the official website and company name.\n", orNA(domain))
	sb.WriteString("2) Search the company name to understand what they do (quick description, industry, size if available).\n")
	fmt.Fprintf(&sb, "3) Search \"%s %s\" to find role/title (if name/company are available).\n", contact, company)
	sb.WriteString("\nQuery quality requirements:\n")
	sb.WriteString("- Use operators where helpful (quotes, site:, exclusions like -jobs -careers, and small OR groups).\n")
	sb.WriteString("- Use the \"Query Operator Clause Pack\" provided in your instructions to add ICP/focus-area qualifiers.\n")
	sb.WriteString("- Before each tool call, draft 2-3 candidate queries, then pick the best one.\n")
	fmt.Fprintf(&sb, "\nLimit yourself to %d total searches.\n", maxSearches)
	sb.WriteString("Return an enriched classification with your research findings.")
	return sb.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
