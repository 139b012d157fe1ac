package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"leadsagent/internal/prompts"
)

// runScoring assigns the final 1-5 score and recommended action. Unlike
// research it is load-bearing: a failure here fails the whole run.
func (p *Pipeline) runScoring(ctx context.Context, lead Lead, triage *Classification, enriched *EnrichedClassification, trace *Trace) (*ScoredClassification, error) {
	instructions := prompts.Build(prompts.StageScoring, p.store.Effective())
	ag := p.agentFor(instructions, p.llm.ScoringMaxTokens, nil)

	prompt, err := scoringPrompt(lead, triage, enriched)
	if err != nil {
		return nil, err
	}

	var out ScoredClassification
	run, err := ag.Run(ctx, prompt, &out)
	trace.record(prompts.StageScoring, run)
	if err != nil {
		trace.recordError(prompts.StageScoring, err)
		return nil, err
	}
	return &out, nil
}

func scoringPrompt(lead Lead, triage *Classification, enriched *EnrichedClassification) (string, error) {
	research, err := json.MarshalIndent(enriched, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode research for scoring: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("Score this lead:\n\n")
	fmt.Fprintf(&sb, "Contact: %s\n", orUnknown(lead.ContactName()))
	fmt.Fprintf(&sb, "Email: %s\n", orUnknown(lead.Email))
	fmt.Fprintf(&sb, "Company: %s\n", orUnknown(firstNonEmpty(triage.Company, lead.Company)))
	sb.WriteString("\nOriginal message:\n")
	sb.WriteString(lead.Text())
	sb.WriteString("\n\nTriage classification:\n")
	fmt.Fprintf(&sb, "- Decision: %s\n", triage.Decision)
	fmt.Fprintf(&sb, "- Confidence: %.0f%%\n", triage.Confidence*100)
	fmt.Fprintf(&sb, "- Reason: %s\n", triage.Reason)
	sb.WriteString("\nResearch result (JSON):\n")
	sb.Write(research)
	sb.WriteString("\n\nReturn the scored classification.")
	return sb.String(), nil
}
