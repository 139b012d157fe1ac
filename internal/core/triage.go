package core

import (
	"context"

	"leadsagent/internal/prompts"
)

// runTriage performs the fast first pass. It always runs; any error here
// aborts the pipeline.
func (p *Pipeline) runTriage(ctx context.Context, lead Lead, trace *Trace) (*Classification, error) {
	instructions := prompts.Build(prompts.StageTriage, p.store.Effective())
	ag := p.agentFor(instructions, p.llm.TriageMaxTokens, nil)

	prompt := lead.PromptText()
	if p.text != nil {
		prompt = p.text.ProcessText(prompt, p.llm.MaxBodySize)
	}

	var out Classification
	run, err := ag.Run(ctx, prompt, &out)
	trace.record(prompts.StageTriage, run)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
