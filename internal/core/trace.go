package core

import (
	"leadsagent/internal/agent"
	"leadsagent/internal/prompts"
)

// StageMessage is one model-interaction message tagged with the stage that
// produced it.
type StageMessage struct {
	Stage prompts.Stage `json:"stage"`
	agent.Message
}

// Trace is the optional debug artifact: the ordered model transcript plus
// per-stage token usage. It is purely additive and never affects the
// classification result; the pipeline materializes one only when asked.
type Trace struct {
	Messages []StageMessage         `json:"messages"`
	Usage    map[string]agent.Usage `json:"usage"`
	Errors   map[string]string      `json:"errors,omitempty"`
}

func newTrace() *Trace {
	return &Trace{
		Usage:  make(map[string]agent.Usage),
		Errors: make(map[string]string),
	}
}

// record appends a stage's transcript and usage. A nil trace (debug off)
// records nothing.
func (t *Trace) record(stage prompts.Stage, run *agent.RunResult) {
	if t == nil || run == nil {
		return
	}
	for _, msg := range run.Messages {
		t.Messages = append(t.Messages, StageMessage{Stage: stage, Message: msg})
	}
	t.Usage[string(stage)] = run.Usage
}

// recordError notes a stage-local failure (research degradation).
func (t *Trace) recordError(stage prompts.Stage, err error) {
	if t == nil || err == nil {
		return
	}
	t.Errors[string(stage)] = err.Error()
}
