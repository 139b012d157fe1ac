// Package core implements the lead classification pipeline: the typed
// domain model, the stage runners (triage, research, scoring), and the
// orchestrator that sequences them.
package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Decision is the triage verdict. There are exactly two values; there is
// no third "unknown" state.
type Decision string

const (
	DecisionIgnore    Decision = "ignore"
	DecisionPromising Decision = "promising"
)

func (d Decision) valid() bool {
	return d == DecisionIgnore || d == DecisionPromising
}

// Action is the recommended handling derived from the 1-5 score.
type Action string

const (
	ActionIgnore     Action = "ignore"
	ActionFollowUp   Action = "follow_up"
	ActionPrioritize Action = "prioritize"
)

// Lead is the normalized inbound lead. All fields are optional except that
// at least one of Message and RawText is non-empty; validating that is the
// parsing collaborator's job. A Lead is immutable once constructed and
// consumed read-only by the pipeline.
type Lead struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Company   string `json:"company,omitempty"`
	Message   string `json:"message,omitempty"`
	RawText   string `json:"raw_text,omitempty"`
}

// Text returns the message body, falling back to the raw text blob.
func (l Lead) Text() string {
	if l.Message != "" {
		return l.Message
	}
	return l.RawText
}

// ContactName returns the space-joined contact name, or "".
func (l Lead) ContactName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

// EmailDomain returns the domain part of the lead's email, or "".
func (l Lead) EmailDomain() string {
	if i := strings.LastIndex(l.Email, "@"); i >= 0 {
		return l.Email[i+1:]
	}
	return ""
}

// PromptText formats the lead's populated fields for the triage prompt,
// falling back to the raw text when nothing was parsed.
func (l Lead) PromptText() string {
	parts := make([]string, 0, 5)
	if l.FirstName != "" {
		parts = append(parts, "First Name: "+l.FirstName)
	}
	if l.LastName != "" {
		parts = append(parts, "Last Name: "+l.LastName)
	}
	if l.Email != "" {
		parts = append(parts, "Email: "+l.Email)
	}
	if l.Company != "" {
		parts = append(parts, "Company: "+l.Company)
	}
	if l.Message != "" {
		parts = append(parts, "Message: "+l.Message)
	}
	if len(parts) == 0 {
		return l.RawText
	}
	return strings.Join(parts, "\n")
}

// Classification is the triage-stage output.
type Classification struct {
	// Contact info re-extracted by the model, best effort
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Company   string `json:"company,omitempty"`

	Decision    Decision `json:"decision"`
	Confidence  float64  `json:"confidence"`
	Reason      string   `json:"reason"`
	LeadSummary string   `json:"lead_summary,omitempty"`
	KeySignals  []string `json:"key_signals,omitempty"`
}

// Validate enforces the triage output contract.
func (c *Classification) Validate() error {
	if !c.Decision.valid() {
		return fmt.Errorf("decision must be %q or %q, got %q", DecisionIgnore, DecisionPromising, c.Decision)
	}
	if c.Confidence < 0.0 || c.Confidence > 1.0 {
		return fmt.Errorf("confidence must be in [0,1], got %v", c.Confidence)
	}
	return nil
}

// CompanyResearch holds web-research findings about the lead's company.
type CompanyResearch struct {
	CompanyName        string `json:"company_name"`
	CompanyDescription string `json:"company_description"`
	Industry           string `json:"industry,omitempty"`
	CompanySize        string `json:"company_size,omitempty"`
	Website            string `json:"website,omitempty"`
	RelevanceNotes     string `json:"relevance_notes,omitempty"`
}

// ContactResearch holds web-research findings about the contact person.
type ContactResearch struct {
	FullName       string `json:"full_name"`
	Title          string `json:"title,omitempty"`
	Summary        string `json:"summary,omitempty"`
	RelevanceNotes string `json:"relevance_notes,omitempty"`
}

// EnrichedClassification extends a Classification with research findings.
type EnrichedClassification struct {
	Classification

	CompanyResearch *CompanyResearch `json:"company_research,omitempty"`
	ContactResearch *ContactResearch `json:"contact_research,omitempty"`
	ResearchSummary string           `json:"research_summary,omitempty"`
}

// HasFindings reports whether the research stage produced anything at all.
// An all-empty research result is treated like a research failure.
func (e *EnrichedClassification) HasFindings() bool {
	return e.CompanyResearch != nil ||
		e.ContactResearch != nil ||
		strings.TrimSpace(e.ResearchSummary) != ""
}

// ScoredClassification is the final pipeline output for promising leads:
// an enriched classification plus the 1-5 priority score and action.
type ScoredClassification struct {
	EnrichedClassification

	Score       int    `json:"score"`
	Action      Action `json:"action"`
	ScoreReason string `json:"score_reason,omitempty"`
}

// Validate enforces the scoring output contract, including the fixed
// score/action/decision rubric. Consistency is demanded of the model's
// output, never patched up after the fact.
func (s *ScoredClassification) Validate() error {
	if err := s.Classification.Validate(); err != nil {
		return err
	}
	if s.Score < 1 || s.Score > 5 {
		return fmt.Errorf("score must be in [1,5], got %d", s.Score)
	}

	var wantAction Action
	var wantDecision Decision
	switch {
	case s.Score <= 2:
		wantAction, wantDecision = ActionIgnore, DecisionIgnore
	case s.Score <= 4:
		wantAction, wantDecision = ActionFollowUp, DecisionPromising
	default:
		wantAction, wantDecision = ActionPrioritize, DecisionPromising
	}
	if s.Action != wantAction {
		return fmt.Errorf("score %d requires action %q, got %q", s.Score, wantAction, s.Action)
	}
	if s.Decision != wantDecision {
		return fmt.Errorf("score %d requires decision %q, got %q", s.Score, wantDecision, s.Decision)
	}
	return nil
}

// ResultKind tags the concrete variant of a Result.
type ResultKind string

const (
	KindClassification ResultKind = "classification"
	KindEnriched       ResultKind = "enriched"
	KindScored         ResultKind = "scored"
)

// Result is the pipeline output: exactly one of Classification,
// EnrichedClassification, or ScoredClassification. Callers branch on Kind
// (or type-switch) rather than probing for fields.
type Result interface {
	Kind() ResultKind
	Base() Classification
}

func (c *Classification) Kind() ResultKind         { return KindClassification }
func (c *Classification) Base() Classification     { return *c }
func (e *EnrichedClassification) Kind() ResultKind { return KindEnriched }
func (e *EnrichedClassification) Base() Classification {
	return e.Classification
}
func (s *ScoredClassification) Kind() ResultKind { return KindScored }
func (s *ScoredClassification) Base() Classification {
	return s.Classification
}

// EncodeResult serializes a result variant for the dedup cache.
func EncodeResult(r Result) (ResultKind, []byte, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode %s result: %w", r.Kind(), err)
	}
	return r.Kind(), payload, nil
}

// DecodeResult restores a result variant from its cached form.
func DecodeResult(kind ResultKind, payload []byte) (Result, error) {
	var r Result
	switch kind {
	case KindClassification:
		r = &Classification{}
	case KindEnriched:
		r = &EnrichedClassification{}
	case KindScored:
		r = &ScoredClassification{}
	default:
		return nil, fmt.Errorf("unknown result kind %q", kind)
	}
	if err := json.Unmarshal(payload, r); err != nil {
		return nil, fmt.Errorf("failed to decode %s result: %w", kind, err)
	}
	return r, nil
}
