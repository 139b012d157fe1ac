package prompts

import (
	"fmt"
	"strings"
)

// ICPConfig describes a deployment's ideal client profile. Every field is
// optional; whitespace-only values are treated as unset.
type ICPConfig struct {
	Description          string   `json:"description,omitempty"`
	TargetIndustries     []string `json:"target_industries,omitempty"`
	TargetCompanySizes   []string `json:"target_company_sizes,omitempty"`
	TargetRoles          []string `json:"target_roles,omitempty"`
	GeographicFocus      []string `json:"geographic_focus,omitempty"`
	DisqualifyingSignals []string `json:"disqualifying_signals,omitempty"`
}

// IsEmpty reports whether no ICP attribute is set.
func (c *ICPConfig) IsEmpty() bool {
	if c == nil {
		return true
	}
	return strings.TrimSpace(c.Description) == "" &&
		!anySet(c.TargetIndustries) &&
		!anySet(c.TargetCompanySizes) &&
		!anySet(c.TargetRoles) &&
		!anySet(c.GeographicFocus) &&
		!anySet(c.DisqualifyingSignals)
}

// PromptConfig is the deployment-specific prompt configuration. All fields
// are optional; only configured fields contribute sections to built prompts.
type PromptConfig struct {
	CompanyName         string     `json:"company_name,omitempty"`
	ServicesDescription string     `json:"services_description,omitempty"`
	ICP                 *ICPConfig `json:"icp,omitempty"`
	QualifyingQuestions []string   `json:"qualifying_questions,omitempty"`
	CustomInstructions  string     `json:"custom_instructions,omitempty"`
	ResearchFocusAreas  []string   `json:"research_focus_areas,omitempty"`
}

// IsEmpty reports whether the configuration has no values set.
func (c PromptConfig) IsEmpty() bool {
	return strings.TrimSpace(c.CompanyName) == "" &&
		strings.TrimSpace(c.ServicesDescription) == "" &&
		c.ICP.IsEmpty() &&
		!anySet(c.QualifyingQuestions) &&
		strings.TrimSpace(c.CustomInstructions) == "" &&
		!anySet(c.ResearchFocusAreas)
}

// ValidationError reports why a prompt configuration was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid prompt config: %s: %s", e.Field, e.Reason)
}

// Validate checks the configuration as a whole. List fields must not
// contain blank entries; a list that exists must not be all-blank.
func (c PromptConfig) Validate() error {
	if err := validateList("qualifying_questions", c.QualifyingQuestions); err != nil {
		return err
	}
	if err := validateList("research_focus_areas", c.ResearchFocusAreas); err != nil {
		return err
	}
	if c.ICP != nil {
		for field, list := range map[string][]string{
			"icp.target_industries":     c.ICP.TargetIndustries,
			"icp.target_company_sizes":  c.ICP.TargetCompanySizes,
			"icp.target_roles":          c.ICP.TargetRoles,
			"icp.geographic_focus":      c.ICP.GeographicFocus,
			"icp.disqualifying_signals": c.ICP.DisqualifyingSignals,
		} {
			if err := validateList(field, list); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateList(field string, list []string) error {
	for i, v := range list {
		if strings.TrimSpace(v) == "" {
			return &ValidationError{
				Field:  field,
				Reason: fmt.Sprintf("entry %d is blank", i),
			}
		}
	}
	return nil
}

// merge deep-merges a partial patch onto a base configuration. Zero values
// in the patch leave the base value unchanged.
func merge(base, patch PromptConfig) PromptConfig {
	out := base
	if strings.TrimSpace(patch.CompanyName) != "" {
		out.CompanyName = patch.CompanyName
	}
	if strings.TrimSpace(patch.ServicesDescription) != "" {
		out.ServicesDescription = patch.ServicesDescription
	}
	if len(patch.QualifyingQuestions) > 0 {
		out.QualifyingQuestions = append([]string(nil), patch.QualifyingQuestions...)
	}
	if strings.TrimSpace(patch.CustomInstructions) != "" {
		out.CustomInstructions = patch.CustomInstructions
	}
	if len(patch.ResearchFocusAreas) > 0 {
		out.ResearchFocusAreas = append([]string(nil), patch.ResearchFocusAreas...)
	}
	if patch.ICP != nil {
		merged := ICPConfig{}
		if base.ICP != nil {
			merged = *base.ICP
		}
		if strings.TrimSpace(patch.ICP.Description) != "" {
			merged.Description = patch.ICP.Description
		}
		if len(patch.ICP.TargetIndustries) > 0 {
			merged.TargetIndustries = append([]string(nil), patch.ICP.TargetIndustries...)
		}
		if len(patch.ICP.TargetCompanySizes) > 0 {
			merged.TargetCompanySizes = append([]string(nil), patch.ICP.TargetCompanySizes...)
		}
		if len(patch.ICP.TargetRoles) > 0 {
			merged.TargetRoles = append([]string(nil), patch.ICP.TargetRoles...)
		}
		if len(patch.ICP.GeographicFocus) > 0 {
			merged.GeographicFocus = append([]string(nil), patch.ICP.GeographicFocus...)
		}
		if len(patch.ICP.DisqualifyingSignals) > 0 {
			merged.DisqualifyingSignals = append([]string(nil), patch.ICP.DisqualifyingSignals...)
		}
		out.ICP = &merged
	}
	return out
}

// anySet reports whether the list holds at least one non-blank entry.
func anySet(list []string) bool {
	for _, v := range list {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}
