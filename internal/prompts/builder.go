package prompts

import (
	"fmt"
	"strings"
)

// Build composes the final instruction string for a stage from the fixed
// base prompt plus the configured optional sections. It is deterministic
// and side-effect free: identical input yields byte-identical output, and
// a configuration with no values set yields exactly the base prompt.
//
// Section order: base, company context, ICP, qualifying questions, custom
// instructions. The research stage additionally gets the configured focus
// areas and a query operator clause pack derived from the ICP.
func Build(stage Stage, cfg PromptConfig) string {
	var sb strings.Builder
	sb.WriteString(BasePrompt(stage))

	writeCompanyContext(&sb, cfg)
	writeICP(&sb, stage, cfg.ICP)
	writeQualifyingQuestions(&sb, stage, cfg.QualifyingQuestions)
	writeCustomInstructions(&sb, cfg.CustomInstructions)

	if stage == StageResearch {
		writeFocusAreas(&sb, cfg.ResearchFocusAreas)
		writeClausePack(&sb, cfg)
	}

	return sb.String()
}

func writeCompanyContext(sb *strings.Builder, cfg PromptConfig) {
	name := strings.TrimSpace(cfg.CompanyName)
	services := strings.TrimSpace(cfg.ServicesDescription)
	if name == "" && services == "" {
		return
	}
	sb.WriteString("\n\n--- Internal Company Context ---\n")
	lines := make([]string, 0, 2)
	if name != "" {
		lines = append(lines, "Company: "+name)
	}
	if services != "" {
		lines = append(lines, "Services: "+services)
	}
	sb.WriteString(strings.Join(lines, "\n"))
}

func writeICP(sb *strings.Builder, stage Stage, icp *ICPConfig) {
	if icp.IsEmpty() {
		return
	}
	bullets := make([]string, 0, 6)
	add := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			bullets = append(bullets, fmt.Sprintf("- **%s:** %s", label, strings.TrimSpace(value)))
		}
	}
	add("Target Profile", icp.Description)
	add("Target Industries", joinSet(icp.TargetIndustries))
	add("Target Company Sizes", joinSet(icp.TargetCompanySizes))
	add("Decision Maker Roles", joinSet(icp.TargetRoles))
	add("Geographic Focus", joinSet(icp.GeographicFocus))
	add("Disqualifying Signals", joinSet(icp.DisqualifyingSignals))
	if len(bullets) == 0 {
		return
	}

	sb.WriteString("\n\n--- Ideal Client Profile ---\n")
	if stage == StageResearch {
		sb.WriteString("Use this context to assess fit:\n")
	}
	sb.WriteString(strings.Join(bullets, "\n"))
}

func writeQualifyingQuestions(sb *strings.Builder, stage Stage, questions []string) {
	qs := trimSet(questions)
	if len(qs) == 0 {
		return
	}
	sb.WriteString("\n\n--- Qualifying Questions ---\n")
	switch stage {
	case StageTriage:
		sb.WriteString("Consider these during triage:\n")
	case StageScoring:
		sb.WriteString("Use these to justify score/action:\n")
	case StageResearch:
		sb.WriteString("Try to gather information that helps answer:\n")
	}
	for i, q := range qs {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(sb, "%d. %s", i+1, q)
	}
}

func writeCustomInstructions(sb *strings.Builder, instructions string) {
	if strings.TrimSpace(instructions) == "" {
		return
	}
	sb.WriteString("\n\n--- Additional Instructions ---\n")
	sb.WriteString(instructions)
}

func writeFocusAreas(sb *strings.Builder, areas []string) {
	set := trimSet(areas)
	if len(set) == 0 {
		return
	}
	sb.WriteString("\n\n--- What to Research ---\nFocus on finding:\n")
	for i, area := range set {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("- " + area)
	}
}

// writeClausePack emits search-operator building blocks derived from the
// configuration, used to bias the research agent's query phrasing.
func writeClausePack(sb *strings.Builder, cfg PromptConfig) {
	lines := []string{"General noise filters: -jobs -careers -hiring -pdf -login"}

	if icp := cfg.ICP; !icp.IsEmpty() {
		if clause := orClause(icp.TargetIndustries); clause != "" {
			lines = append(lines, "Industry clause: "+clause)
		}
		if clause := orClause(icp.TargetRoles); clause != "" {
			lines = append(lines, "Role/title clause: "+clause)
		}
		if clause := orClause(icp.GeographicFocus); clause != "" {
			lines = append(lines, "Geo clause: "+clause)
		}
		if clause := orClause(icp.TargetCompanySizes); clause != "" {
			lines = append(lines, "Company size clause: "+clause)
		}
		if exclusions := exclusionClause(icp.DisqualifyingSignals); exclusions != "" {
			lines = append(lines, "Disqualifier exclusions (optional): "+exclusions)
		}
	}
	if clause := orClause(cfg.ResearchFocusAreas); clause != "" {
		lines = append(lines, "Focus-area terms (optional): "+clause)
	}
	if len(trimSet(cfg.QualifyingQuestions)) > 0 {
		lines = append(lines,
			"Qualifying questions: convert 1-2 into query clauses (e.g., pricing/budget, compliance, headcount/employees).")
	}

	sb.WriteString("\n\n--- Query Operator Clause Pack ---\n")
	sb.WriteString("Use these to make searches specific. Combine with quoted company/contact names and site: constraints when useful:\n")
	for i, line := range lines {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("- " + line)
	}
}

// orClause renders a parenthesized OR group of quoted terms, or "" when
// the list holds no usable entries.
func orClause(terms []string) string {
	set := trimSet(terms)
	if len(set) == 0 {
		return ""
	}
	quoted := make([]string, len(set))
	for i, t := range set {
		quoted[i] = fmt.Sprintf("%q", t)
	}
	return "(" + strings.Join(quoted, " OR ") + ")"
}

// exclusionClause renders disqualifying signals as quoted exclusion terms.
func exclusionClause(terms []string) string {
	set := trimSet(terms)
	if len(set) == 0 {
		return ""
	}
	excluded := make([]string, len(set))
	for i, t := range set {
		excluded[i] = fmt.Sprintf("-%q", t)
	}
	return strings.Join(excluded, " ")
}

func joinSet(list []string) string {
	return strings.Join(trimSet(list), ", ")
}

func trimSet(list []string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}
