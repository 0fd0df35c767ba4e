package types

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Roadmap phase identifiers. Phases are fixed; items within a phase keep
// their insertion order.
const (
	PhaseFoundation    = "phase_1_foundation"
	PhaseExpansion     = "phase_2_expansion"
	PhaseInstitutional = "phase_3_institutionalization"
)

// RoadmapPhases returns the phase keys in presentation order.
func RoadmapPhases() []string {
	return []string{PhaseFoundation, PhaseExpansion, PhaseInstitutional}
}

// PhaseTitle returns a human-readable title for a roadmap phase key.
func PhaseTitle(phase string) string {
	switch phase {
	case PhaseFoundation:
		return "Phase 1: Foundation (Q1–Q2)"
	case PhaseExpansion:
		return "Phase 2: Expansion (Q3–Q4)"
	case PhaseInstitutional:
		return "Phase 3: Institutionalization"
	}
	return phase
}

// ReportSection is one section of the generated report. Sections own their
// subsections outright; the tree is built bottom-up from computed data, so it
// is acyclic and of finite depth.
type ReportSection struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Content     string          `json:"content"`
	Subsections []ReportSection `json:"subsections,omitempty"`
}

// ActionItem is one recommended action derived from a priority gap.
type ActionItem struct {
	Action          string `json:"action"`
	Priority        string `json:"priority"`
	Owner           string `json:"owner"`
	Timeline        string `json:"timeline"`
	ExpectedOutcome string `json:"expected_outcome"`
	Framework       string `json:"framework"`
}

// VisualData bundles the chart-ready numbers for the report. It is a plain
// remapping of already-computed values; nothing here is rendered.
type VisualData struct {
	CategoryScores    map[string]float64 `json:"category_scores"`
	FrameworkScores   map[string]float64 `json:"framework_scores"`
	ScoreDistribution map[string]int     `json:"score_distribution"`
	CommentThemes     []string           `json:"comment_themes"`
}

// ReportMetadata carries report provenance for headers and footers.
type ReportMetadata struct {
	CustomerName   string    `json:"customer_name"`
	CustomerCode   string    `json:"customer_code,omitempty"`
	GeneratedAt    time.Time `json:"generated_at"`
	CompositeScore float64   `json:"composite_score"`
	ResponseCount  int       `json:"response_count"`
	QuestionCount  int       `json:"question_count"`
}

// GeneratedReport is the output of the composition stage.
type GeneratedReport struct {
	Dimension        string              `json:"dimension"`
	ExecutiveSummary string              `json:"executive_summary"`
	Sections         []ReportSection     `json:"sections"`
	ActionItems      []ActionItem        `json:"action_items"`
	Roadmap          map[string][]string `json:"roadmap"`
	Visuals          VisualData          `json:"visuals"`
	Metadata         ReportMetadata      `json:"metadata"`
}

// Markdown renders the full report as one markdown document.
func (r *GeneratedReport) Markdown() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s Maturity Assessment\n\n", r.Dimension))
	if r.Metadata.CustomerName != "" {
		sb.WriteString(fmt.Sprintf("**Prepared for:** %s", r.Metadata.CustomerName))
		if r.Metadata.CustomerCode != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", r.Metadata.CustomerCode))
		}
		sb.WriteString("\n\n")
	}
	if !r.Metadata.GeneratedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("**Generated:** %s\n\n", r.Metadata.GeneratedAt.Format("2006-01-02")))
	}

	sb.WriteString("## Executive Summary\n\n")
	sb.WriteString(strings.TrimSpace(r.ExecutiveSummary))
	sb.WriteString("\n\n")

	for _, sec := range r.Sections {
		writeSection(&sb, sec, 2)
	}

	if len(r.ActionItems) > 0 {
		sb.WriteString("## Recommended Actions\n\n")
		sb.WriteString("| Action | Priority | Owner | Timeline | Expected Outcome | Framework |\n")
		sb.WriteString("|---|---|---|---|---|---|\n")
		for _, it := range r.ActionItems {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n",
				mdCell(it.Action), mdCell(it.Priority), mdCell(it.Owner),
				mdCell(it.Timeline), mdCell(it.ExpectedOutcome), mdCell(it.Framework)))
		}
		sb.WriteString("\n")
	}

	if len(r.Roadmap) > 0 {
		sb.WriteString("## Implementation Roadmap\n\n")
		for _, phase := range RoadmapPhases() {
			items := r.Roadmap[phase]
			if len(items) == 0 {
				continue
			}
			sb.WriteString(fmt.Sprintf("### %s\n\n", PhaseTitle(phase)))
			for i, item := range items {
				sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, item))
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// writeSection renders a section and its subsections at the given heading depth.
func writeSection(sb *strings.Builder, sec ReportSection, depth int) {
	if depth > 6 {
		depth = 6
	}
	sb.WriteString(strings.Repeat("#", depth))
	sb.WriteString(" ")
	sb.WriteString(sec.Title)
	sb.WriteString("\n\n")
	if content := strings.TrimSpace(sec.Content); content != "" {
		sb.WriteString(content)
		sb.WriteString("\n\n")
	}
	for _, sub := range sec.Subsections {
		writeSection(sb, sub, depth+1)
	}
}

// mdCell makes a value safe for a one-line markdown table cell.
func mdCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

// SortedKeys returns map keys in sorted order for deterministic rendering.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
