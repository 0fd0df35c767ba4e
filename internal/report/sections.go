package report

import (
	"fmt"
	"strings"

	"github.com/dstrand/maturity-agent/internal/types"
)

// maxQuestionRows caps the question-level detail table.
const maxQuestionRows = 40

// buildSections assembles the deterministic report body. No completion calls
// happen here; the only narrative is what the assessment already carries.
func buildSections(stats *types.SurveyStats, assessment *types.MaturityAssessment, records []types.SurveyRecord) []types.ReportSection {
	return []types.ReportSection{
		currentStateSection(stats),
		{
			ID:    "facet-analysis",
			Title: "Facet Analysis",
			Subsections: []types.ReportSection{
				facetSection("by-category", "Results by Category", stats.ByCategory),
				facetSection("by-process", "Results by Process", stats.ByProcess),
				facetSection("by-lifecycle", "Results by Lifecycle Stage", stats.ByLifecycle),
			},
		},
		maturitySection(assessment),
		questionSection(records),
	}
}

// currentStateSection summarizes the overall survey metrics.
func currentStateSection(stats *types.SurveyStats) types.ReportSection {
	var sb strings.Builder

	sb.WriteString("| Metric | Value |\n|---|---|\n")
	sb.WriteString(fmt.Sprintf("| Average score | %.1f / 10 |\n", stats.AverageScore))
	sb.WriteString(fmt.Sprintf("| Median score | %.1f |\n", stats.MedianScore))
	sb.WriteString(fmt.Sprintf("| Score range | %.1f – %.1f |\n", stats.MinScore, stats.MaxScore))
	sb.WriteString(fmt.Sprintf("| Standard deviation | %.1f |\n", stats.StdDev))
	sb.WriteString(fmt.Sprintf("| Questions | %d |\n", stats.QuestionCount))
	sb.WriteString(fmt.Sprintf("| Responses | %d |\n", stats.ResponseCount))

	if len(stats.ScoreDistribution) > 0 {
		sb.WriteString("\n**Score distribution:**\n\n")
		for _, bucket := range types.SortedKeys(stats.ScoreDistribution) {
			sb.WriteString(fmt.Sprintf("- %s: %d questions\n", bucket, stats.ScoreDistribution[bucket]))
		}
	}

	if len(stats.CommentThemes) > 0 {
		sb.WriteString("\n**Recurring comment themes:**\n\n")
		for i, theme := range stats.CommentThemes {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, theme))
		}
	}

	return types.ReportSection{
		ID:      "current-state",
		Title:   "Current State",
		Content: strings.TrimRight(sb.String(), "\n"),
	}
}

// facetSection renders one facet axis as a table, keys sorted for
// deterministic output.
func facetSection(id, title string, facets map[string]types.FacetStats) types.ReportSection {
	if len(facets) == 0 {
		return types.ReportSection{ID: id, Title: title, Content: "_No data available for this view._"}
	}

	var sb strings.Builder
	sb.WriteString("| Group | Average | Responses | High (≥8) | Medium (5–8) | Low (<5) |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	for _, name := range types.SortedKeys(facets) {
		fs := facets[name]
		sb.WriteString(fmt.Sprintf("| %s | %.1f | %d | %.1f%% | %.1f%% | %.1f%% |\n",
			name, fs.Average, fs.ResponseCount, fs.HighPct, fs.MediumPct, fs.LowPct))
	}

	return types.ReportSection{
		ID:      id,
		Title:   title,
		Content: strings.TrimRight(sb.String(), "\n"),
	}
}

// maturitySection details the framework assessments and priority gaps.
func maturitySection(assessment *types.MaturityAssessment) types.ReportSection {
	section := types.ReportSection{
		ID:      "maturity-assessment",
		Title:   "Maturity Assessment",
		Content: fmt.Sprintf("Composite maturity score: **%.2f / 5** across %d framework(s).", assessment.CompositeScore, len(assessment.MaturityLevels)),
	}

	for _, level := range assessment.MaturityLevels {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("**Level:** %s (%.1f/5)\n\n", level.CurrentLevel, level.Score))

		if len(level.Gaps) > 0 {
			sb.WriteString("**Gaps:**\n\n")
			for _, gap := range level.Gaps {
				sb.WriteString("- " + gap + "\n")
			}
			sb.WriteString("\n")
		}
		if len(level.BestPractices) > 0 {
			sb.WriteString("**Observed practices:**\n\n")
			for _, practice := range level.BestPractices {
				sb.WriteString("- " + practice + "\n")
			}
			sb.WriteString("\n")
		}
		if len(level.EvidenceQuestionIDs) > 0 {
			sb.WriteString("_Evidence: questions " + strings.Join(level.EvidenceQuestionIDs, ", ") + "_")
		}

		section.Subsections = append(section.Subsections, types.ReportSection{
			ID:      "framework-" + slugify(level.Framework),
			Title:   level.Framework,
			Content: strings.TrimRight(sb.String(), "\n"),
		})
	}

	if len(assessment.PriorityGaps) > 0 {
		var sb strings.Builder
		sb.WriteString("| Rank | Gap | Framework | Rationale |\n|---|---|---|---|\n")
		for _, gap := range assessment.PriorityGaps {
			sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s |\n", gap.Rank, gap.Gap, gap.Framework, gap.Rationale))
		}
		section.Subsections = append(section.Subsections, types.ReportSection{
			ID:      "priority-gaps",
			Title:   "Priority Gaps",
			Content: strings.TrimRight(sb.String(), "\n"),
		})
	}

	return section
}

// questionSection tabulates per-question results.
func questionSection(records []types.SurveyRecord) types.ReportSection {
	if len(records) == 0 {
		return types.ReportSection{
			ID:      "question-detail",
			Title:   "Question Detail",
			Content: "_No survey questions available._",
		}
	}

	var sb strings.Builder
	sb.WriteString("| Question | Score | Responses | Category |\n|---|---|---|---|\n")
	for i := range records {
		if i >= maxQuestionRows {
			sb.WriteString(fmt.Sprintf("\n_…and %d more questions._\n", len(records)-maxQuestionRows))
			break
		}
		r := &records[i]
		text := r.QuestionText
		if text == "" {
			text = r.QuestionID
		}
		scoreCell := "—"
		if score, ok := r.Score(); ok {
			scoreCell = fmt.Sprintf("%.1f", score)
		}
		category := r.Category
		if category == "" {
			category = "Unknown"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %d | %s |\n", text, scoreCell, r.ResponseCount, category))
	}

	return types.ReportSection{
		ID:      "question-detail",
		Title:   "Question Detail",
		Content: strings.TrimRight(sb.String(), "\n"),
	}
}

// slugify lowercases a name for use in section ids.
func slugify(name string) string {
	name = strings.ToLower(name)
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, name)
	return strings.Trim(name, "-")
}
