// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dstrand/maturity-agent/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintStats outputs a human-readable summary of the survey statistics.
func (p *Printer) PrintStats(stats *types.SurveyStats) {
	if stats == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Questions:  %d (%d responses)\n", stats.QuestionCount, stats.ResponseCount))
	sb.WriteString(fmt.Sprintf("Average:    %.1f / 10\n", stats.AverageScore))
	sb.WriteString(fmt.Sprintf("Median:     %.1f\n", stats.MedianScore))
	sb.WriteString(fmt.Sprintf("Range:      %.1f - %.1f (stddev %.1f)\n", stats.MinScore, stats.MaxScore, stats.StdDev))

	if len(stats.ByCategory) > 0 {
		sb.WriteString("\nBy category:\n")
		for _, name := range types.SortedKeys(stats.ByCategory) {
			fs := stats.ByCategory[name]
			sb.WriteString(fmt.Sprintf("  • %s: %.1f (%d responses)\n", name, fs.Average, fs.ResponseCount))
		}
	}

	if len(stats.CommentThemes) > 0 {
		sb.WriteString("\nComment themes:\n")
		count := min(len(stats.CommentThemes), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, stats.CommentThemes[i]))
		}
	}

	p.printBox("SURVEY STATISTICS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAssessment outputs the framework scores and priority gaps.
func (p *Printer) PrintAssessment(assessment *types.MaturityAssessment) {
	if assessment == nil || len(assessment.MaturityLevels) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Composite score: %.2f / 5\n\n", assessment.CompositeScore))

	for _, level := range assessment.MaturityLevels {
		sb.WriteString(fmt.Sprintf("%s\n", level.Framework))
		sb.WriteString(fmt.Sprintf("    Level: %s (%.1f/5)\n", level.CurrentLevel, level.Score))
		if len(level.Gaps) > 0 {
			gaps := strings.Join(level.Gaps, "; ")
			if len(gaps) > 40 {
				gaps = gaps[:37] + "..."
			}
			sb.WriteString(fmt.Sprintf("    Gaps:  %s\n", gaps))
		}
	}

	if len(assessment.PriorityGaps) > 0 {
		sb.WriteString("\nPriority gaps:\n")
		count := min(len(assessment.PriorityGaps), maxItemsToShow)
		for i := 0; i < count; i++ {
			gap := assessment.PriorityGaps[i]
			sb.WriteString(fmt.Sprintf("  #%d [%s] %s\n", gap.Rank, gap.Framework, gap.Gap))
		}
	}

	p.printBox("MATURITY ASSESSMENT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintReport outputs the shape of the composed report.
func (p *Printer) PrintReport(report *types.GeneratedReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Dimension: %s\n", report.Dimension))
	if report.Metadata.CustomerName != "" {
		sb.WriteString(fmt.Sprintf("Customer:  %s\n", report.Metadata.CustomerName))
	}
	sb.WriteString(fmt.Sprintf("Sections:  %d\n", len(report.Sections)))
	sb.WriteString(fmt.Sprintf("Actions:   %d\n", len(report.ActionItems)))

	if len(report.ActionItems) > 0 {
		sb.WriteString("\nRecommended actions:\n")
		count := min(len(report.ActionItems), maxItemsToShow)
		for i := 0; i < count; i++ {
			item := report.ActionItems[i]
			sb.WriteString(fmt.Sprintf("  • [%s] %s (%s)\n", item.Priority, item.Action, item.Timeline))
		}
	}

	p.printBox("GENERATED REPORT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintWorkflowResult outputs the per-stage outcome and the quality verdict.
func (p *Printer) PrintWorkflowResult(result *types.WorkflowResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:       %s\n", result.RunID))
	if result.Success {
		sb.WriteString("Outcome:   success\n")
	} else {
		sb.WriteString(fmt.Sprintf("Outcome:   FAILED (%s)\n", result.Error))
	}

	sb.WriteString("\nStages:\n")
	for _, stage := range types.SortedKeys(result.StageResults) {
		stageResult := result.StageResults[stage]
		mark := "✓"
		if !stageResult.Success {
			mark = "✗"
		}
		sb.WriteString(fmt.Sprintf("  %s %s (%s)\n", mark, stage, stageResult.Duration.Round(time.Millisecond)))
	}

	sb.WriteString("\n")
	if result.Summary.FinalQualityScore != nil {
		sb.WriteString(fmt.Sprintf("Quality:   %.1f / 10", *result.Summary.FinalQualityScore))
		if result.Summary.QualityApproved {
			sb.WriteString(" (approved)\n")
		} else {
			sb.WriteString(" (below threshold)\n")
		}
	}
	sb.WriteString(fmt.Sprintf("Revisions: %d\n", result.Summary.RevisionCount))
	sb.WriteString(fmt.Sprintf("Elapsed:   %s", result.Summary.Elapsed.Round(time.Millisecond)))

	// Label the formatting outcome: skipped is normal, a conversion error
	// is worth surfacing even though it never fails the run.
	if formatResult, ok := result.StageResults[types.StageFormat]; ok {
		status := types.DocumentError
		if formatResult.Success {
			if output, ok := formatResult.Output.(*types.DocumentOutput); ok {
				status = output.Status
				if output.Path != "" {
					sb.WriteString(fmt.Sprintf("\nDocument:  %s (%d pages)", output.Path, output.PageCount))
				}
			}
		}
		if status != types.DocumentSuccess {
			sb.WriteString(fmt.Sprintf("\nDocument:  %s", status))
		}
	}

	p.printBox("WORKFLOW RESULT", strings.TrimSuffix(sb.String(), "\n"))
}
