// Package report assembles the generated assessment report from statistics
// and maturity results.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dstrand/maturity-agent/internal/llm"
	"github.com/dstrand/maturity-agent/internal/prompts"
	"github.com/dstrand/maturity-agent/internal/types"
)

// DefaultCallTimeout bounds each completion call.
const DefaultCallTimeout = 90 * time.Second

// Customer identifies who the report is prepared for.
type Customer struct {
	Name string
	Code string
}

// Composer is the report composition stage.
type Composer struct {
	client      llm.Client
	logger      *zap.Logger
	callTimeout time.Duration
}

// NewComposer creates a report composer.
func NewComposer(client llm.Client, logger *zap.Logger) *Composer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composer{
		client:      client,
		logger:      logger,
		callTimeout: DefaultCallTimeout,
	}
}

// Execute assembles the full report. The executive summary and action items
// involve completion calls; everything else is deterministic formatting of
// the upstream outputs.
func (c *Composer) Execute(ctx context.Context, dimension string, stats *types.SurveyStats, assessment *types.MaturityAssessment, records []types.SurveyRecord, customer Customer) (result types.AgentResult) {
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result = types.NewFailureResult(types.StageCompose, fmt.Errorf("report composition panicked: %v", r), started)
		}
	}()

	if c.client == nil {
		return types.NewFailureResult(types.StageCompose, fmt.Errorf("no completion client configured"), started)
	}
	if stats == nil || assessment == nil {
		return types.NewFailureResult(types.StageCompose, fmt.Errorf("statistics and assessment are required"), started)
	}

	summary, err := c.executiveSummary(ctx, dimension, stats, assessment, customer)
	if err != nil {
		return types.NewFailureResult(types.StageCompose, fmt.Errorf("executive summary generation failed: %w", err), started)
	}

	actionItems := c.actionItems(ctx, dimension, assessment.PriorityGaps)

	report := &types.GeneratedReport{
		Dimension:        dimension,
		ExecutiveSummary: summary,
		Sections:         buildSections(stats, assessment, records),
		ActionItems:      actionItems,
		Roadmap:          buildRoadmap(actionItems),
		Visuals:          buildVisuals(stats, assessment),
		Metadata: types.ReportMetadata{
			CustomerName:   customer.Name,
			CustomerCode:   customer.Code,
			GeneratedAt:    time.Now().UTC(),
			CompositeScore: assessment.CompositeScore,
			ResponseCount:  stats.ResponseCount,
			QuestionCount:  stats.QuestionCount,
		},
	}

	return types.NewSuccessResult(types.StageCompose, report, started)
}

// executiveSummary runs the narrative completion call. An empty response is
// treated as a failure; no other structural validation is applied.
func (c *Composer) executiveSummary(ctx context.Context, dimension string, stats *types.SurveyStats, assessment *types.MaturityAssessment, customer Customer) (string, error) {
	frameworks := make([]string, 0, len(assessment.MaturityLevels))
	for _, level := range assessment.MaturityLevels {
		frameworks = append(frameworks, fmt.Sprintf("%s (%.1f/5)", level.Framework, level.Score))
	}

	var gapLines strings.Builder
	for _, gap := range assessment.PriorityGaps {
		gapLines.WriteString(fmt.Sprintf("  %d. %s\n", gap.Rank, gap.Gap))
	}
	if gapLines.Len() == 0 {
		gapLines.WriteString("  (none identified)\n")
	}

	customerName := customer.Name
	if customerName == "" {
		customerName = "the organization"
	}

	prompt := prompts.Format(prompts.MustGet("report.json", "executive-summary"), map[string]string{
		"Dimension":      dimension,
		"CustomerName":   customerName,
		"AverageScore":   fmt.Sprintf("%.1f", stats.AverageScore),
		"QuestionCount":  fmt.Sprintf("%d", stats.QuestionCount),
		"ResponseCount":  fmt.Sprintf("%d", stats.ResponseCount),
		"CompositeScore": fmt.Sprintf("%.2f", assessment.CompositeScore),
		"Frameworks":     strings.Join(frameworks, ", "),
		"PriorityGaps":   gapLines.String(),
	})

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	summary, err := c.client.GenerateContent(callCtx, llm.Request{
		System: prompts.MustGet("report.json", "executive-summary-system"),
		Prompt: prompt,
		Tier:   llm.TierAdvanced,
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(summary) == "" {
		return "", fmt.Errorf("model returned an empty summary")
	}
	return strings.TrimSpace(summary), nil
}

// buildVisuals remaps already-computed values into the chart bundle.
func buildVisuals(stats *types.SurveyStats, assessment *types.MaturityAssessment) types.VisualData {
	categoryScores := make(map[string]float64, len(stats.ByCategory))
	for name, fs := range stats.ByCategory {
		categoryScores[name] = fs.Average
	}

	frameworkScores := make(map[string]float64, len(assessment.MaturityLevels))
	for _, level := range assessment.MaturityLevels {
		frameworkScores[level.Framework] = level.Score
	}

	distribution := make(map[string]int, len(stats.ScoreDistribution))
	for bucket, count := range stats.ScoreDistribution {
		distribution[bucket] = count
	}

	themes := make([]string, len(stats.CommentThemes))
	copy(themes, stats.CommentThemes)

	return types.VisualData{
		CategoryScores:    categoryScores,
		FrameworkScores:   frameworkScores,
		ScoreDistribution: distribution,
		CommentThemes:     themes,
	}
}
