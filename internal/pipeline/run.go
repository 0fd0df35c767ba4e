// Package pipeline orchestrates the assessment workflow: statistics,
// maturity assessment, report composition, the quality gate with its bounded
// revision loop, and optional document formatting.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dstrand/maturity-agent/internal/critique"
	"github.com/dstrand/maturity-agent/internal/document"
	"github.com/dstrand/maturity-agent/internal/llm"
	"github.com/dstrand/maturity-agent/internal/maturity"
	"github.com/dstrand/maturity-agent/internal/report"
	"github.com/dstrand/maturity-agent/internal/retrieval"
	"github.com/dstrand/maturity-agent/internal/statistics"
	"github.com/dstrand/maturity-agent/internal/types"
)

// WorkflowConfig tunes the quality gate and optional stages.
type WorkflowConfig struct {
	// EnableRevision allows the quality gate to request revisions. When
	// false the first critique is final.
	EnableRevision bool
	// MaxRevisions bounds how many revision rounds the gate may request.
	MaxRevisions int `validate:"gte=0,lte=10"`
	// QualityThreshold is the minimum average critique score a draft must
	// reach to be approved. Zero accepts every draft.
	QualityThreshold float64 `validate:"gte=0,lte=10"`
	// EnableFormatting turns on document rendering when an output path is
	// given.
	EnableFormatting bool
}

// DefaultWorkflowConfig returns the standard production configuration.
func DefaultWorkflowConfig() WorkflowConfig {
	return WorkflowConfig{
		EnableRevision:   true,
		MaxRevisions:     2,
		QualityThreshold: 7.0,
		EnableFormatting: true,
	}
}

var validate = validator.New()

// ProgressEvent is one progress update during a workflow run.
type ProgressEvent struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
}

// ProgressCallback receives progress events as the workflow advances.
type ProgressCallback func(event ProgressEvent)

// RunOptions carries everything a workflow run needs.
type RunOptions struct {
	Dimension  string
	Records    []types.SurveyRecord
	Customer   report.Customer
	Client     llm.Client
	Retriever  retrieval.Retriever
	OutputPath string
	Config     WorkflowConfig
	Logger     *zap.Logger
	OnProgress ProgressCallback
}

// RunWorkflow executes the workflow end to end. It always returns a
// populated WorkflowResult; failures are reported through Success and Error,
// never as a returned error value.
func RunWorkflow(ctx context.Context, opts RunOptions) *types.WorkflowResult {
	started := time.Now()
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	result := &types.WorkflowResult{
		RunID:        uuid.NewString(),
		StageResults: make(map[string]types.AgentResult),
	}

	if err := validate.Struct(opts.Config); err != nil {
		result.Error = fmt.Sprintf("invalid workflow configuration: %v", err)
		result.Summary.Elapsed = time.Since(started)
		return result
	}
	if opts.Dimension == "" {
		result.Error = "no assessment dimension given"
		result.Summary.Elapsed = time.Since(started)
		return result
	}

	logger = logger.With(zap.String("run_id", result.RunID), zap.String("dimension", opts.Dimension))
	progress := func(stage, message string) {
		if opts.OnProgress != nil {
			opts.OnProgress(ProgressEvent{Stage: stage, Message: message, RunID: result.RunID})
		}
	}

	progress(types.StageStatistics, "computing survey statistics")
	statsResult := statistics.NewExtractor(opts.Client, logger).Execute(ctx, opts.Dimension, opts.Records)
	result.StageResults[types.StageStatistics] = statsResult
	if !statsResult.Success {
		return finishFailed(result, started, statsResult)
	}
	stats := statsResult.Output.(*types.SurveyStats)

	progress(types.StageMaturity, "assessing maturity against frameworks")
	assessResult := maturity.NewAssessor(opts.Client, opts.Retriever, logger).Execute(ctx, opts.Dimension, stats, opts.Records)
	result.StageResults[types.StageMaturity] = assessResult
	if !assessResult.Success {
		return finishFailed(result, started, assessResult)
	}
	assessment := assessResult.Output.(*types.MaturityAssessment)

	progress(types.StageCompose, "composing assessment report")
	composeResult := report.NewComposer(opts.Client, logger).Execute(ctx, opts.Dimension, stats, assessment, opts.Records, opts.Customer)
	result.StageResults[types.StageCompose] = composeResult
	if !composeResult.Success {
		return finishFailed(result, started, composeResult)
	}
	draft := composeResult.Output.(*types.GeneratedReport)

	// Quality gate. A critique failure accepts the draft unreviewed rather
	// than discarding three completed stages.
	runQualityGate(ctx, opts, logger, progress, result, draft)
	result.FinalReport = draft
	result.Success = true

	// The report is the product; a formatting problem never changes the
	// workflow outcome.
	if opts.Config.EnableFormatting && opts.OutputPath != "" {
		progress(types.StageFormat, "rendering document")
		formatResult := document.NewFormatter(logger).Execute(ctx, draft, opts.OutputPath)
		result.StageResults[types.StageFormat] = formatResult
		if !formatResult.Success {
			logger.Warn("document formatting failed", zap.String("error", formatResult.Error))
		}
	}

	result.Summary.Elapsed = time.Since(started)
	result.Summary.StageCount = len(result.StageResults)
	return result
}

// runQualityGate scores the draft and re-scores after each requested
// revision round, up to the configured bound. Revision rounds currently
// re-critique the standing draft; regenerating the draft from the revision
// notes plugs in here once the composer accepts guidance input.
func runQualityGate(ctx context.Context, opts RunOptions, logger *zap.Logger, progress func(stage, message string), result *types.WorkflowResult, draft *types.GeneratedReport) {
	critic := critique.NewCritic(opts.Client, logger)
	maxAttempts := opts.Config.MaxRevisions + 1

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		progress(types.StageCritique, fmt.Sprintf("scoring draft quality (attempt %d)", attempt))
		critiqueResult := critic.Execute(ctx, opts.Dimension, draft, opts.Config.QualityThreshold)
		result.StageResults[critiqueStageKey(attempt)] = critiqueResult

		if !critiqueResult.Success {
			logger.Warn("quality critique unavailable, accepting draft unreviewed",
				zap.String("error", critiqueResult.Error))
			return
		}

		scores := critiqueResult.Output.(*types.CritiqueScores)
		average := scores.Average()
		result.Summary.FinalQualityScore = &average

		// With revision disabled the first critique is final and the draft
		// is taken as approved.
		if !scores.NeedsRevision || !opts.Config.EnableRevision {
			result.Summary.QualityApproved = true
			return
		}
		if attempt == maxAttempts {
			logger.Warn("revision budget exhausted, accepting draft below threshold",
				zap.Float64("average", average),
				zap.Float64("threshold", opts.Config.QualityThreshold))
			return
		}
		result.Summary.RevisionCount++
		logger.Info("revision requested",
			zap.Int("attempt", attempt),
			zap.Float64("average", average),
			zap.Strings("notes", scores.RevisionNotes))
	}
}

// critiqueStageKey keys each critique attempt separately in StageResults so
// later attempts never overwrite earlier ones.
func critiqueStageKey(attempt int) string {
	if attempt == 1 {
		return types.StageCritique
	}
	return fmt.Sprintf("%s_attempt_%d", types.StageCritique, attempt)
}

// finishFailed closes out a workflow after a fatal stage failure.
func finishFailed(result *types.WorkflowResult, started time.Time, failed types.AgentResult) *types.WorkflowResult {
	result.Success = false
	result.Error = fmt.Sprintf("%s failed: %s", failed.StageName, failed.Error)
	result.Summary.Elapsed = time.Since(started)
	result.Summary.StageCount = len(result.StageResults)
	return result
}
