// Package types defines the value types exchanged between workflow stages.
package types

import (
	"time"
)

// Stage name constants used as keys in WorkflowResult.StageResults.
const (
	StageStatistics = "statistics"
	StageMaturity   = "maturity_assessment"
	StageCompose    = "report_composition"
	StageCritique   = "quality_critique"
	StageFormat     = "document_formatting"
)

// AgentResult is the uniform envelope returned by every stage.
// A failed result carries no output; a successful result carries no error.
type AgentResult struct {
	Success   bool          `json:"success"`
	StageName string        `json:"stage_name"`
	Output    any           `json:"output,omitempty"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewSuccessResult builds a successful AgentResult for a stage.
func NewSuccessResult(stage string, output any, started time.Time) AgentResult {
	return AgentResult{
		Success:   true,
		StageName: stage,
		Output:    output,
		Duration:  time.Since(started),
		Timestamp: time.Now().UTC(),
	}
}

// NewFailureResult builds a failed AgentResult for a stage.
func NewFailureResult(stage string, err error, started time.Time) AgentResult {
	msg := "unknown failure"
	if err != nil {
		msg = err.Error()
	}
	return AgentResult{
		Success:   false,
		StageName: stage,
		Error:     msg,
		Duration:  time.Since(started),
		Timestamp: time.Now().UTC(),
	}
}

// ExecutionSummary aggregates timing and quality outcomes for one workflow run.
type ExecutionSummary struct {
	Elapsed           time.Duration `json:"elapsed"`
	StageCount        int           `json:"stage_count"`
	RevisionCount     int           `json:"revision_count"`
	FinalQualityScore *float64      `json:"final_quality_score,omitempty"`
	QualityApproved   bool          `json:"quality_approved"`
}

// WorkflowResult is the structured result returned to every caller of the
// workflow. It is always populated; callers branch on Success rather than
// handling a returned error.
type WorkflowResult struct {
	Success      bool                   `json:"success"`
	RunID        string                 `json:"run_id"`
	StageResults map[string]AgentResult `json:"stage_results"`
	FinalReport  *GeneratedReport       `json:"final_report,omitempty"`
	Summary      ExecutionSummary       `json:"execution_summary"`
	Error        string                 `json:"error,omitempty"`
}
