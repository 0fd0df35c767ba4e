// Package critique scores a drafted report against the quality bar and,
// when the draft falls short, produces targeted revision guidance.
package critique

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dstrand/maturity-agent/internal/llm"
	"github.com/dstrand/maturity-agent/internal/prompts"
	"github.com/dstrand/maturity-agent/internal/schemas"
	"github.com/dstrand/maturity-agent/internal/types"
)

const (
	// DefaultCallTimeout bounds each completion call.
	DefaultCallTimeout = 60 * time.Second

	// defaultDimensionScore is assumed when the model response never
	// mentions a scoring dimension at all.
	defaultDimensionScore = 7.0

	// summaryExcerptLength caps how much of the executive summary is
	// echoed back to the model.
	summaryExcerptLength = 600

	// revision note list bounds.
	minNoteLength = 10
	maxNotes      = 5
)

// scoreLinePattern matches loose "clarity: 7" or "Clarity - 7/10" phrasing
// when the model ignores the fenced-JSON instruction.
var scoreLinePattern = regexp.MustCompile(`(?i)(clarity|actionability|standards[ _]alignment|completeness)"?\s*[:\-]\s*(\d+(?:\.\d+)?)`)

// Critic is the quality critique stage.
type Critic struct {
	client      llm.Client
	logger      *zap.Logger
	callTimeout time.Duration
}

// NewCritic creates a report critic.
func NewCritic(client llm.Client, logger *zap.Logger) *Critic {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Critic{
		client:      client,
		logger:      logger,
		callTimeout: DefaultCallTimeout,
	}
}

// Execute scores the draft. NeedsRevision is set when the average of the
// four dimension scores falls strictly below threshold; a threshold of zero
// therefore never requests revision. A completion or parse failure is
// returned as a stage failure and left to the caller to absorb.
func (c *Critic) Execute(ctx context.Context, dimension string, draft *types.GeneratedReport, threshold float64) (result types.AgentResult) {
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result = types.NewFailureResult(types.StageCritique, fmt.Errorf("quality critique panicked: %v", r), started)
		}
	}()

	if c.client == nil {
		return types.NewFailureResult(types.StageCritique, fmt.Errorf("no completion client configured"), started)
	}
	if draft == nil {
		return types.NewFailureResult(types.StageCritique, fmt.Errorf("no draft report to critique"), started)
	}

	overview := draftOverview(draft)

	scores, err := c.scoreDraft(ctx, dimension, overview)
	if err != nil {
		return types.NewFailureResult(types.StageCritique, fmt.Errorf("critique scoring failed: %w", err), started)
	}

	average := scores.Average()
	scores.NeedsRevision = average < threshold

	c.logger.Info("draft scored",
		zap.String("dimension", dimension),
		zap.Float64("average", average),
		zap.Float64("threshold", threshold),
		zap.Bool("needs_revision", scores.NeedsRevision))

	if scores.NeedsRevision {
		notes, err := c.revisionNotes(ctx, dimension, overview, scores, threshold)
		if err != nil {
			c.logger.Warn("revision note generation failed, proceeding without notes",
				zap.String("dimension", dimension),
				zap.Error(err))
		} else {
			scores.RevisionNotes = notes
		}
	}

	return types.NewSuccessResult(types.StageCritique, scores, started)
}

// scoreDraft runs the scoring call and parses the four dimension scores.
func (c *Critic) scoreDraft(ctx context.Context, dimension, overview string) (*types.CritiqueScores, error) {
	prompt := prompts.Format(prompts.MustGet("critique.json", "score-report"), map[string]string{
		"Dimension":    dimension,
		"DraftSummary": overview,
	})

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	resp, err := c.client.GenerateJSON(callCtx, llm.Request{
		System: prompts.MustGet("critique.json", "score-report-system"),
		Prompt: prompt,
		Tier:   llm.TierStandard,
	})
	if err != nil {
		return nil, err
	}

	scores, err := parseScores(resp)
	if err != nil {
		return nil, err
	}
	return scores, nil
}

// parseScores extracts the dimension scores from the model response. The
// fenced JSON form is authoritative; a loose line scan covers responses that
// wrap the scores in prose. Dimensions the response never mentions score 7.
func parseScores(text string) (*types.CritiqueScores, error) {
	block := llm.CleanJSONBlock(text)
	if err := schemas.Validate(schemas.CritiqueSchema, block); err == nil {
		var scores types.CritiqueScores
		if err := json.Unmarshal([]byte(block), &scores); err == nil {
			clampScores(&scores)
			return &scores, nil
		}
	}

	matches := scoreLinePattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("response carries no recognizable scores")
	}

	scores := &types.CritiqueScores{
		Clarity:            defaultDimensionScore,
		Actionability:      defaultDimensionScore,
		StandardsAlignment: defaultDimensionScore,
		Completeness:       defaultDimensionScore,
	}
	for _, m := range matches {
		value, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		switch strings.ReplaceAll(strings.ToLower(m[1]), " ", "_") {
		case "clarity":
			scores.Clarity = value
		case "actionability":
			scores.Actionability = value
		case "standards_alignment":
			scores.StandardsAlignment = value
		case "completeness":
			scores.Completeness = value
		}
	}
	clampScores(scores)
	return scores, nil
}

func clampScores(scores *types.CritiqueScores) {
	scores.Clarity = clamp(scores.Clarity)
	scores.Actionability = clamp(scores.Actionability)
	scores.StandardsAlignment = clamp(scores.StandardsAlignment)
	scores.Completeness = clamp(scores.Completeness)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}

// revisionNotes asks the model for concrete revision guidance on a draft
// that scored below the bar.
func (c *Critic) revisionNotes(ctx context.Context, dimension, overview string, scores *types.CritiqueScores, threshold float64) ([]string, error) {
	prompt := prompts.Format(prompts.MustGet("critique.json", "revision-notes"), map[string]string{
		"Dimension":    dimension,
		"Average":      fmt.Sprintf("%.1f", scores.Average()),
		"Threshold":    fmt.Sprintf("%.1f", threshold),
		"WeakAreas":    strings.Join(weakAreas(scores), ", "),
		"DraftSummary": overview,
	})

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	resp, err := c.client.GenerateContent(callCtx, llm.Request{
		System: prompts.MustGet("critique.json", "revision-notes-system"),
		Prompt: prompt,
		Tier:   llm.TierStandard,
	})
	if err != nil {
		return nil, err
	}

	notes := llm.ParseListLines(resp, minNoteLength, maxNotes)
	if len(notes) == 0 {
		return nil, fmt.Errorf("response carries no usable notes")
	}
	return notes, nil
}

// weakAreas names the dimensions scoring below the overall average, worst
// first. When all four are level it names them all.
func weakAreas(scores *types.CritiqueScores) []string {
	average := scores.Average()
	named := []struct {
		label string
		value float64
	}{
		{"clarity", scores.Clarity},
		{"actionability", scores.Actionability},
		{"standards alignment", scores.StandardsAlignment},
		{"completeness", scores.Completeness},
	}

	var weak []string
	for _, d := range named {
		if d.value < average {
			weak = append(weak, fmt.Sprintf("%s (%.1f)", d.label, d.value))
		}
	}
	if len(weak) == 0 {
		for _, d := range named {
			weak = append(weak, d.label)
		}
	}
	return weak
}

// draftOverview condenses the draft into a model-sized description: the
// summary excerpt plus structural counts. The full section tree never goes
// back to the model.
func draftOverview(draft *types.GeneratedReport) string {
	var sb strings.Builder

	excerpt := draft.ExecutiveSummary
	if len(excerpt) > summaryExcerptLength {
		excerpt = excerpt[:summaryExcerptLength] + "…"
	}
	sb.WriteString("Executive summary:\n")
	sb.WriteString(excerpt)
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Structure: %d top-level sections", len(draft.Sections)))
	for _, section := range draft.Sections {
		sb.WriteString(fmt.Sprintf("\n- %s (%d subsections)", section.Title, len(section.Subsections)))
	}

	sb.WriteString(fmt.Sprintf("\n\nAction items: %d\n", len(draft.ActionItems)))
	for _, item := range draft.ActionItems {
		sb.WriteString(fmt.Sprintf("- [%s] %s (%s)\n", item.Priority, item.Action, item.Timeline))
	}

	sb.WriteString("\nRoadmap:")
	for _, phase := range types.RoadmapPhases() {
		sb.WriteString(fmt.Sprintf("\n- %s: %d items", types.PhaseTitle(phase), len(draft.Roadmap[phase])))
	}

	if draft.Metadata.CustomerName != "" {
		sb.WriteString("\n\nPrepared for: " + draft.Metadata.CustomerName)
	}

	return sb.String()
}
