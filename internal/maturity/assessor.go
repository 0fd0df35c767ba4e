package maturity

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dstrand/maturity-agent/internal/llm"
	"github.com/dstrand/maturity-agent/internal/prompts"
	"github.com/dstrand/maturity-agent/internal/retrieval"
	"github.com/dstrand/maturity-agent/internal/types"
)

const (
	// DefaultCallTimeout bounds each completion and retrieval call.
	DefaultCallTimeout = 90 * time.Second
	// DefaultConcurrency bounds parallel per-framework assessment calls.
	DefaultConcurrency = 2
	// retrievalTopK caps knowledge-base chunks per query.
	retrievalTopK = 5
	// maxEvidenceIDs caps the question ids attached as evidence.
	maxEvidenceIDs = 5
	// maxSampleQuestions caps the questions quoted in the prompt.
	maxSampleQuestions = 10
	// defaultCompositeScore is reported when no framework was evaluated.
	defaultCompositeScore = 2.0
)

// Assessor is the maturity stage. It requires a completion client; the
// retriever is optional and its absence degrades to an empty context.
type Assessor struct {
	client      llm.Client
	retriever   retrieval.Retriever
	logger      *zap.Logger
	callTimeout time.Duration
	concurrency int
}

// NewAssessor creates a maturity assessor. retriever may be nil.
func NewAssessor(client llm.Client, retriever retrieval.Retriever, logger *zap.Logger) *Assessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assessor{
		client:      client,
		retriever:   retriever,
		logger:      logger,
		callTimeout: DefaultCallTimeout,
		concurrency: DefaultConcurrency,
	}
}

// Execute assesses the dimension against its applicable frameworks.
func (a *Assessor) Execute(ctx context.Context, dimension string, stats *types.SurveyStats, records []types.SurveyRecord) (result types.AgentResult) {
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result = types.NewFailureResult(types.StageMaturity, fmt.Errorf("maturity assessment panicked: %v", r), started)
		}
	}()

	if a.client == nil {
		return types.NewFailureResult(types.StageMaturity, fmt.Errorf("no completion client configured"), started)
	}
	if stats == nil {
		return types.NewFailureResult(types.StageMaturity, fmt.Errorf("survey statistics are required"), started)
	}

	frameworks := FrameworksFor(dimension)
	summary := statsSummary(stats)
	retrieved := a.retrieveContext(ctx, dimension, summary)
	evidence := evidenceQuestionIDs(records)

	levels, err := a.assessFrameworks(ctx, dimension, frameworks, stats, records, retrieved, evidence)
	if err != nil {
		return types.NewFailureResult(types.StageMaturity, err, started)
	}

	assessment := &types.MaturityAssessment{
		Dimension:        dimension,
		CompositeScore:   compositeScore(levels),
		MaturityLevels:   levels,
		PriorityGaps:     a.rankPriorityGaps(ctx, dimension, levels),
		RetrievedContext: retrieved,
	}

	return types.NewSuccessResult(types.StageMaturity, assessment, started)
}

// retrieveContext queries the knowledge base once. Absence or failure of the
// retriever degrades to an empty context rather than failing the stage.
func (a *Assessor) retrieveContext(ctx context.Context, dimension, summary string) string {
	if a.retriever == nil {
		return ""
	}

	callCtx, cancel := context.WithTimeout(ctx, a.callTimeout)
	defer cancel()

	blob, err := a.retriever.Retrieve(callCtx, dimension, summary, retrievalTopK)
	if err != nil {
		a.logger.Warn("knowledge base retrieval failed, assessing without context",
			zap.String("dimension", dimension),
			zap.Error(err))
		return ""
	}
	return blob
}

// assessFrameworks scores the dimension against each framework. Calls are
// independent and run under a bounded group; each writes only its own slot,
// so output order matches the framework catalog order.
func (a *Assessor) assessFrameworks(ctx context.Context, dimension string, frameworks []string, stats *types.SurveyStats, records []types.SurveyRecord, retrieved string, evidence []string) ([]types.MaturityLevel, error) {
	levels := make([]types.MaturityLevel, len(frameworks))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i, framework := range frameworks {
		g.Go(func() error {
			level, err := a.assessOne(gCtx, dimension, framework, stats, records, retrieved, evidence)
			if err != nil {
				return fmt.Errorf("framework %s assessment failed: %w", framework, err)
			}
			levels[i] = level
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return levels, nil
}

// assessOne runs one framework's completion call and parses the response.
func (a *Assessor) assessOne(ctx context.Context, dimension, framework string, stats *types.SurveyStats, records []types.SurveyRecord, retrieved string, evidence []string) (types.MaturityLevel, error) {
	prompt := prompts.Format(prompts.MustGet("maturity.json", "assess-framework"), map[string]string{
		"Dimension":       dimension,
		"Framework":       framework,
		"StatsSummary":    statsSummary(stats),
		"SampleQuestions": sampleQuestions(records),
		"Context":         retrieved,
	})

	callCtx, cancel := context.WithTimeout(ctx, a.callTimeout)
	defer cancel()

	resp, err := a.client.GenerateContent(callCtx, llm.Request{
		System: prompts.MustGet("maturity.json", "assess-framework-system"),
		Prompt: prompt,
		Tier:   llm.TierAdvanced,
	})
	if err != nil {
		return types.MaturityLevel{}, err
	}

	level, parseErr := parseMaturityLevel(framework, resp)
	if parseErr != nil {
		a.logger.Warn("structured maturity block missing, used text-scan fallback",
			zap.String("framework", framework),
			zap.Error(parseErr))
	}
	level.EvidenceQuestionIDs = evidence
	return level, nil
}

// compositeScore is the mean framework score rounded to two decimals.
func compositeScore(levels []types.MaturityLevel) float64 {
	if len(levels) == 0 {
		return defaultCompositeScore
	}
	sum := 0.0
	for _, l := range levels {
		sum += l.Score
	}
	return math.Round(sum/float64(len(levels))*100) / 100
}

// evidenceQuestionIDs returns the first question ids in input order.
// Relevance-based selection is intentionally not attempted here.
func evidenceQuestionIDs(records []types.SurveyRecord) []string {
	ids := make([]string, 0, maxEvidenceIDs)
	for i := range records {
		if records[i].QuestionID == "" {
			continue
		}
		ids = append(ids, records[i].QuestionID)
		if len(ids) >= maxEvidenceIDs {
			break
		}
	}
	return ids
}

// statsSummary synthesizes the short summary used for retrieval and prompts.
func statsSummary(stats *types.SurveyStats) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Average %.1f/10 (median %.1f, range %.1f–%.1f, stddev %.1f) over %d questions and %d responses.",
		stats.AverageScore, stats.MedianScore, stats.MinScore, stats.MaxScore, stats.StdDev,
		stats.QuestionCount, stats.ResponseCount))
	if len(stats.CommentThemes) > 0 {
		sb.WriteString(" Recurring themes: ")
		sb.WriteString(strings.Join(stats.CommentThemes, "; "))
		sb.WriteString(".")
	}
	return sb.String()
}

// sampleQuestions lists a prompt-sized sample of questions with scores.
func sampleQuestions(records []types.SurveyRecord) string {
	if len(records) == 0 {
		return "(no questions available)"
	}
	var sb strings.Builder
	for i := range records {
		if i >= maxSampleQuestions {
			break
		}
		r := &records[i]
		text := r.QuestionText
		if text == "" {
			text = r.QuestionID
		}
		if score, ok := r.Score(); ok {
			sb.WriteString(fmt.Sprintf("- %s: %.1f/10 (%d responses)\n", text, score, r.ResponseCount))
		} else {
			sb.WriteString(fmt.Sprintf("- %s: no score (%d responses)\n", text, r.ResponseCount))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
