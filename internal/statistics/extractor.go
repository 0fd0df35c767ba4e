// Package statistics computes aggregate and per-facet survey statistics for
// one dimension, including comment theme extraction.
package statistics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/dstrand/maturity-agent/internal/llm"
	"github.com/dstrand/maturity-agent/internal/types"
)

// DefaultCallTimeout bounds the theme-extraction completion call.
const DefaultCallTimeout = 60 * time.Second

// Extractor is the statistics stage. The LLM client is optional; without one,
// theme extraction falls back to keyword frequency counting.
type Extractor struct {
	client      llm.Client
	logger      *zap.Logger
	callTimeout time.Duration
}

// NewExtractor creates a statistics extractor. client may be nil.
func NewExtractor(client llm.Client, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		client:      client,
		logger:      logger,
		callTimeout: DefaultCallTimeout,
	}
}

// Execute computes survey statistics for the dimension. It never returns a
// partially populated envelope: any internal failure yields Success=false.
func (e *Extractor) Execute(ctx context.Context, dimension string, records []types.SurveyRecord) (result types.AgentResult) {
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result = types.NewFailureResult(types.StageStatistics, fmt.Errorf("statistics extraction panicked: %v", r), started)
		}
	}()

	e.logger.Debug("computing survey statistics",
		zap.String("dimension", dimension),
		zap.Int("records", len(records)))

	stats := computeStats(dimension, records)
	stats.CommentThemes = e.extractThemes(ctx, dimension, records)

	return types.NewSuccessResult(types.StageStatistics, stats, started)
}

// computeStats builds all deterministic metrics from the records.
func computeStats(dimension string, records []types.SurveyRecord) *types.SurveyStats {
	stats := &types.SurveyStats{
		Dimension:         dimension,
		QuestionCount:     len(records),
		ByCategory:        facetStats(records, func(r *types.SurveyRecord) string { return r.Category }),
		ByProcess:         facetStats(records, func(r *types.SurveyRecord) string { return r.Process }),
		ByLifecycle:       facetStats(records, func(r *types.SurveyRecord) string { return r.Lifecycle }),
		ScoreDistribution: scoreDistribution(records),
	}

	var scores []float64
	for i := range records {
		stats.ResponseCount += records[i].ResponseCount
		if score, ok := records[i].Score(); ok {
			scores = append(scores, score)
		}
	}
	if len(scores) == 0 {
		return stats
	}

	sort.Float64s(scores)
	stats.MinScore = scores[0]
	stats.MaxScore = scores[len(scores)-1]
	stats.AverageScore = round1(mean(scores))
	stats.MedianScore = round1(median(scores))
	stats.StdDev = round1(stddev(scores))
	return stats
}

// scoreDistribution buckets question averages into fixed two-point bands.
func scoreDistribution(records []types.SurveyRecord) map[string]int {
	dist := map[string]int{
		"0-2":  0,
		"2-4":  0,
		"4-6":  0,
		"6-8":  0,
		"8-10": 0,
	}
	for i := range records {
		score, ok := records[i].Score()
		if !ok {
			continue
		}
		switch {
		case score < 2:
			dist["0-2"]++
		case score < 4:
			dist["2-4"]++
		case score < 6:
			dist["4-6"]++
		case score < 8:
			dist["6-8"]++
		default:
			dist["8-10"]++
		}
	}
	return dist
}

func mean(scores []float64) float64 {
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// stddev is the sample standard deviation; fewer than two samples yields 0.
func stddev(scores []float64) float64 {
	if len(scores) < 2 {
		return 0
	}
	m := mean(scores)
	sum := 0.0
	for _, s := range scores {
		sum += (s - m) * (s - m)
	}
	return math.Sqrt(sum / float64(len(scores)-1))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
