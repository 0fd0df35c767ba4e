package maturity

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/dstrand/maturity-agent/internal/llm"
	"github.com/dstrand/maturity-agent/internal/prompts"
	"github.com/dstrand/maturity-agent/internal/schemas"
	"github.com/dstrand/maturity-agent/internal/types"
)

// maxPriorityGaps caps the ranked gap list.
const maxPriorityGaps = 5

// gapTuple pairs a gap with its framework and that framework's score.
type gapTuple struct {
	framework string
	gap       string
	score     float64
}

// rankedGapPayload is the model's ranking entry shape.
type rankedGapPayload struct {
	Framework string `json:"framework"`
	Gap       string `json:"gap"`
	Rationale string `json:"rationale"`
}

// rankPriorityGaps asks the model to rank all framework gaps; a parse or call
// failure falls back to the lowest-scoring gaps with synthesized labels.
func (a *Assessor) rankPriorityGaps(ctx context.Context, dimension string, levels []types.MaturityLevel) []types.PriorityGap {
	tuples := flattenGaps(levels)
	if len(tuples) == 0 {
		return nil
	}

	ranked, err := a.rankWithModel(ctx, dimension, tuples)
	if err != nil {
		a.logger.Warn("gap ranking fell back to lowest framework scores",
			zap.String("dimension", dimension),
			zap.Error(err))
		return fallbackRanking(tuples)
	}
	return ranked
}

// rankWithModel runs the ranking completion call and maps the payload back to
// the known tuples.
func (a *Assessor) rankWithModel(ctx context.Context, dimension string, tuples []gapTuple) ([]types.PriorityGap, error) {
	var listing strings.Builder
	for _, t := range tuples {
		listing.WriteString(fmt.Sprintf("- [%s, score %.1f] %s\n", t.framework, t.score, t.gap))
	}

	prompt := prompts.Format(prompts.MustGet("maturity.json", "rank-gaps"), map[string]string{
		"Dimension": dimension,
		"Gaps":      listing.String(),
	})

	callCtx, cancel := context.WithTimeout(ctx, a.callTimeout)
	defer cancel()

	resp, err := a.client.GenerateJSON(callCtx, llm.Request{
		System: prompts.MustGet("maturity.json", "rank-gaps-system"),
		Prompt: prompt,
		Tier:   llm.TierStandard,
	})
	if err != nil {
		return nil, err
	}

	block := llm.CleanJSONBlock(resp)
	if err := schemas.Validate(schemas.RankedGapsSchema, block); err != nil {
		return nil, fmt.Errorf("ranking payload failed schema: %w", err)
	}

	var payload []rankedGapPayload
	if err := json.Unmarshal([]byte(block), &payload); err != nil {
		return nil, fmt.Errorf("ranking payload is not valid JSON: %w", err)
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("ranking payload is empty")
	}

	gaps := make([]types.PriorityGap, 0, maxPriorityGaps)
	for _, entry := range payload {
		if len(gaps) >= maxPriorityGaps {
			break
		}
		tuple := matchTuple(tuples, entry)
		gaps = append(gaps, types.PriorityGap{
			Rank:      len(gaps) + 1,
			Framework: tuple.framework,
			Gap:       tuple.gap,
			Score:     tuple.score,
			Rationale: strings.TrimSpace(entry.Rationale),
		})
	}
	return gaps, nil
}

// matchTuple finds the input tuple a ranking entry refers to, falling back to
// the entry's own text when the model paraphrased beyond recognition.
func matchTuple(tuples []gapTuple, entry rankedGapPayload) gapTuple {
	want := strings.ToLower(strings.TrimSpace(entry.Gap))
	for _, t := range tuples {
		have := strings.ToLower(t.gap)
		if have == want || strings.Contains(have, want) || strings.Contains(want, have) {
			return t
		}
	}
	return gapTuple{framework: entry.Framework, gap: entry.Gap}
}

// fallbackRanking takes the gaps of the lowest-scoring frameworks first.
func fallbackRanking(tuples []gapTuple) []types.PriorityGap {
	sorted := make([]gapTuple, len(tuples))
	copy(sorted, tuples)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].score < sorted[j].score
	})

	if len(sorted) > maxPriorityGaps {
		sorted = sorted[:maxPriorityGaps]
	}

	gaps := make([]types.PriorityGap, 0, len(sorted))
	for i, t := range sorted {
		gaps = append(gaps, types.PriorityGap{
			Rank:      i + 1,
			Framework: t.framework,
			Gap:       t.gap,
			Score:     t.score,
			Rationale: fmt.Sprintf("Lowest framework maturity (%s scored %.1f/5)", t.framework, t.score),
		})
	}
	return gaps
}

// flattenGaps lists every framework gap with its framework score, skipping
// placeholder entries.
func flattenGaps(levels []types.MaturityLevel) []gapTuple {
	var tuples []gapTuple
	for _, level := range levels {
		for _, gap := range level.Gaps {
			if gap == placeholderGap {
				continue
			}
			tuples = append(tuples, gapTuple{
				framework: level.Framework,
				gap:       gap,
				score:     level.Score,
			})
		}
	}
	return tuples
}
