package statistics

import (
	"github.com/dstrand/maturity-agent/internal/types"
)

// Score band boundaries for facet distributions.
const (
	highScoreFloor   = 8.0
	mediumScoreFloor = 5.0
)

// unknownFacet groups records that carry no value for a facet axis.
const unknownFacet = "Unknown"

// facetStats groups records by a facet axis and computes per-group metrics.
// Records without a value land in the "Unknown" group so response counts
// always total the input.
func facetStats(records []types.SurveyRecord, key func(*types.SurveyRecord) string) map[string]types.FacetStats {
	groups := make(map[string][]*types.SurveyRecord)
	for i := range records {
		k := key(&records[i])
		if k == "" {
			k = unknownFacet
		}
		groups[k] = append(groups[k], &records[i])
	}

	out := make(map[string]types.FacetStats, len(groups))
	for name, group := range groups {
		out[name] = buildFacet(group)
	}
	return out
}

// buildFacet computes one group's averages and high/medium/low distribution.
// Percentages are relative to the group's scored questions and rounded to one
// decimal, so high+medium+low sums to 100 within rounding.
func buildFacet(group []*types.SurveyRecord) types.FacetStats {
	var fs types.FacetStats
	var sum float64
	var scored int

	for _, r := range group {
		fs.ResponseCount += r.ResponseCount
		score, ok := r.Score()
		if !ok {
			continue
		}
		scored++
		sum += score
		switch {
		case score >= highScoreFloor:
			fs.HighCount++
		case score >= mediumScoreFloor:
			fs.MediumCount++
		default:
			fs.LowCount++
		}
	}

	if scored == 0 {
		return fs
	}

	fs.Average = round1(sum / float64(scored))
	total := float64(scored)
	fs.HighPct = round1(float64(fs.HighCount) / total * 100)
	fs.MediumPct = round1(float64(fs.MediumCount) / total * 100)
	fs.LowPct = round1(float64(fs.LowCount) / total * 100)
	return fs
}
