package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dstrand/maturity-agent/internal/llm"
	"github.com/dstrand/maturity-agent/internal/prompts"
	"github.com/dstrand/maturity-agent/internal/schemas"
	"github.com/dstrand/maturity-agent/internal/types"
)

// maxActionItems caps the recommended action list.
const maxActionItems = 5

// fallbackTimelines assigns quarters to synthesized actions by gap rank.
var fallbackTimelines = []string{"Q1", "Q2", "Q3", "Q4", "Q4"}

// actionItems derives recommended actions from the priority gaps. A call or
// parse failure synthesizes one templated item per gap instead.
func (c *Composer) actionItems(ctx context.Context, dimension string, gaps []types.PriorityGap) []types.ActionItem {
	if len(gaps) == 0 {
		return nil
	}

	items, err := c.actionItemsFromModel(ctx, dimension, gaps)
	if err != nil {
		c.logger.Warn("action items fell back to templated synthesis",
			zap.String("dimension", dimension),
			zap.Error(err))
		return synthesizeActionItems(gaps)
	}
	return items
}

// actionItemsFromModel runs the action completion call and validates the
// payload before accepting it.
func (c *Composer) actionItemsFromModel(ctx context.Context, dimension string, gaps []types.PriorityGap) ([]types.ActionItem, error) {
	var listing strings.Builder
	for _, gap := range gaps {
		listing.WriteString(fmt.Sprintf("%d. [%s] %s\n", gap.Rank, gap.Framework, gap.Gap))
	}

	prompt := prompts.Format(prompts.MustGet("report.json", "action-items"), map[string]string{
		"Dimension":    dimension,
		"PriorityGaps": listing.String(),
	})

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	resp, err := c.client.GenerateJSON(callCtx, llm.Request{
		System: prompts.MustGet("report.json", "action-items-system"),
		Prompt: prompt,
		Tier:   llm.TierStandard,
	})
	if err != nil {
		return nil, err
	}

	block := llm.CleanJSONBlock(resp)
	if err := schemas.Validate(schemas.ActionItemsSchema, block); err != nil {
		return nil, fmt.Errorf("action payload failed schema: %w", err)
	}

	var items []types.ActionItem
	if err := json.Unmarshal([]byte(block), &items); err != nil {
		return nil, fmt.Errorf("action payload is not valid JSON: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("action payload is empty")
	}
	if len(items) > maxActionItems {
		items = items[:maxActionItems]
	}
	return items, nil
}

// synthesizeActionItems builds one templated action per gap, highest ranked
// gaps first.
func synthesizeActionItems(gaps []types.PriorityGap) []types.ActionItem {
	items := make([]types.ActionItem, 0, maxActionItems)
	for i, gap := range gaps {
		if i >= maxActionItems {
			break
		}
		priority := "Low"
		switch {
		case i < 2:
			priority = "High"
		case i < 4:
			priority = "Medium"
		}
		items = append(items, types.ActionItem{
			Action:          fmt.Sprintf("Remediate: %s", gap.Gap),
			Priority:        priority,
			Owner:           "Data Governance Lead",
			Timeline:        fallbackTimelines[i],
			ExpectedOutcome: fmt.Sprintf("Gap closed and verified in the next %s assessment cycle", gap.Framework),
			Framework:       gap.Framework,
		})
	}
	return items
}

// buildRoadmap partitions action items into phases by their timeline text.
// Q1/Q2 work lands in phase 1, Q3/Q4 in phase 2, anything else in phase 3.
// The partition is a pure string operation; identical inputs always produce
// identical phases.
func buildRoadmap(items []types.ActionItem) map[string][]string {
	roadmap := map[string][]string{
		types.PhaseFoundation:    {},
		types.PhaseExpansion:     {},
		types.PhaseInstitutional: {},
	}

	for _, item := range items {
		switch {
		case strings.Contains(item.Timeline, "Q1"), strings.Contains(item.Timeline, "Q2"):
			roadmap[types.PhaseFoundation] = append(roadmap[types.PhaseFoundation], item.Action)
		case strings.Contains(item.Timeline, "Q3"), strings.Contains(item.Timeline, "Q4"):
			roadmap[types.PhaseExpansion] = append(roadmap[types.PhaseExpansion], item.Action)
		default:
			roadmap[types.PhaseInstitutional] = append(roadmap[types.PhaseInstitutional], item.Action)
		}
	}

	if len(roadmap[types.PhaseInstitutional]) == 0 {
		roadmap[types.PhaseInstitutional] = append(roadmap[types.PhaseInstitutional],
			"Institutionalize governance practices and schedule periodic reassessment")
	}
	return roadmap
}
