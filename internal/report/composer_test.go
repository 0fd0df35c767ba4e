package report

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dstrand/maturity-agent/internal/llm"
	"github.com/dstrand/maturity-agent/internal/types"
)

// routingClient answers summary and action prompts separately.
type routingClient struct {
	summaryResponse string
	summaryErr      error
	actionResponse  string
	actionErr       error
}

func (c *routingClient) GenerateContent(_ context.Context, req llm.Request) (string, error) {
	return c.summaryResponse, c.summaryErr
}

func (c *routingClient) GenerateJSON(_ context.Context, req llm.Request) (string, error) {
	return c.actionResponse, c.actionErr
}

func (c *routingClient) GetModel(llm.ModelTier) string { return "stub" }
func (c *routingClient) Close() error                  { return nil }

func testStats() *types.SurveyStats {
	return &types.SurveyStats{
		Dimension:     "Data Quality",
		AverageScore:  6.4,
		MedianScore:   6.5,
		MinScore:      3.0,
		MaxScore:      9.0,
		StdDev:        1.2,
		QuestionCount: 3,
		ResponseCount: 30,
		ByCategory: map[string]types.FacetStats{
			"Policy":  {Average: 7.0, ResponseCount: 20, HighPct: 50, MediumPct: 50},
			"Tooling": {Average: 5.5, ResponseCount: 10, MediumPct: 100},
		},
		ByProcess:         map[string]types.FacetStats{"Define": {Average: 6.4, ResponseCount: 30}},
		ByLifecycle:       map[string]types.FacetStats{"Create": {Average: 6.4, ResponseCount: 30}},
		CommentThemes:     []string{"unclear ownership"},
		ScoreDistribution: map[string]int{"4-6": 1, "6-8": 2},
	}
}

func testAssessment() *types.MaturityAssessment {
	return &types.MaturityAssessment{
		Dimension:      "Data Quality",
		CompositeScore: 2.75,
		MaturityLevels: []types.MaturityLevel{
			{Framework: "DAMA-DMBOK", CurrentLevel: "Managed", Score: 2.5, Gaps: []string{"No stewardship roles"}, EvidenceQuestionIDs: []string{"q1", "q2"}},
			{Framework: "ISO 8000", CurrentLevel: "Defined", Score: 3.0, BestPractices: []string{"Profiling in place"}},
		},
		PriorityGaps: []types.PriorityGap{
			{Rank: 1, Framework: "DAMA-DMBOK", Gap: "No stewardship roles", Score: 2.5, Rationale: "Blocks accountability"},
		},
	}
}

func testRecords() []types.SurveyRecord {
	avg1, avg2 := 7.0, 5.5
	return []types.SurveyRecord{
		{QuestionID: "q1", QuestionText: "Is data ownership defined?", AverageScore: &avg1, ResponseCount: 10, Category: "Policy"},
		{QuestionID: "q2", QuestionText: "Is quality monitored?", AverageScore: &avg2, ResponseCount: 10, Category: "Tooling"},
		{QuestionID: "q3", ResponseCount: 10},
	}
}

const goodActionResponse = `[{"action": "Appoint data stewards", "priority": "High", "owner": "CDO", "timeline": "Q1", "expected_outcome": "Named stewards per domain", "framework": "DAMA-DMBOK"}]`

func TestExecute_Success(t *testing.T) {
	client := &routingClient{
		summaryResponse: "The organization is at a managed maturity level overall.",
		actionResponse:  goodActionResponse,
	}
	composer := NewComposer(client, nil)

	result := composer.Execute(context.Background(), "Data Quality", testStats(), testAssessment(), testRecords(), Customer{Name: "Acme", Code: "ACM"})

	require.True(t, result.Success, result.Error)
	report := result.Output.(*types.GeneratedReport)

	assert.Equal(t, "Data Quality", report.Dimension)
	assert.Equal(t, "The organization is at a managed maturity level overall.", report.ExecutiveSummary)
	assert.Equal(t, "Acme", report.Metadata.CustomerName)
	assert.Equal(t, 2.75, report.Metadata.CompositeScore)

	require.Len(t, report.ActionItems, 1)
	assert.Equal(t, "Appoint data stewards", report.ActionItems[0].Action)
	assert.Equal(t, []string{"Appoint data stewards"}, report.Roadmap[types.PhaseFoundation])
}

func TestExecute_SummaryFailureIsFatal(t *testing.T) {
	client := &routingClient{summaryErr: errors.New("timeout")}
	composer := NewComposer(client, nil)

	result := composer.Execute(context.Background(), "Data Quality", testStats(), testAssessment(), testRecords(), Customer{})

	assert.False(t, result.Success)
	assert.Nil(t, result.Output)
	assert.Contains(t, result.Error, "executive summary")
}

func TestExecute_EmptySummaryIsFatal(t *testing.T) {
	client := &routingClient{summaryResponse: "   "}
	composer := NewComposer(client, nil)

	result := composer.Execute(context.Background(), "Data Quality", testStats(), testAssessment(), testRecords(), Customer{})

	assert.False(t, result.Success)
}

func TestExecute_NoClientIsFatal(t *testing.T) {
	composer := NewComposer(nil, nil)
	result := composer.Execute(context.Background(), "Data Quality", testStats(), testAssessment(), testRecords(), Customer{})
	assert.False(t, result.Success)
}

func TestExecute_ActionFallbackOnBadPayload(t *testing.T) {
	client := &routingClient{
		summaryResponse: "Summary prose.",
		actionResponse:  "no json here",
	}
	composer := NewComposer(client, nil)

	result := composer.Execute(context.Background(), "Data Quality", testStats(), testAssessment(), testRecords(), Customer{})

	require.True(t, result.Success)
	report := result.Output.(*types.GeneratedReport)
	require.Len(t, report.ActionItems, 1)
	assert.Equal(t, "Remediate: No stewardship roles", report.ActionItems[0].Action)
	assert.Equal(t, "High", report.ActionItems[0].Priority)
	assert.Equal(t, "Q1", report.ActionItems[0].Timeline)
}

func TestBuildSections_Structure(t *testing.T) {
	sections := buildSections(testStats(), testAssessment(), testRecords())

	require.Len(t, sections, 4)
	assert.Equal(t, "current-state", sections[0].ID)
	assert.Equal(t, "facet-analysis", sections[1].ID)
	require.Len(t, sections[1].Subsections, 3)
	assert.Equal(t, "maturity-assessment", sections[2].ID)
	assert.Equal(t, "question-detail", sections[3].ID)

	// Framework subsections plus the priority gap table.
	require.Len(t, sections[2].Subsections, 3)
	assert.Equal(t, "framework-dama-dmbok", sections[2].Subsections[0].ID)
	assert.Contains(t, sections[2].Subsections[0].Content, "Managed (2.5/5)")
	assert.Contains(t, sections[2].Subsections[2].Content, "No stewardship roles")
}

func TestBuildSections_FacetTableSortedAndComplete(t *testing.T) {
	sections := buildSections(testStats(), testAssessment(), testRecords())
	categoryTable := sections[1].Subsections[0].Content

	policyIdx := strings.Index(categoryTable, "| Policy |")
	toolingIdx := strings.Index(categoryTable, "| Tooling |")
	require.GreaterOrEqual(t, policyIdx, 0)
	require.Greater(t, toolingIdx, policyIdx, "rows are sorted by group name")
}

func TestQuestionSection_MissingScoreRendered(t *testing.T) {
	section := questionSection(testRecords())
	assert.Contains(t, section.Content, "| q3 | — | 10 | Unknown |")
}

func TestQuestionSection_Empty(t *testing.T) {
	section := questionSection(nil)
	assert.Contains(t, section.Content, "No survey questions")
}

func TestBuildRoadmap_Partition(t *testing.T) {
	items := []types.ActionItem{
		{Action: "a1", Timeline: "Q1"},
		{Action: "a2", Timeline: "Q2 2026"},
		{Action: "a3", Timeline: "Q3"},
		{Action: "a4", Timeline: "Q4"},
		{Action: "a5", Timeline: "ongoing"},
	}

	roadmap := buildRoadmap(items)

	assert.Equal(t, []string{"a1", "a2"}, roadmap[types.PhaseFoundation])
	assert.Equal(t, []string{"a3", "a4"}, roadmap[types.PhaseExpansion])
	assert.Equal(t, []string{"a5"}, roadmap[types.PhaseInstitutional])
}

func TestBuildRoadmap_Deterministic(t *testing.T) {
	items := []types.ActionItem{
		{Action: "a1", Timeline: "Q1"},
		{Action: "a2", Timeline: "later"},
	}
	first := buildRoadmap(items)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, buildRoadmap(items))
	}
}

func TestBuildRoadmap_EmptyPhaseThreeGetsPlaceholder(t *testing.T) {
	roadmap := buildRoadmap([]types.ActionItem{{Action: "a1", Timeline: "Q1"}})
	require.Len(t, roadmap[types.PhaseInstitutional], 1)
	assert.Contains(t, roadmap[types.PhaseInstitutional][0], "Institutionalize")
}

func TestBuildVisuals(t *testing.T) {
	visuals := buildVisuals(testStats(), testAssessment())

	assert.Equal(t, 7.0, visuals.CategoryScores["Policy"])
	assert.Equal(t, 2.5, visuals.FrameworkScores["DAMA-DMBOK"])
	assert.Equal(t, 2, visuals.ScoreDistribution["6-8"])
	assert.Equal(t, []string{"unclear ownership"}, visuals.CommentThemes)
}

func TestSynthesizeActionItems_PriorityLadder(t *testing.T) {
	gaps := make([]types.PriorityGap, 6)
	for i := range gaps {
		gaps[i] = types.PriorityGap{Rank: i + 1, Framework: "F", Gap: "g"}
	}

	items := synthesizeActionItems(gaps)

	require.Len(t, items, 5)
	assert.Equal(t, "High", items[0].Priority)
	assert.Equal(t, "High", items[1].Priority)
	assert.Equal(t, "Medium", items[2].Priority)
	assert.Equal(t, "Medium", items[3].Priority)
	assert.Equal(t, "Low", items[4].Priority)
}
