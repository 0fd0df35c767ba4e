package statistics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dstrand/maturity-agent/internal/llm"
	"github.com/dstrand/maturity-agent/internal/types"
)

// stubClient implements llm.Client for tests.
type stubClient struct {
	response string
	err      error
	calls    int
}

func (s *stubClient) GenerateContent(_ context.Context, _ llm.Request) (string, error) {
	s.calls++
	return s.response, s.err
}

func (s *stubClient) GenerateJSON(_ context.Context, _ llm.Request) (string, error) {
	s.calls++
	return s.response, s.err
}

func (s *stubClient) GetModel(llm.ModelTier) string { return "stub" }
func (s *stubClient) Close() error                  { return nil }

func score(v float64) *float64 { return &v }

func sampleRecords() []types.SurveyRecord {
	return []types.SurveyRecord{
		{QuestionID: "q1", AverageScore: score(9.0), ResponseCount: 10, Category: "Policy", Process: "Define", Lifecycle: "Create", Comments: []string{"Ownership of critical datasets is unclear"}},
		{QuestionID: "q2", AverageScore: score(6.5), ResponseCount: 12, Category: "Policy", Process: "Define", Lifecycle: "Store"},
		{QuestionID: "q3", AverageScore: score(4.0), ResponseCount: 8, Category: "Tooling", Process: "Monitor", Lifecycle: "Use", Comments: []string{"Catalog tooling is outdated and slow"}},
		{QuestionID: "q4", AverageScore: score(8.2), ResponseCount: 11, Category: "Tooling", Process: "Monitor", Lifecycle: "Use"},
		{QuestionID: "q5", AverageScore: nil, ResponseCount: 5, Comments: []string{"No opinion on this"}},
	}
}

func TestExecute_ComputesOverallMetrics(t *testing.T) {
	extractor := NewExtractor(nil, nil)

	result := extractor.Execute(context.Background(), "Data Quality", sampleRecords())

	require.True(t, result.Success)
	require.Equal(t, types.StageStatistics, result.StageName)
	stats, ok := result.Output.(*types.SurveyStats)
	require.True(t, ok)

	assert.Equal(t, "Data Quality", stats.Dimension)
	assert.Equal(t, 5, stats.QuestionCount)
	assert.Equal(t, 46, stats.ResponseCount)
	// Non-nil averages: 9.0, 6.5, 4.0, 8.2
	assert.InDelta(t, 6.9, stats.AverageScore, 0.05)
	assert.InDelta(t, 7.35, stats.MedianScore, 0.051)
	assert.Equal(t, 4.0, stats.MinScore)
	assert.Equal(t, 9.0, stats.MaxScore)
	assert.Greater(t, stats.StdDev, 0.0)
}

func TestExecute_FacetGrouping(t *testing.T) {
	extractor := NewExtractor(nil, nil)

	result := extractor.Execute(context.Background(), "Data Quality", sampleRecords())
	require.True(t, result.Success)
	stats := result.Output.(*types.SurveyStats)

	require.Contains(t, stats.ByCategory, "Policy")
	require.Contains(t, stats.ByCategory, "Tooling")
	require.Contains(t, stats.ByCategory, "Unknown", "records without a category group under Unknown")

	policy := stats.ByCategory["Policy"]
	assert.Equal(t, 22, policy.ResponseCount)
	assert.Equal(t, 1, policy.HighCount)
	assert.Equal(t, 1, policy.MediumCount)
	assert.Equal(t, 0, policy.LowCount)
	assert.InDelta(t, 7.8, policy.Average, 0.05)
}

func TestExecute_FacetResponseCountsSumToInput(t *testing.T) {
	extractor := NewExtractor(nil, nil)
	records := sampleRecords()

	result := extractor.Execute(context.Background(), "Data Quality", records)
	require.True(t, result.Success)
	stats := result.Output.(*types.SurveyStats)

	wantTotal := 0
	for _, r := range records {
		wantTotal += r.ResponseCount
	}

	for _, facets := range []map[string]types.FacetStats{stats.ByCategory, stats.ByProcess, stats.ByLifecycle} {
		got := 0
		for _, fs := range facets {
			got += fs.ResponseCount
		}
		assert.Equal(t, wantTotal, got)
	}
}

func TestExecute_FacetPercentagesSumTo100(t *testing.T) {
	extractor := NewExtractor(nil, nil)

	result := extractor.Execute(context.Background(), "Data Quality", sampleRecords())
	require.True(t, result.Success)
	stats := result.Output.(*types.SurveyStats)

	for name, fs := range stats.ByCategory {
		if fs.HighCount+fs.MediumCount+fs.LowCount == 0 {
			continue
		}
		sum := fs.HighPct + fs.MediumPct + fs.LowPct
		assert.InDelta(t, 100.0, sum, 0.2, "facet %s", name)
	}
}

func TestExecute_EmptyRecords(t *testing.T) {
	extractor := NewExtractor(nil, nil)

	result := extractor.Execute(context.Background(), "Data Quality", nil)

	require.True(t, result.Success)
	stats := result.Output.(*types.SurveyStats)
	assert.Zero(t, stats.AverageScore)
	assert.Zero(t, stats.ResponseCount)
	assert.Empty(t, stats.ByCategory)
	assert.Empty(t, stats.CommentThemes)
}

func TestExecute_SingleScoreHasZeroStdDev(t *testing.T) {
	extractor := NewExtractor(nil, nil)
	records := []types.SurveyRecord{
		{QuestionID: "q1", AverageScore: score(7.0), ResponseCount: 3},
	}

	result := extractor.Execute(context.Background(), "Data Security", records)
	require.True(t, result.Success)
	stats := result.Output.(*types.SurveyStats)
	assert.Zero(t, stats.StdDev)
	assert.Equal(t, 7.0, stats.MedianScore)
}

func TestExecute_ThemesFromModel(t *testing.T) {
	client := &stubClient{response: "1. Unclear data ownership\n2. Outdated catalog tooling\n3. Missing retention policies"}
	extractor := NewExtractor(client, nil)

	result := extractor.Execute(context.Background(), "Data Quality", sampleRecords())

	require.True(t, result.Success)
	stats := result.Output.(*types.SurveyStats)
	require.Len(t, stats.CommentThemes, 3)
	assert.Equal(t, "Unclear data ownership", stats.CommentThemes[0])
	assert.Equal(t, 1, client.calls)
}

func TestExecute_ThemesFallbackOnModelFailure(t *testing.T) {
	client := &stubClient{err: errors.New("completion timed out")}
	extractor := NewExtractor(client, nil)

	result := extractor.Execute(context.Background(), "Data Quality", sampleRecords())

	require.True(t, result.Success, "model failure must not fail the stage")
	stats := result.Output.(*types.SurveyStats)
	assert.NotEmpty(t, stats.CommentThemes)
	assert.LessOrEqual(t, len(stats.CommentThemes), 5)
}

func TestKeywordThemes_StopWordsAndShortTokensRemoved(t *testing.T) {
	comments := []string{
		"The catalog catalog catalog is slow",
		"Catalog ownership is with the team",
		"ownership ownership matters",
	}

	themes := keywordThemes(comments)

	require.NotEmpty(t, themes)
	assert.Equal(t, "catalog", themes[0])
	assert.Contains(t, themes, "ownership")
	assert.NotContains(t, themes, "the")
	assert.NotContains(t, themes, "is")
}

func TestKeywordThemes_Deterministic(t *testing.T) {
	comments := []string{"alpha beta gamma", "beta gamma alpha", "gamma alpha beta"}
	first := keywordThemes(comments)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, keywordThemes(comments))
	}
}

func TestScoreDistribution(t *testing.T) {
	records := []types.SurveyRecord{
		{AverageScore: score(1.0)},
		{AverageScore: score(3.9)},
		{AverageScore: score(6.0)},
		{AverageScore: score(8.0)},
		{AverageScore: score(10.0)},
		{AverageScore: nil},
	}

	dist := scoreDistribution(records)

	assert.Equal(t, 1, dist["0-2"])
	assert.Equal(t, 1, dist["2-4"])
	assert.Equal(t, 0, dist["4-6"])
	assert.Equal(t, 1, dist["6-8"])
	assert.Equal(t, 2, dist["8-10"])
}
