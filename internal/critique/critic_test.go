package critique

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dstrand/maturity-agent/internal/llm"
	"github.com/dstrand/maturity-agent/internal/types"
)

type stubClient struct {
	jsonResponse    string
	jsonErr         error
	contentResponse string
	contentErr      error
	jsonCalls       int
	contentCalls    int
}

func (c *stubClient) GenerateContent(context.Context, llm.Request) (string, error) {
	c.contentCalls++
	return c.contentResponse, c.contentErr
}

func (c *stubClient) GenerateJSON(context.Context, llm.Request) (string, error) {
	c.jsonCalls++
	return c.jsonResponse, c.jsonErr
}

func (c *stubClient) GetModel(llm.ModelTier) string { return "stub" }
func (c *stubClient) Close() error                  { return nil }

func sampleDraft() *types.GeneratedReport {
	return &types.GeneratedReport{
		Dimension:        "Data Quality",
		ExecutiveSummary: "The organization operates at a managed level with gaps in stewardship.",
		Sections: []types.ReportSection{
			{ID: "current-state", Title: "Current State"},
			{ID: "maturity-assessment", Title: "Maturity Assessment", Subsections: []types.ReportSection{{ID: "f", Title: "F"}}},
		},
		ActionItems: []types.ActionItem{
			{Action: "Appoint stewards", Priority: "High", Timeline: "Q1"},
		},
		Roadmap: map[string][]string{
			types.PhaseFoundation: {"Appoint stewards"},
		},
	}
}

func TestExecute_AboveThreshold(t *testing.T) {
	client := &stubClient{
		jsonResponse: "```json\n{\"clarity\": 9, \"actionability\": 8, \"standards_alignment\": 8, \"completeness\": 9}\n```",
	}
	critic := NewCritic(client, nil)

	result := critic.Execute(context.Background(), "Data Quality", sampleDraft(), 8.0)

	require.True(t, result.Success, result.Error)
	scores := result.Output.(*types.CritiqueScores)
	assert.Equal(t, 8.5, scores.Average())
	assert.False(t, scores.NeedsRevision)
	assert.Empty(t, scores.RevisionNotes)
	assert.Equal(t, 0, client.contentCalls, "no revision notes requested when the draft passes")
}

func TestExecute_BelowThresholdRequestsNotes(t *testing.T) {
	client := &stubClient{
		jsonResponse:    `{"clarity": 5, "actionability": 5, "standards_alignment": 5, "completeness": 5}`,
		contentResponse: "1. Tighten the executive summary around the stewardship gap.\n2. Add owners to each action item.\n3. Tie each finding to a framework clause.",
	}
	critic := NewCritic(client, nil)

	result := critic.Execute(context.Background(), "Data Quality", sampleDraft(), 8.0)

	require.True(t, result.Success)
	scores := result.Output.(*types.CritiqueScores)
	assert.True(t, scores.NeedsRevision)
	require.Len(t, scores.RevisionNotes, 3)
	assert.Equal(t, "Tighten the executive summary around the stewardship gap.", scores.RevisionNotes[0])
}

func TestExecute_ZeroThresholdNeverRevises(t *testing.T) {
	client := &stubClient{
		jsonResponse: `{"clarity": 1, "actionability": 1, "standards_alignment": 1, "completeness": 1}`,
	}
	critic := NewCritic(client, nil)

	result := critic.Execute(context.Background(), "Data Quality", sampleDraft(), 0)

	require.True(t, result.Success)
	scores := result.Output.(*types.CritiqueScores)
	assert.False(t, scores.NeedsRevision)
}

func TestExecute_NoteFailureKeptSoft(t *testing.T) {
	client := &stubClient{
		jsonResponse: `{"clarity": 4, "actionability": 4, "standards_alignment": 4, "completeness": 4}`,
		contentErr:   errors.New("timeout"),
	}
	critic := NewCritic(client, nil)

	result := critic.Execute(context.Background(), "Data Quality", sampleDraft(), 8.0)

	require.True(t, result.Success)
	scores := result.Output.(*types.CritiqueScores)
	assert.True(t, scores.NeedsRevision)
	assert.Empty(t, scores.RevisionNotes)
}

func TestExecute_ScoringFailure(t *testing.T) {
	client := &stubClient{jsonErr: errors.New("quota exhausted")}
	critic := NewCritic(client, nil)

	result := critic.Execute(context.Background(), "Data Quality", sampleDraft(), 8.0)

	assert.False(t, result.Success)
	assert.Nil(t, result.Output)
	assert.Contains(t, result.Error, "critique scoring failed")
}

func TestExecute_NilDraft(t *testing.T) {
	critic := NewCritic(&stubClient{}, nil)
	result := critic.Execute(context.Background(), "Data Quality", nil, 8.0)
	assert.False(t, result.Success)
}

func TestExecute_NoClient(t *testing.T) {
	critic := NewCritic(nil, nil)
	result := critic.Execute(context.Background(), "Data Quality", sampleDraft(), 8.0)
	assert.False(t, result.Success)
}

func TestParseScores_LooseLineScan(t *testing.T) {
	text := "The draft is decent.\nClarity: 8/10\nActionability - 6\nStandards alignment: 7\nOverall it needs work."

	scores, err := parseScores(text)

	require.NoError(t, err)
	assert.Equal(t, 8.0, scores.Clarity)
	assert.Equal(t, 6.0, scores.Actionability)
	assert.Equal(t, 7.0, scores.StandardsAlignment)
	assert.Equal(t, defaultDimensionScore, scores.Completeness, "unmentioned dimensions get the neutral default")
}

func TestParseScores_NoScores(t *testing.T) {
	_, err := parseScores("I cannot evaluate this draft.")
	assert.Error(t, err)
}

func TestParseScores_ClampsOutOfRange(t *testing.T) {
	scores, err := parseScores(`{"clarity": 12, "actionability": 9, "standards_alignment": 9, "completeness": 9}`)
	// Out-of-range JSON fails the schema, so the line scan picks it up.
	require.NoError(t, err)
	assert.Equal(t, 10.0, scores.Clarity)
}

func TestWeakAreas(t *testing.T) {
	scores := &types.CritiqueScores{Clarity: 4, Actionability: 8, StandardsAlignment: 8, Completeness: 8}
	weak := weakAreas(scores)
	require.Len(t, weak, 1)
	assert.Contains(t, weak[0], "clarity")
}

func TestWeakAreas_AllLevel(t *testing.T) {
	scores := &types.CritiqueScores{Clarity: 5, Actionability: 5, StandardsAlignment: 5, Completeness: 5}
	assert.Len(t, weakAreas(scores), 4)
}

func TestDraftOverview(t *testing.T) {
	overview := draftOverview(sampleDraft())

	assert.Contains(t, overview, "managed level")
	assert.Contains(t, overview, "2 top-level sections")
	assert.Contains(t, overview, "Action items: 1")
	assert.Contains(t, overview, "Phase 1: Foundation")
}
