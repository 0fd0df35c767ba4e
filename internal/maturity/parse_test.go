package maturity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMaturityLevel_StructuredBlock(t *testing.T) {
	response := "Based on the evidence:\n```json\n{\n  \"score\": 3.5,\n  \"level\": \"Defined\",\n  \"gaps\": [\"No data quality SLAs\", \"Manual profiling only\"],\n  \"best_practices\": [\"Weekly quality reviews\"]\n}\n```\n"

	level, err := parseMaturityLevel("DAMA-DMBOK", response)
	require.NoError(t, err)

	assert.Equal(t, "DAMA-DMBOK", level.Framework)
	assert.Equal(t, "Defined", level.CurrentLevel)
	assert.Equal(t, 3.5, level.Score)
	assert.Equal(t, []string{"No data quality SLAs", "Manual profiling only"}, level.Gaps)
	assert.Equal(t, []string{"Weekly quality reviews"}, level.BestPractices)
}

func TestParseMaturityLevel_ScoreClamped(t *testing.T) {
	high := "```json\n{\"score\": 7.2, \"level\": \"Optimizing\"}\n```"
	level, err := parseMaturityLevel("ISO 8000", high)
	require.NoError(t, err)
	assert.Equal(t, 5.0, level.Score)

	low := "```json\n{\"score\": 0.2}\n```"
	level, err = parseMaturityLevel("ISO 8000", low)
	require.NoError(t, err)
	assert.Equal(t, 1.0, level.Score)
}

func TestParseMaturityLevel_LevelDefaultsToInitial(t *testing.T) {
	response := "```json\n{\"score\": 2.0}\n```"
	level, err := parseMaturityLevel("GDPR", response)
	require.NoError(t, err)
	assert.Equal(t, "Initial", level.CurrentLevel)
}

func TestParseMaturityLevel_TextScanFallback(t *testing.T) {
	response := `The organization is at a Managed stage, roughly 2.5/5.

Key gaps:
- No documented retention schedule
- Access reviews are ad hoc

Observed practices:
- Central policy repository exists`

	level, err := parseMaturityLevel("GDPR", response)
	require.Error(t, err, "fallback path reports why the structured path failed")

	assert.Equal(t, 2.5, level.Score)
	assert.Equal(t, "Managed", level.CurrentLevel)
	assert.Equal(t, []string{"No documented retention schedule", "Access reviews are ad hoc"}, level.Gaps)
	assert.Equal(t, []string{"Central policy repository exists"}, level.BestPractices)
}

func TestParseMaturityLevel_TextScanDefaults(t *testing.T) {
	level, err := parseMaturityLevel("NIST CSF", "The assessment is inconclusive.")
	require.Error(t, err)

	assert.Equal(t, fallbackScore, level.Score)
	assert.Equal(t, "Initial", level.CurrentLevel)
	assert.Equal(t, []string{placeholderGap}, level.Gaps)
	assert.Equal(t, []string{placeholderPractice}, level.BestPractices)
}

func TestParseMaturityLevel_ListsCappedAtFive(t *testing.T) {
	response := "```json\n{\"score\": 2, \"gaps\": [\"g1\",\"g2\",\"g3\",\"g4\",\"g5\",\"g6\",\"g7\"]}\n```"
	level, err := parseMaturityLevel("DAMA-DMBOK", response)
	require.NoError(t, err)
	assert.Len(t, level.Gaps, 5)
}

func TestHarvestLists_NumberedEntries(t *testing.T) {
	response := "Identified gaps below.\n1. First gap item\n2) Second gap item\nBest practices observed:\n* One good practice"

	gaps, practices := harvestLists(response)

	assert.Equal(t, []string{"First gap item", "Second gap item"}, gaps)
	assert.Equal(t, []string{"One good practice"}, practices)
}

func TestFrameworksFor(t *testing.T) {
	assert.Equal(t, []string{"NIST CSF", "ISO 27001"}, FrameworksFor("Data Security"))
	assert.Equal(t, []string{"DAMA-DMBOK"}, FrameworksFor("Something Unmapped"))
}
