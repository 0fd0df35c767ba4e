package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	payload := `[
		{"question_id": "q1", "question_text": "Is data ownership defined?", "average_score": 7.2, "response_count": 14, "category": "Policy"},
		{"question_id": "q2", "average_score": null, "response_count": 3, "comments": ["nobody knows who owns this"]}
	]`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	records, err := loadRecords(path)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "q1", records[0].QuestionID)
	require.NotNil(t, records[0].AverageScore)
	assert.Equal(t, 7.2, *records[0].AverageScore)
	assert.Nil(t, records[1].AverageScore)
	assert.Equal(t, []string{"nobody knows who owns this"}, records[1].Comments)
}

func TestLoadRecords_MissingFile(t *testing.T) {
	_, err := loadRecords(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadRecords_MalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := loadRecords(path)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestBuildLogger(t *testing.T) {
	verbose, err := buildLogger(true)
	require.NoError(t, err)
	assert.True(t, verbose.Core().Enabled(0), "development logger keeps info enabled")

	quiet, err := buildLogger(false)
	require.NoError(t, err)
	assert.False(t, quiet.Core().Enabled(0), "production logger starts at warn")
}
