package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weaviate/weaviate/entities/models"
)

func TestNewWeaviateRetriever_RequiresHost(t *testing.T) {
	_, err := NewWeaviateRetriever(WeaviateConfig{})
	assert.Error(t, err)
}

func TestNewWeaviateRetriever_Defaults(t *testing.T) {
	r, err := NewWeaviateRetriever(WeaviateConfig{Host: "localhost:8080"})
	require.NoError(t, err)
	assert.Equal(t, DefaultClassName, r.className)
}

func TestJoinChunks(t *testing.T) {
	resp := &models.GraphQLResponse{
		Data: map[string]models.JSONObject{
			"Get": map[string]any{
				"GovernancePractice": []any{
					map[string]any{
						"title":     "Data Stewardship Roles",
						"content":   "Assign named stewards per data domain.",
						"framework": "DAMA-DMBOK",
					},
					map[string]any{
						"title":   "Retention Schedules",
						"content": "Define retention per record class.",
					},
					map[string]any{
						"title":   "Empty Chunk",
						"content": "   ",
					},
				},
			},
		},
	}

	blob := joinChunks(resp, "GovernancePractice")

	assert.Contains(t, blob, "### Data Stewardship Roles (DAMA-DMBOK)")
	assert.Contains(t, blob, "Assign named stewards per data domain.")
	assert.Contains(t, blob, "### Retention Schedules")
	assert.NotContains(t, blob, "Empty Chunk")
}

func TestJoinChunks_NoResults(t *testing.T) {
	resp := &models.GraphQLResponse{
		Data: map[string]models.JSONObject{
			"Get": map[string]any{"GovernancePractice": []any{}},
		},
	}
	assert.Empty(t, joinChunks(resp, "GovernancePractice"))
}

func TestJoinChunks_MalformedShape(t *testing.T) {
	resp := &models.GraphQLResponse{Data: map[string]models.JSONObject{}}
	assert.Empty(t, joinChunks(resp, "GovernancePractice"))
}

func TestNoopRetriever(t *testing.T) {
	blob, err := Noop{}.Retrieve(context.Background(), "Data Quality", "avg 6.1", 5)
	require.NoError(t, err)
	assert.Empty(t, blob)
}

func TestFuncAdapter(t *testing.T) {
	f := Func(func(_ context.Context, dimension, _ string, _ int) (string, error) {
		return "context for " + dimension, nil
	})
	blob, err := f.Retrieve(context.Background(), "Data Security", "", 3)
	require.NoError(t, err)
	assert.Equal(t, "context for Data Security", blob)
}
