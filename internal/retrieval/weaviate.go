package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

// DefaultClassName is the knowledge-base class holding governance practice
// chunks.
const DefaultClassName = "GovernancePractice"

// hybridAlpha weights vector search over keyword search in hybrid queries.
const hybridAlpha = 0.75

// WeaviateConfig configures the knowledge-base connection.
type WeaviateConfig struct {
	Host      string // e.g. "localhost:8080"
	Scheme    string // "http" or "https"
	ClassName string // defaults to DefaultClassName
}

// WeaviateRetriever queries a Weaviate knowledge base with hybrid search.
type WeaviateRetriever struct {
	client    *weaviate.Client
	className string
}

// NewWeaviateRetriever builds a retriever for the configured knowledge base.
func NewWeaviateRetriever(cfg WeaviateConfig) (*WeaviateRetriever, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("weaviate host is required")
	}
	scheme := cfg.Scheme
	if scheme == "" {
		scheme = "http"
	}
	className := cfg.ClassName
	if className == "" {
		className = DefaultClassName
	}

	client, err := weaviate.NewClient(weaviate.Config{Host: cfg.Host, Scheme: scheme})
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}

	return &WeaviateRetriever{client: client, className: className}, nil
}

// Retrieve runs a hybrid search for the dimension and summary and joins the
// matched chunks into one context blob. No matches yields "" with nil error.
func (r *WeaviateRetriever) Retrieve(ctx context.Context, dimension, summary string, topK int) (string, error) {
	if topK <= 0 {
		topK = 5
	}

	query := dimension
	if summary != "" {
		query = dimension + ": " + summary
	}

	hybrid := (&graphql.HybridArgumentBuilder{}).
		WithQuery(query).
		WithAlpha(hybridAlpha)

	result, err := r.client.GraphQL().Get().
		WithClassName(r.className).
		WithHybrid(hybrid).
		WithFields(
			graphql.Field{Name: "title"},
			graphql.Field{Name: "content"},
			graphql.Field{Name: "framework"},
		).
		WithLimit(topK).
		Do(ctx)
	if err != nil {
		return "", fmt.Errorf("knowledge base query failed: %w", err)
	}
	if len(result.Errors) > 0 {
		return "", fmt.Errorf("knowledge base query failed: %s", graphqlErrorString(result))
	}

	return joinChunks(result, r.className), nil
}

// joinChunks flattens a GraphQL Get response into a markdown context blob.
func joinChunks(result *models.GraphQLResponse, className string) string {
	get, ok := result.Data["Get"].(map[string]any)
	if !ok {
		return ""
	}
	objects, ok := get[className].([]any)
	if !ok {
		return ""
	}

	var sb strings.Builder
	for _, obj := range objects {
		fields, ok := obj.(map[string]any)
		if !ok {
			continue
		}
		content, _ := fields["content"].(string)
		if strings.TrimSpace(content) == "" {
			continue
		}
		title, _ := fields["title"].(string)
		framework, _ := fields["framework"].(string)

		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		if title != "" {
			sb.WriteString("### " + title)
			if framework != "" {
				sb.WriteString(" (" + framework + ")")
			}
			sb.WriteString("\n")
		}
		sb.WriteString(strings.TrimSpace(content))
	}
	return sb.String()
}

// graphqlErrorString summarizes GraphQL errors for wrapping.
func graphqlErrorString(result *models.GraphQLResponse) string {
	msgs := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		if e != nil {
			msgs = append(msgs, e.Message)
		}
	}
	return strings.Join(msgs, "; ")
}
