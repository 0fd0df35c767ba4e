// Package retrieval provides the query interface to the governance knowledge
// base. Only querying lives here; building and maintaining the corpus is a
// separate system.
package retrieval

import "context"

// Retriever fetches reference context for a dimension. An empty result is not
// an error; callers degrade to assessing without context.
type Retriever interface {
	// Retrieve returns a context blob for the dimension and summary, built
	// from at most topK knowledge-base chunks.
	Retrieve(ctx context.Context, dimension, summary string, topK int) (string, error)
}

// Noop is a Retriever that always returns an empty context. It stands in when
// no knowledge base is configured.
type Noop struct{}

// Retrieve implements Retriever.
func (Noop) Retrieve(context.Context, string, string, int) (string, error) {
	return "", nil
}

// Func adapts a function to the Retriever interface.
type Func func(ctx context.Context, dimension, summary string, topK int) (string, error)

// Retrieve implements Retriever.
func (f Func) Retrieve(ctx context.Context, dimension, summary string, topK int) (string, error) {
	return f(ctx, dimension, summary, topK)
}
