// Package embedding turns text into fixed-dimension vectors with a persistent
// cache, a remote backend with retries and a deterministic local fallback.
package embedding

import "context"

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// Remote is a backend that computes semantic embeddings, usually over the network.
// Any error it returns is treated as transient by the Provider.
type Remote interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Source records which path produced a vector.
type Source int

const (
	// SourceCache means the vector was found in the embedding cache.
	SourceCache Source = iota
	// SourceRemote means the remote backend produced the vector.
	SourceRemote
	// SourceFallback means the deterministic local fallback produced the vector.
	SourceFallback
)

// String returns a string representation of the source.
func (s Source) String() string {
	switch s {
	case SourceCache:
		return "cache"
	case SourceRemote:
		return "remote"
	case SourceFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Result is a vector tagged with the path that produced it.
type Result struct {
	Vector []float32
	Source Source
}
