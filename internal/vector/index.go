// Package vector stores candidate embeddings and answers nearest-neighbour queries.
package vector

import (
	"context"
	"errors"
)

// Metadata keys with special meaning to the index.
const (
	// MetadataText holds the document text of a record.
	MetadataText = "text"
	// MetadataID repeats the record ID; used when a raw hit carries no ID of its own.
	MetadataID = "id"
)

// ErrUnknownIndexType is returned by NewIndex for unsupported backends.
var ErrUnknownIndexType = errors.New("unknown index type")

// Index is a single collection of embedded documents.
type Index interface {
	// Upsert creates or overwrites the record for id. An empty embedding is a no-op.
	Upsert(ctx context.Context, id string, embedding []float32, metadata map[string]string) error
	// Query returns up to topK candidates nearest to query, best first.
	Query(ctx context.Context, query []float32, topK int) ([]Candidate, error)
	// Clear removes every record. Failures are logged, never returned.
	Clear(ctx context.Context)
	Size() int
	Close() error
}

// Candidate is a query hit. Score is 1 - distance, or 0 when the distance is unusable.
// Embedding is nil when the backend did not return a usable stored vector.
type Candidate struct {
	ID        string
	Score     float64
	Metadata  map[string]string
	Document  string
	Embedding []float32
}

// Text returns the candidate's text: metadata "text" when set, else the stored document.
func (c Candidate) Text() string {
	if t := c.Metadata[MetadataText]; t != "" {
		return t
	}
	return c.Document
}
