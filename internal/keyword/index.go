// Package keyword provides keyword (BM25) search over stored candidates.
package keyword

import (
	"context"

	"github.com/hyperjump/screener/internal/models"
)

// SearchOptions optional parameters for keyword search. Nil means use defaults.
type SearchOptions struct {
	// FuzzyEnabled enables fuzzy matching for typo tolerance ("kubernets" finds "kubernetes").
	FuzzyEnabled bool
	// Fuzziness is the maximum Levenshtein edit distance for fuzzy matching (1 or 2).
	// Default is 1 when FuzzyEnabled is true.
	Fuzziness int
}

// KeywordIndex defines keyword search operations over candidates.
type KeywordIndex interface {
	Index(ctx context.Context, c *models.Candidate) error
	Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*KeywordResult, error)
	Delete(ctx context.Context, id string) error
	// DocCount returns the total number of candidates in the index.
	DocCount() (uint64, error)
	Close() error
}

// KeywordResult is a single keyword search hit. Fragment is a highlighted excerpt
// of the matching text when one is available.
type KeywordResult struct {
	ID       string
	Score    float64
	Fragment string
}
