package vector

import (
	"fmt"

	"go.uber.org/zap"
)

// IndexType represents the type of vector index to use.
type IndexType string

const (
	// IndexTypeChromem uses chromem-go, optionally persisted to disk.
	IndexTypeChromem IndexType = "chromem"
	// IndexTypeMemory uses in-memory brute-force search. Good for small datasets (<10k vectors).
	IndexTypeMemory IndexType = "memory"
)

// Options configures NewIndex.
type Options struct {
	// Dimensions is required by the memory backend.
	Dimensions int
	// Path persists the chromem DB (directory) or the memory index (file). Empty keeps it in memory.
	Path       string
	Collection string
	Compress   bool
	Logger     *zap.Logger
}

// NewIndex creates an index of the given type. Supported types: "chromem" (default), "memory".
func NewIndex(indexType string, opts Options) (Index, error) {
	switch IndexType(indexType) {
	case IndexTypeChromem, "":
		return NewChromemIndex(opts)
	case IndexTypeMemory:
		idx, err := NewMemoryIndex(opts.Dimensions)
		if err != nil {
			return nil, err
		}
		if err := idx.Load(opts.Path); err != nil {
			return nil, fmt.Errorf("load memory index: %w", err)
		}
		idx.path = opts.Path
		return idx, nil
	default:
		return nil, fmt.Errorf("%w: %s (supported: chromem, memory)", ErrUnknownIndexType, indexType)
	}
}
