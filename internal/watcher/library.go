package watcher

import (
	"context"

	"github.com/hyperjump/screener/internal/indexer"
)

// LibraryHandler ingests inbox files into the candidate library.
type LibraryHandler struct {
	indexer    *indexer.Indexer
	extensions []string
}

// NewLibraryHandler returns a Handler backed by idx.
func NewLibraryHandler(idx *indexer.Indexer, extensions []string) *LibraryHandler {
	return &LibraryHandler{indexer: idx, extensions: extensions}
}

// Ingest stores or refreshes the resume at path.
func (h *LibraryHandler) Ingest(ctx context.Context, path string) error {
	_, err := h.indexer.IngestFile(ctx, path, h.extensions)
	return err
}

// Remove deletes the candidate that was ingested from path.
func (h *LibraryHandler) Remove(ctx context.Context, path string) error {
	_, err := h.indexer.DeleteFile(ctx, path)
	return err
}
