// Package indexer ingests resumes into the candidate library: storage, the keyword
// index and the embedding cache.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/hyperjump/screener/internal/extract"
	"github.com/hyperjump/screener/internal/keyword"
	"github.com/hyperjump/screener/internal/models"
	"github.com/hyperjump/screener/internal/storage"
	"go.uber.org/zap"
)

// ErrEmptyText is returned when a candidate has no text after preprocessing.
var ErrEmptyText = errors.New("candidate text is empty")

// Warmer precomputes an embedding so later screening runs hit the cache.
type Warmer interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Indexer ingests candidates into storage and the keyword index.
type Indexer struct {
	storage      storage.Storage
	keywordIndex keyword.KeywordIndex
	extractor    *extract.Extractor
	warmer       Warmer
	logger       *zap.Logger // optional; when set, logs debug events
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for debug output (file ingested, candidate deleted, etc.).
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// WithWarmer embeds each ingested candidate once so its vector lands in the cache.
func WithWarmer(w Warmer) IndexerOption {
	return func(idx *Indexer) { idx.warmer = w }
}

// NewIndexer creates an indexer with the given dependencies.
// extractor may be nil; when nil, IngestFile treats all files as plain text.
func NewIndexer(
	storage storage.Storage,
	keywordIndex keyword.KeywordIndex,
	extractor *extract.Extractor,
	opts ...IndexerOption,
) *Indexer {
	idx := &Indexer{
		storage:      storage,
		keywordIndex: keywordIndex,
		extractor:    extractor,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// IngestText stores a candidate from raw text. An empty ID gets a random UUID.
func (idx *Indexer) IngestText(ctx context.Context, input *models.CandidateInput) (*models.Candidate, error) {
	c := &models.Candidate{
		ID:       input.ID,
		Text:     input.Text,
		Source:   models.SourceAPI,
		Metadata: input.Metadata,
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if err := idx.store(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (idx *Indexer) store(ctx context.Context, c *models.Candidate) error {
	c.Text = CleanText(c.Text)
	if c.Text == "" {
		return ErrEmptyText
	}
	if err := idx.storage.UpsertCandidate(ctx, c); err != nil {
		return fmt.Errorf("failed to store candidate: %w", err)
	}
	if err := idx.keywordIndex.Index(ctx, c); err != nil {
		return fmt.Errorf("failed to index keywords: %w", err)
	}
	if idx.warmer != nil {
		if _, err := idx.warmer.Embed(ctx, c.Text); err != nil && idx.logger != nil {
			idx.logger.Debug("indexer embedding warm-up failed", zap.String("id", c.ID), zap.Error(err))
		}
	}
	return nil
}

const (
	metaKeySourceMtime = "source_mtime"
	metaKeySourceSize  = "source_size"
)

// CandidateID returns the library ID for a resume file: its base name.
func CandidateID(path string) string {
	return filepath.Base(path)
}

// IngestFile extracts a resume file and stores it under its file name, so
// re-ingesting updates the same candidate. If allowedExts is empty, every extension
// the extractor supports is accepted. Returns skipped=true when the file is already
// stored with the same path, mtime and size.
func (idx *Indexer) IngestFile(ctx context.Context, path string, allowedExts []string) (skipped bool, err error) {
	if idx.logger != nil {
		idx.logger.Debug("indexer ingesting file", zap.String("path", path))
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("absolute path: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(absPath))
	if !idx.accepts(ext, allowedExts) {
		return false, fmt.Errorf("extension %q not in allowed list", ext)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return false, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return false, fmt.Errorf("not a regular file: %s", absPath)
	}
	id := CandidateID(absPath)
	if idx.unchanged(ctx, absPath, id, info) {
		// Re-index keywords in case the keyword index was recreated empty.
		if c, getErr := idx.storage.GetCandidate(ctx, id); getErr == nil {
			_ = idx.keywordIndex.Index(ctx, c)
		}
		if idx.logger != nil {
			idx.logger.Debug("indexer skipping unchanged file", zap.String("path", absPath))
		}
		return true, nil
	}
	text, err := idx.extractContent(absPath)
	if err != nil {
		return false, fmt.Errorf("extract content: %w", err)
	}
	c := &models.Candidate{
		ID:     id,
		Text:   text,
		Source: models.SourceFile,
		Path:   absPath,
		Metadata: map[string]string{
			metaKeySourceMtime: strconv.FormatInt(info.ModTime().UnixNano(), 10),
			metaKeySourceSize:  strconv.FormatInt(info.Size(), 10),
		},
	}
	if err := idx.store(ctx, c); err != nil {
		return false, err
	}
	if idx.logger != nil {
		idx.logger.Debug("indexer file ingested", zap.String("path", absPath), zap.String("id", id))
	}
	return false, nil
}

// unchanged reports whether the file is already stored with the same path, mtime and size.
func (idx *Indexer) unchanged(ctx context.Context, absPath, id string, info os.FileInfo) bool {
	c, err := idx.storage.GetCandidate(ctx, id)
	if err != nil || c.Path != absPath || c.Metadata == nil {
		return false
	}
	// Values are stored as strings; UnixNano exceeds float64 precision.
	mtime, _ := strconv.ParseInt(c.Metadata[metaKeySourceMtime], 10, 64)
	size, _ := strconv.ParseInt(c.Metadata[metaKeySourceSize], 10, 64)
	return mtime == info.ModTime().UnixNano() && size == info.Size()
}

// IngestDirectory walks dir recursively and ingests each regular file with an accepted
// extension. Files that fail extraction are logged and skipped. Returns the number of
// files ingested (unchanged files excluded).
func (idx *Indexer) IngestDirectory(ctx context.Context, dir string, allowedExts []string) (n int, err error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return 0, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("not a directory: %s", absDir)
	}
	err = filepath.WalkDir(absDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !idx.accepts(strings.ToLower(filepath.Ext(path)), allowedExts) {
			return nil
		}
		// Resolve symlinks so we only ingest regular files
		finfo, statErr := os.Stat(path)
		if statErr != nil || !finfo.Mode().IsRegular() {
			return nil
		}
		skipped, ingestErr := idx.IngestFile(ctx, path, allowedExts)
		if ingestErr != nil {
			if idx.logger != nil {
				idx.logger.Warn("indexer skipping file", zap.String("path", path), zap.Error(ingestErr))
			}
			return nil
		}
		if !skipped {
			n++
		}
		return nil
	})
	return n, err
}

func (idx *Indexer) extractContent(path string) (string, error) {
	if idx.extractor != nil {
		return idx.extractor.Extract(path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

func (idx *Indexer) accepts(ext string, allowed []string) bool {
	if len(allowed) > 0 {
		return extensionAllowed(ext, allowed)
	}
	if idx.extractor == nil {
		return true
	}
	return extract.IsSupported(ext)
}

func extensionAllowed(ext string, allowed []string) bool {
	extNorm := strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == extNorm {
			return true
		}
	}
	return false
}

// Delete removes a candidate from the keyword index and storage.
func (idx *Indexer) Delete(ctx context.Context, id string) error {
	if idx.logger != nil {
		idx.logger.Debug("indexer deleting candidate", zap.String("id", id))
	}
	if err := idx.keywordIndex.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete from keyword index: %w", err)
	}
	if err := idx.storage.DeleteCandidate(ctx, id); err != nil {
		return fmt.Errorf("failed to delete candidate: %w", err)
	}
	return nil
}

// DeleteFile removes the candidate ingested from path, if it came from that path.
// Returns false when no such candidate is stored.
func (idx *Indexer) DeleteFile(ctx context.Context, path string) (bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("absolute path: %w", err)
	}
	id := CandidateID(absPath)
	c, err := idx.storage.GetCandidate(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if c.Path != absPath {
		return false, nil
	}
	if err := idx.Delete(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}
