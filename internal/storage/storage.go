// Package storage persists candidates and screening runs.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/screener/internal/models"
)

// ErrNotFound is returned when a candidate or run does not exist.
var ErrNotFound = errors.New("not found")

// Storage defines candidate and run persistence operations.
type Storage interface {
	// Candidate operations
	UpsertCandidate(ctx context.Context, c *models.Candidate) error
	GetCandidate(ctx context.Context, id string) (*models.Candidate, error)
	DeleteCandidate(ctx context.Context, id string) error
	// ListCandidates returns candidates ordered by ID; limit <= 0 returns all.
	ListCandidates(ctx context.Context, offset, limit int) ([]*models.Candidate, error)
	CountCandidates(ctx context.Context) (int64, error)

	// Run operations
	SaveRun(ctx context.Context, run *models.Run) error
	GetRun(ctx context.Context, id string) (*models.Run, error)
	CountRuns(ctx context.Context) (int64, error)

	Close() error
}
