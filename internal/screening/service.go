// Package screening orchestrates a screening run: embed resumes, index them, rank
// against the job description and optionally explain each match.
package screening

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/screener/internal/embedding"
	"github.com/hyperjump/screener/internal/explain"
	"github.com/hyperjump/screener/internal/models"
	"github.com/hyperjump/screener/internal/ranking"
	"github.com/hyperjump/screener/internal/storage"
	"github.com/hyperjump/screener/internal/vector"
	"github.com/hyperjump/screener/pkg/utils"
	"go.uber.org/zap"
)

// ErrInvalidRequest is returned when the job description or the resume list is empty.
var ErrInvalidRequest = models.ErrInvalidRequest

const (
	statusOK      = "ok"
	statusInvalid = "invalid"
	statusError   = "error"
)

// Config holds top-k bounds for requests.
type Config struct {
	DefaultTopK int
	MaxTopK     int
}

// Service runs screenings. Runs are serialized: the vector index holds exactly one
// run's resumes at a time.
type Service struct {
	provider  *embedding.Provider
	index     vector.Index
	ranker    *ranking.Ranker
	explainer *explain.Explainer
	store     storage.Storage // optional; when set, runs are saved and the library can be screened
	config    Config
	metrics   *Metrics
	logger    *zap.Logger
	mu        sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithStorage enables run history and library screening.
func WithStorage(s storage.Storage) Option {
	return func(svc *Service) { svc.store = s }
}

// WithLogger sets a logger.
func WithLogger(l *zap.Logger) Option {
	return func(svc *Service) { svc.logger = l }
}

// WithMetrics records run metrics.
func WithMetrics(m *Metrics) Option {
	return func(svc *Service) { svc.metrics = m }
}

// NewService creates a screening service. A nil explainer is replaced by a heuristic-only one.
func NewService(
	provider *embedding.Provider,
	index vector.Index,
	ranker *ranking.Ranker,
	explainer *explain.Explainer,
	cfg Config,
	opts ...Option,
) *Service {
	if explainer == nil {
		explainer = explain.New()
	}
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = 5
	}
	if cfg.MaxTopK <= 0 {
		cfg.MaxTopK = 20
	}
	s := &Service{
		provider:  provider,
		index:     index,
		ranker:    ranker,
		explainer: explainer,
		config:    cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = utils.OrNop(s.logger)
	return s
}

// Screen ranks the request's resumes against its job description.
func (s *Service) Screen(ctx context.Context, req *models.ScreenRequest) (*models.ScreenResponse, error) {
	return s.screen(ctx, req, nil)
}

// ScreenLibrary ranks every stored candidate against the job description. Resumes in
// req are ignored.
func (s *Service) ScreenLibrary(ctx context.Context, req *models.ScreenRequest) (*models.ScreenResponse, error) {
	if s.store == nil {
		return nil, fmt.Errorf("candidate library is not configured")
	}
	candidates, err := s.store.ListCandidates(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	libReq := *req
	libReq.Resumes = make([]models.Resume, 0, len(candidates))
	paths := make(map[string]string, len(candidates))
	for _, c := range candidates {
		libReq.Resumes = append(libReq.Resumes, models.Resume{ID: c.ID, Text: c.Text})
		if c.Path != "" {
			paths[c.ID] = c.Path
		}
	}
	return s.screen(ctx, &libReq, paths)
}

func (s *Service) screen(ctx context.Context, req *models.ScreenRequest, paths map[string]string) (*models.ScreenResponse, error) {
	start := time.Now()
	if err := req.Validate(s.config.DefaultTopK, s.config.MaxTopK); err != nil {
		s.observeRun(statusInvalid, start, 0)
		return nil, err
	}

	provider, explainer := s.provider, s.explainer
	if req.Offline {
		provider, explainer = provider.Offline(), explainer.Offline()
	}

	ranked, err := s.rank(ctx, provider, req)
	if err != nil {
		s.observeRun(statusError, start, len(req.Resumes))
		return nil, err
	}

	results := make([]*models.ScreenResult, 0, len(ranked))
	for i, r := range ranked {
		res := &models.ScreenResult{
			Rank:       i + 1,
			ID:         r.ID,
			Score:      r.Score,
			Similarity: r.Similarity,
			Boost:      r.Boost,
			Snippet:    utils.Snippet(r.Text()),
			Path:       paths[r.ID],
		}
		if r.Breakdown != nil {
			res.Boosts = r.Breakdown.Boosts
		}
		if req.Explain {
			res.Explanation = explainer.Explain(ctx, req.QueryText, r.Text(), req.Model)
		}
		results = append(results, res)
	}

	resp := &models.ScreenResponse{
		RunID:      uuid.New().String(),
		Results:    results,
		Total:      len(results),
		Candidates: len(req.Resumes),
		Offline:    !provider.RemoteEnabled(),
		TookMs:     time.Since(start).Milliseconds(),
	}
	s.saveRun(ctx, req, resp)
	s.observeRun(statusOK, start, len(req.Resumes))
	s.logger.Debug("screening run complete",
		zap.String("run_id", resp.RunID),
		zap.Int("candidates", resp.Candidates),
		zap.Int("results", resp.Total),
		zap.Int64("took_ms", resp.TookMs))
	return resp, nil
}

// rank clears the index, loads the resumes and ranks them. The index is shared,
// so the whole sequence holds the run lock.
func (s *Service) rank(ctx context.Context, provider *embedding.Provider, req *models.ScreenRequest) ([]*ranking.RankedResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.index.Clear(ctx)
	for _, r := range req.Resumes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, _ := provider.Embed(ctx, r.Text)
		if err := s.index.Upsert(ctx, r.ID, vec, map[string]string{vector.MetadataText: r.Text}); err != nil {
			return nil, fmt.Errorf("index resume %s: %w", r.ID, err)
		}
	}
	query, _ := provider.Embed(ctx, req.QueryText)
	return s.ranker.Rank(ctx, query, s.index, req.TopK)
}

func (s *Service) saveRun(ctx context.Context, req *models.ScreenRequest, resp *models.ScreenResponse) {
	if s.store == nil {
		return
	}
	run := &models.Run{
		ID:        resp.RunID,
		QueryText: req.QueryText,
		TopK:      req.TopK,
		Offline:   resp.Offline,
		Results:   resp.Results,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.SaveRun(ctx, run); err != nil {
		s.logger.Debug("failed to save screening run", zap.String("run_id", run.ID), zap.Error(err))
	}
}

func (s *Service) observeRun(status string, start time.Time, candidates int) {
	if s.metrics != nil {
		s.metrics.observeRun(status, time.Since(start).Seconds(), candidates)
	}
}

// Explain returns a rationale for one resume against a job description.
func (s *Service) Explain(ctx context.Context, req *models.ExplainRequest) *models.ExplainResponse {
	explainer := s.explainer
	if req.Offline {
		explainer = explainer.Offline()
	}
	return &models.ExplainResponse{
		Explanation: explainer.Explain(ctx, req.QueryText, req.Resume, req.Model),
	}
}

// GetRun returns a stored screening run.
func (s *Service) GetRun(ctx context.Context, id string) (*models.Run, error) {
	if s.store == nil {
		return nil, fmt.Errorf("run %s: %w", id, storage.ErrNotFound)
	}
	return s.store.GetRun(ctx, id)
}

// IndexSize returns the number of records from the last run still held by the index.
func (s *Service) IndexSize() int {
	return s.index.Size()
}

// RemoteEnabled reports whether embeddings and explanations may use remote services.
func (s *Service) RemoteEnabled() (embeddings, explanations bool) {
	return s.provider.RemoteEnabled(), s.explainer.RemoteEnabled()
}
