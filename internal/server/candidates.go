package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/screener/internal/keyword"
	"github.com/hyperjump/screener/internal/models"
	"github.com/hyperjump/screener/internal/storage"
	"github.com/hyperjump/screener/pkg/utils"
	"go.uber.org/zap"
)

const defaultSearchLimit = 10

func (s *Server) handleCreateCandidate(w http.ResponseWriter, r *http.Request) {
	var input models.CandidateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("create candidate request", zap.String("id", input.ID))
	c, err := s.indexer.IngestText(r.Context(), &input)
	if err != nil {
		s.respondServiceError(w, "ingest failed", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{"id": c.ID, "status": "stored"})
}

func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 50
	}
	candidates, err := s.storage.ListCandidates(r.Context(), offset, limit)
	if err != nil {
		s.respondServiceError(w, "list candidates failed", err)
		return
	}
	total, err := s.storage.CountCandidates(r.Context())
	if err != nil {
		s.respondServiceError(w, "count candidates failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"candidates": candidates,
		"total":      total,
		"offset":     offset,
		"limit":      limit,
	})
}

func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	c, err := s.storage.GetCandidate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "candidate not found")
			return
		}
		s.respondServiceError(w, "get candidate failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCandidate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete candidate request", zap.String("id", id))
	if err := s.indexer.Delete(r.Context(), id); err != nil {
		s.respondServiceError(w, "deletion failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleSearchCandidates runs a keyword search over the candidate library.
func (s *Server) handleSearchCandidates(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		s.respondError(w, http.StatusBadRequest, "q is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	opts := &keyword.SearchOptions{FuzzyEnabled: formBool(r.URL.Query().Get("fuzzy"))}
	results, err := s.keyword.Search(r.Context(), q, limit, opts)
	if err != nil {
		s.respondServiceError(w, "search failed", err)
		return
	}
	hits := make([]models.CandidateHit, 0, len(results))
	for _, res := range results {
		hit := models.CandidateHit{ID: res.ID, Score: res.Score, Snippet: res.Fragment}
		if hit.Snippet == "" {
			if c, getErr := s.storage.GetCandidate(r.Context(), res.ID); getErr == nil {
				hit.Snippet = utils.Snippet(c.Text)
			}
		}
		hits = append(hits, hit)
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"query": q, "results": hits, "total": len(hits)})
}
