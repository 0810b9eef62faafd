package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/screener/internal/export"
	"github.com/hyperjump/screener/internal/extract"
	"github.com/hyperjump/screener/internal/indexer"
	"github.com/hyperjump/screener/internal/models"
	"github.com/hyperjump/screener/internal/screening"
	"github.com/hyperjump/screener/internal/storage"
	"github.com/hyperjump/screener/internal/watcher"
	"go.uber.org/zap"
)

func (s *Server) handleScreen(w http.ResponseWriter, r *http.Request) {
	var req models.ScreenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("screen request", zap.Int("resumes", len(req.Resumes)), zap.Int("top_k", req.TopK))
	resp, err := s.screening.Screen(r.Context(), &req)
	if err != nil {
		s.respondServiceError(w, "screening failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleScreenLibrary(w http.ResponseWriter, r *http.Request) {
	var req models.ScreenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	resp, err := s.screening.ScreenLibrary(r.Context(), &req)
	if err != nil {
		s.respondServiceError(w, "library screening failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// handleScreenUpload screens uploaded resume files. The job description comes from
// the query_text field or a jd_file part.
func (s *Server) handleScreenUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.uploadMemory); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	form := r.MultipartForm
	defer func() { _ = form.RemoveAll() }()
	req := models.ScreenRequest{
		QueryText: r.FormValue("query_text"),
		Model:     r.FormValue("model"),
		Explain:   formBool(r.FormValue("explain")),
		Offline:   formBool(r.FormValue("offline")),
	}
	if v := r.FormValue("top_k"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "top_k must be an integer")
			return
		}
		req.TopK = n
	}
	if files := form.File["jd_file"]; len(files) > 0 && strings.TrimSpace(req.QueryText) == "" {
		text, err := readUpload(files[0])
		if err != nil || extract.IsExtractionFailure(text) {
			s.respondError(w, http.StatusBadRequest, "could not read job description file")
			return
		}
		req.QueryText = text
	}

	readable := 0
	for _, fh := range form.File["resumes"] {
		text, err := readUpload(fh)
		if err != nil {
			s.logger.Debug("upload read failed", zap.String("file", fh.Filename), zap.Error(err))
			continue
		}
		if !extract.IsExtractionFailure(text) {
			readable++
		}
		// Unreadable resumes keep the extraction message as their text.
		req.Resumes = append(req.Resumes, models.Resume{ID: fh.Filename, Text: text})
	}
	if len(req.Resumes) > 0 && readable == 0 {
		s.respondError(w, http.StatusBadRequest, "none of the uploaded resumes could be read")
		return
	}

	resp, err := s.screening.Screen(r.Context(), &req)
	if err != nil {
		s.respondServiceError(w, "screening failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func readUpload(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return extract.ExtractBytes(fh.Filename, content), nil
}

func formBool(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}

// handleScreenExport screens and returns the results as a CSV or XLSX download.
func (s *Server) handleScreenExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = export.FormatCSV
	}
	if format != export.FormatCSV && format != export.FormatXLSX {
		s.respondError(w, http.StatusBadRequest, "format must be csv or xlsx")
		return
	}
	var req models.ScreenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	resp, err := s.screening.Screen(r.Context(), &req)
	if err != nil {
		s.respondServiceError(w, "screening failed", err)
		return
	}
	contentType := "text/csv"
	if format == export.FormatXLSX {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "ranked_candidates."+format))
	w.WriteHeader(http.StatusOK)
	if err := export.Write(w, format, resp.Results); err != nil {
		s.logger.Error("export failed", zap.Error(err))
	}
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	var req models.ExplainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.respondJSON(w, http.StatusOK, s.screening.Explain(r.Context(), &req))
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.screening.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondServiceError(w, "get run failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, run)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := map[string]interface{}{
		"vector_index_size": s.screening.IndexSize(),
	}
	if s.storage != nil {
		candidates, err := s.storage.CountCandidates(ctx)
		if err != nil {
			s.logger.Error("status: count candidates failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		runs, err := s.storage.CountRuns(ctx)
		if err != nil {
			s.logger.Error("status: count runs failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp["candidates"] = candidates
		resp["runs"] = runs
	}
	if s.cache != nil {
		resp["cache_entries"] = s.cache.Len()
	}
	embeddings, explanations := s.screening.RemoteEnabled()
	resp["remote_embeddings"] = embeddings
	resp["remote_explanations"] = explanations
	if ws, ok := s.watch.(interface{ Stats() watcher.Stats }); ok {
		resp["watch"] = ws.Stats()
	}
	if s.config != nil {
		resp["config"] = map[string]interface{}{
			"embedding_provider":   s.config.Embedding.Provider,
			"embedding_dimensions": s.config.Embedding.Dimensions,
			"vector_index_type":    s.config.Vector.IndexType,
			"explain_model":        s.config.Explain.Model,
			"default_top_k":        s.config.Ranking.DefaultTopK,
			"max_top_k":            s.config.Ranking.MaxTopK,
		}
		resp["disk_usage_bytes"] = storage.UsageByName(map[string]string{
			"database":        s.config.Storage.DatabasePath,
			"keyword_index":   s.config.Storage.BleveIndexPath,
			"vector_store":    s.config.Storage.VectorStorePath,
			"embedding_cache": s.config.Storage.EmbeddingCachePath,
		})
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// respondServiceError maps service errors to status codes.
// invalidRequestMessage is what API clients see for screening.ErrInvalidRequest.
const invalidRequestMessage = "Please provide a job description and at least one resume."

func (s *Server) respondServiceError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, screening.ErrInvalidRequest):
		s.respondError(w, http.StatusBadRequest, invalidRequestMessage)
	case errors.Is(err, indexer.ErrEmptyText):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error(msg, zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
