package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidRequest is returned when a screening request has no job description or no resumes.
var ErrInvalidRequest = errors.New("job description and at least one resume are required")

// Resume is one resume submitted for screening.
type Resume struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// ScreenRequest asks for the resumes that best match a job description.
type ScreenRequest struct {
	QueryText string   `json:"query_text"`
	Resumes   []Resume `json:"resumes"`
	TopK      int      `json:"top_k,omitempty"`
	Explain   bool     `json:"explain,omitempty"`
	Model     string   `json:"model,omitempty"`
	// Offline forces the deterministic fallbacks for this request.
	Offline bool `json:"offline,omitempty"`
}

// Validate checks the request and normalizes it: TopK is clamped to 1..maxTopK
// (0 means defaultTopK) and resumes without an ID are named "resume-<n>".
func (r *ScreenRequest) Validate(defaultTopK, maxTopK int) error {
	if strings.TrimSpace(r.QueryText) == "" || len(r.Resumes) == 0 {
		return ErrInvalidRequest
	}
	switch {
	case r.TopK == 0:
		r.TopK = defaultTopK
	case r.TopK < 1:
		r.TopK = 1
	}
	if maxTopK > 0 && r.TopK > maxTopK {
		r.TopK = maxTopK
	}
	for i := range r.Resumes {
		if r.Resumes[i].ID == "" {
			r.Resumes[i].ID = fmt.Sprintf("resume-%d", i+1)
		}
	}
	return nil
}

// ScreenResult is one ranked resume.
type ScreenResult struct {
	Rank        int                `json:"rank"`
	ID          string             `json:"id"`
	Score       float64            `json:"score"`
	Similarity  float64            `json:"similarity"`
	Boost       float64            `json:"boost"`
	Snippet     string             `json:"snippet"`
	Explanation string             `json:"explanation,omitempty"`
	Boosts      map[string]float64 `json:"boosts,omitempty"`
	Path        string             `json:"path,omitempty"`
}

// ScreenResponse is the response for a screening run.
type ScreenResponse struct {
	RunID      string          `json:"run_id"`
	Results    []*ScreenResult `json:"results"`
	Total      int             `json:"total"`
	Candidates int             `json:"candidates"`
	Offline    bool            `json:"offline"`
	TookMs     int64           `json:"took_ms"`
}

// ExplainRequest asks for a rationale for one resume.
type ExplainRequest struct {
	QueryText string `json:"query_text"`
	Resume    string `json:"resume"`
	Model     string `json:"model,omitempty"`
	Offline   bool   `json:"offline,omitempty"`
}

// ExplainResponse carries the rationale.
type ExplainResponse struct {
	Explanation string `json:"explanation"`
}

// Run is a stored screening run.
type Run struct {
	ID        string          `json:"id"`
	QueryText string          `json:"query_text"`
	TopK      int             `json:"top_k"`
	Offline   bool            `json:"offline"`
	Results   []*ScreenResult `json:"results"`
	CreatedAt time.Time       `json:"created_at"`
}
