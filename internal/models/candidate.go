// Package models defines core data structures for candidates, screening requests and results.
package models

import "time"

// Candidate sources.
const (
	SourceAPI    = "api"
	SourceFile   = "file"
	SourceUpload = "upload"
)

// Candidate is a stored resume. ID is unique (usually the file name); storing the
// same ID again overwrites the record.
type Candidate struct {
	ID        string            `json:"id" db:"id"`
	Text      string            `json:"text" db:"text"`
	Source    string            `json:"source" db:"source"`
	Path      string            `json:"path,omitempty" db:"path"`
	Metadata  map[string]string `json:"metadata,omitempty" db:"metadata"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt time.Time         `json:"updated_at" db:"updated_at"`
}

// CandidateInput is the input for creating or replacing a candidate.
type CandidateInput struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// CandidateHit is a keyword search hit over stored candidates.
type CandidateHit struct {
	ID      string  `json:"id"`
	Score   float64 `json:"score"`
	Snippet string  `json:"snippet"`
}
