// Package ranking re-scores vector index candidates against a query embedding.
package ranking

// SimilarityPath records where a result's similarity came from.
type SimilarityPath string

const (
	// PathExact means similarity is the exact cosine of query and stored embedding.
	PathExact SimilarityPath = "exact"
	// PathIndex means the stored embedding was unavailable and the index score was used.
	PathIndex SimilarityPath = "index"
)

// ScoreBreakdown shows how a result's score was computed.
type ScoreBreakdown struct {
	Similarity float64            `json:"similarity"`
	Boosts     map[string]float64 `json:"boosts"`
	Path       SimilarityPath     `json:"path"`
}

// RankedResult is a scored candidate. Score is similarity plus boost and is not a probability.
type RankedResult struct {
	ID         string            `json:"id"`
	Score      float64           `json:"score"`
	Similarity float64           `json:"similarity"`
	Boost      float64           `json:"boost"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Document   string            `json:"-"`
	Breakdown  *ScoreBreakdown   `json:"breakdown,omitempty"`
}

// Text returns metadata "text" when set, else the document text.
func (r *RankedResult) Text() string {
	if t := r.Metadata["text"]; t != "" {
		return t
	}
	return r.Document
}
