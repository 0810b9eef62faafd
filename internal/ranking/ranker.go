package ranking

import (
	"context"
	"fmt"
	"sort"

	"github.com/hyperjump/screener/internal/vector"
)

// Ranker overfetches candidates from an index and re-scores them by exact cosine
// similarity plus boosts.
type Ranker struct {
	config   *RankingConfig
	boosters []Booster
}

// NewRanker creates a new Ranker with the given configuration.
func NewRanker(config *RankingConfig) *Ranker {
	if config == nil {
		config = DefaultRankingConfig()
	}
	config.ApplyDefaults()

	return &Ranker{
		config:   config,
		boosters: DefaultBoosters(config),
	}
}

// WithBoosters sets custom boosters.
func (r *Ranker) WithBoosters(boosters []Booster) *Ranker {
	r.boosters = boosters
	return r
}

// GetConfig returns the ranking configuration.
func (r *Ranker) GetConfig() *RankingConfig {
	return r.config
}

// Rank returns at most topK results for query, best first. Ties keep index order.
func (r *Ranker) Rank(ctx context.Context, query []float32, index vector.Index, topK int) ([]*RankedResult, error) {
	if topK <= 0 {
		return []*RankedResult{}, nil
	}
	candidates, err := index.Query(ctx, query, topK*r.config.OverfetchFactor)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	results := make([]*RankedResult, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, r.score(query, c))
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return TopN(results, topK), nil
}

func (r *Ranker) score(query []float32, c vector.Candidate) *RankedResult {
	text := c.Text()

	breakdown := &ScoreBreakdown{Boosts: make(map[string]float64, len(r.boosters))}
	var boost float64
	for _, b := range r.boosters {
		v := b.Boost(text)
		breakdown.Boosts[b.Name()] = v
		boost += v
	}

	if len(query) > 0 && len(c.Embedding) > 0 {
		breakdown.Similarity = vector.CosineSimilarity(query, c.Embedding)
		breakdown.Path = PathExact
	} else {
		breakdown.Similarity = c.Score
		breakdown.Path = PathIndex
	}

	return &RankedResult{
		ID:         c.ID,
		Score:      breakdown.Similarity + boost,
		Similarity: breakdown.Similarity,
		Boost:      boost,
		Metadata:   c.Metadata,
		Document:   c.Document,
		Breakdown:  breakdown,
	}
}

// TopN returns the top N results.
func TopN(results []*RankedResult, n int) []*RankedResult {
	if n >= len(results) {
		return results
	}
	return results[:n]
}
