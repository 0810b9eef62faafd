package vector

import (
	"fmt"
	"math"
	"strconv"
)

// rawHit is a backend hit before normalization. Backends disagree on field types,
// so everything except the document is untyped.
type rawHit struct {
	ID        string
	Distance  any
	Embedding any
	Metadata  any
	Document  string
}

// normalizeHits maps raw hits into candidates. Unusable distances score 0, unusable
// embeddings are dropped and a missing ID is taken from the metadata.
func normalizeHits(hits []rawHit) []Candidate {
	out := make([]Candidate, 0, len(hits))
	for _, h := range hits {
		meta := toStringMap(h.Metadata)
		id := h.ID
		if id == "" {
			id = meta[MetadataID]
		}
		out = append(out, Candidate{
			ID:        id,
			Score:     scoreFromDistance(h.Distance),
			Metadata:  meta,
			Document:  h.Document,
			Embedding: toFloat32s(h.Embedding),
		})
	}
	return out
}

func scoreFromDistance(d any) float64 {
	var dist float64
	switch v := d.(type) {
	case float64:
		dist = v
	case float32:
		dist = float64(v)
	case int:
		dist = float64(v)
	case int64:
		dist = float64(v)
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		dist = f
	default:
		return 0
	}
	if math.IsNaN(dist) || math.IsInf(dist, 0) {
		return 0
	}
	return 1 - dist
}

// toFloat32s flattens the embedding shapes backends return. Vectors containing NaN
// (chromem normalizing a zero vector) are treated as missing.
func toFloat32s(e any) []float32 {
	var out []float32
	switch v := e.(type) {
	case []float32:
		out = append(out, v...)
	case []float64:
		out = make([]float32, len(v))
		for i, f := range v {
			out[i] = float32(f)
		}
	case [][]float32:
		for _, row := range v {
			out = append(out, row...)
		}
	case [][]float64:
		for _, row := range v {
			for _, f := range row {
				out = append(out, float32(f))
			}
		}
	default:
		return nil
	}
	if len(out) == 0 {
		return nil
	}
	for _, f := range out {
		if math.IsNaN(float64(f)) {
			return nil
		}
	}
	return out
}

func toStringMap(m any) map[string]string {
	out := make(map[string]string)
	switch v := m.(type) {
	case map[string]string:
		for k, s := range v {
			out[k] = s
		}
	case map[string]any:
		for k, s := range v {
			if s == nil {
				continue
			}
			out[k] = fmt.Sprint(s)
		}
	}
	return out
}

func copyMetadata(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
