package vector

import (
	"math"
	"testing"
)

func TestNormalizeHits_distanceShapes(t *testing.T) {
	hits := []rawHit{
		{ID: "f64", Distance: 0.25},
		{ID: "f32", Distance: float32(0.5)},
		{ID: "int", Distance: 1},
		{ID: "nil", Distance: nil},
		{ID: "nan", Distance: math.NaN()},
		{ID: "str", Distance: "0.1"},
		{ID: "bad", Distance: "far"},
	}
	want := map[string]float64{"f64": 0.75, "f32": 0.5, "int": 0, "nil": 0, "nan": 0, "str": 0.9, "bad": 0}
	for _, c := range normalizeHits(hits) {
		if math.Abs(c.Score-want[c.ID]) > 1e-6 {
			t.Errorf("%s: score %v, want %v", c.ID, c.Score, want[c.ID])
		}
	}
}

func TestNormalizeHits_embeddingShapes(t *testing.T) {
	hits := []rawHit{
		{ID: "a", Embedding: []float32{1, 2}},
		{ID: "b", Embedding: []float64{1, 2}},
		{ID: "c", Embedding: [][]float32{{1}, {2}}},
		{ID: "d", Embedding: []float32{float32(math.NaN()), 1}},
		{ID: "e", Embedding: "nope"},
		{ID: "f", Embedding: []float32{}},
	}
	got := normalizeHits(hits)
	for _, c := range got[:3] {
		if len(c.Embedding) != 2 || c.Embedding[0] != 1 || c.Embedding[1] != 2 {
			t.Errorf("%s: embedding %v", c.ID, c.Embedding)
		}
	}
	for _, c := range got[3:] {
		if c.Embedding != nil {
			t.Errorf("%s: expected nil embedding, got %v", c.ID, c.Embedding)
		}
	}
}

func TestNormalizeHits_metadata(t *testing.T) {
	hits := []rawHit{
		{Metadata: map[string]any{"id": "resume.pdf", "years": 5, "skip": nil}, Document: "doc"},
		{ID: "x", Metadata: map[string]string{"text": "hello"}},
		{ID: "y", Metadata: 42},
	}
	got := normalizeHits(hits)
	if got[0].ID != "resume.pdf" {
		t.Errorf("expected ID from metadata, got %q", got[0].ID)
	}
	if got[0].Metadata["years"] != "5" {
		t.Errorf("expected stringified metadata, got %v", got[0].Metadata)
	}
	if _, ok := got[0].Metadata["skip"]; ok {
		t.Error("nil metadata values should be dropped")
	}
	if got[1].Text() != "hello" {
		t.Errorf("Text() = %q", got[1].Text())
	}
	if got[0].Text() != "doc" {
		t.Errorf("Text() should fall back to document, got %q", got[0].Text())
	}
	if got[2].Metadata == nil || len(got[2].Metadata) != 0 {
		t.Errorf("unsupported metadata should become empty map, got %v", got[2].Metadata)
	}
}
