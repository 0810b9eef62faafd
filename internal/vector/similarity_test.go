package vector

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"scaled", []float32{1, 1}, []float32{5, 5}, 1},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"length mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("CosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineSimilarity_symmetricAndBounded(t *testing.T) {
	vectors := [][]float32{
		{0.3, -0.2, 0.9},
		{1, 1, 1},
		{-5, 2, 0.5},
		{0.001, 0, 0},
	}
	for _, a := range vectors {
		for _, b := range vectors {
			ab, ba := CosineSimilarity(a, b), CosineSimilarity(b, a)
			if math.Abs(ab-ba) > 1e-9 {
				t.Errorf("not symmetric: %v vs %v", ab, ba)
			}
			if ab < -1 || ab > 1 {
				t.Errorf("out of bounds: %v", ab)
			}
		}
		if self := CosineSimilarity(a, a); math.Abs(self-1) > 1e-6 {
			t.Errorf("self similarity = %v", self)
		}
	}
}

func TestInnerProduct(t *testing.T) {
	if got := InnerProduct([]float32{1, 2}, []float32{3, 4}); got != 11 {
		t.Errorf("InnerProduct = %v, want 11", got)
	}
	if got := InnerProduct([]float32{1}, []float32{1, 2}); got != 0 {
		t.Errorf("mismatch should be 0, got %v", got)
	}
}
