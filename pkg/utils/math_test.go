package utils

import (
	"math"
	"testing"
)

func TestNormalizeL2(t *testing.T) {
	v := []float32{3, 4}
	NormalizeL2(v)
	if math.Abs(float64(v[0])-0.6) > 1e-6 || math.Abs(float64(v[1])-0.8) > 1e-6 {
		t.Errorf("got %v, want [0.6 0.8]", v)
	}
	if n := L2Norm(v); math.Abs(n-1) > 1e-6 {
		t.Errorf("norm after normalize = %f", n)
	}

	zero := []float32{0, 0, 0}
	NormalizeL2(zero)
	if !IsZero(zero) {
		t.Errorf("zero vector should stay zero, got %v", zero)
	}
}
