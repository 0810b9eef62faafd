package embedding

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/hyperjump/screener/pkg/utils"
)

// FallbackVector derives a deterministic unit vector of the given dimension from text.
// Seed bytes come from sha256(sha256(text) || uint16_be(i)) for i = 0, 1, ...; each byte
// becomes one component in [0, 255] before L2 normalization. Empty text maps to the zero vector.
func FallbackVector(text string, dimensions int) []float32 {
	vec := make([]float32, dimensions)
	if text == "" || dimensions <= 0 {
		return vec
	}
	h := sha256.Sum256([]byte(text))
	seed := make([]byte, len(h)+2)
	copy(seed, h[:])

	n := 0
	for i := 0; n < dimensions; i++ {
		binary.BigEndian.PutUint16(seed[len(h):], uint16(i))
		block := sha256.Sum256(seed)
		for _, b := range block {
			if n == dimensions {
				break
			}
			vec[n] = float32(b)
			n++
		}
	}
	utils.NormalizeL2(vec)
	return vec
}
