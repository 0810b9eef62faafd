package ranking

import (
	"math"
	"strconv"
	"testing"
)

func TestParseYears(t *testing.T) {
	tests := []struct {
		text  string
		years int
		ok    bool
	}{
		{"3 years of experience", 3, true},
		{"10+ years Go", 10, true},
		{"Over 7 YEARS in backend", 7, true},
		{"5 years then 12 years", 5, true},
		{"100 years", 0, true},
		{"three years", 0, false},
		{"", 0, false},
		{"10years", 0, false},
	}
	for _, tt := range tests {
		years, ok := ParseYears(tt.text)
		if years != tt.years || ok != tt.ok {
			t.Errorf("ParseYears(%q) = %d, %v; want %d, %v", tt.text, years, ok, tt.years, tt.ok)
		}
	}
}

func TestYearsBooster_Boost(t *testing.T) {
	b := NewYearsBooster(DefaultRankingConfig())
	tests := []struct {
		text string
		want float64
	}{
		{"3 years", 0.03},
		{"25 years", 0.2},
		{"20 years", 0.2},
		{"no experience stated", 0},
	}
	for _, tt := range tests {
		if got := b.Boost(tt.text); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Boost(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestYearsBooster_monotoneAndCapped(t *testing.T) {
	b := NewYearsBooster(DefaultRankingConfig())
	prev := -1.0
	for years := 0; years < 100; years++ {
		got := b.Boost(strconv.Itoa(years) + " years")
		if got < prev {
			t.Fatalf("boost decreased at %d years: %v < %v", years, got, prev)
		}
		if got > 0.2 {
			t.Fatalf("boost above cap at %d years: %v", years, got)
		}
		prev = got
	}
}

func TestYearsBooster_Name(t *testing.T) {
	if NewYearsBooster(DefaultRankingConfig()).Name() != "years" {
		t.Error("Expected name 'years'")
	}
}
