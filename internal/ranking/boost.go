package ranking

import (
	"math"
	"regexp"
	"strconv"
)

var yearsPattern = regexp.MustCompile(`(?i)(\d{1,2})\+?\s+years`)

// MatchYears returns the digits of the first "<N> years" or "<N>+ years" phrase of text.
func MatchYears(text string) (string, bool) {
	m := yearsPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ParseYears returns the number of years stated in text.
func ParseYears(text string) (int, bool) {
	digits, ok := MatchYears(text)
	if !ok {
		return 0, false
	}
	years, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return years, true
}

// Booster adds a bounded amount to a candidate's similarity.
type Booster interface {
	Name() string
	Boost(text string) float64
}

// YearsBooster rewards stated years of experience.
type YearsBooster struct {
	config *RankingConfig
}

// NewYearsBooster creates a new YearsBooster.
func NewYearsBooster(config *RankingConfig) *YearsBooster {
	return &YearsBooster{config: config}
}

// Name returns the booster name.
func (b *YearsBooster) Name() string {
	return "years"
}

// Boost returns min(MaxBoost, years * BoostPerYear), or 0 when no years are stated.
func (b *YearsBooster) Boost(text string) float64 {
	years, ok := ParseYears(text)
	if !ok {
		return 0
	}
	return math.Min(b.config.MaxBoost, float64(years)*b.config.BoostPerYear)
}

// DefaultBoosters returns the standard set of boosters.
func DefaultBoosters(config *RankingConfig) []Booster {
	return []Booster{NewYearsBooster(config)}
}
