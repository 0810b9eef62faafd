package ranking

// RankingConfig holds re-ranking settings.
type RankingConfig struct {
	// OverfetchFactor multiplies topK when querying the index. default: 5
	OverfetchFactor int `yaml:"overfetch_factor"`
	// BoostPerYear is added per year of experience found in the candidate text. default: 0.01
	BoostPerYear float64 `yaml:"boost_per_year"`
	// MaxBoost caps the years boost. default: 0.2
	MaxBoost float64 `yaml:"max_boost"`
}

// DefaultRankingConfig returns the default ranking configuration.
func DefaultRankingConfig() *RankingConfig {
	return &RankingConfig{
		OverfetchFactor: 5,
		BoostPerYear:    0.01,
		MaxBoost:        0.2,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *RankingConfig) ApplyDefaults() {
	defaults := DefaultRankingConfig()
	if c.OverfetchFactor <= 0 {
		c.OverfetchFactor = defaults.OverfetchFactor
	}
	if c.BoostPerYear == 0 {
		c.BoostPerYear = defaults.BoostPerYear
	}
	if c.MaxBoost == 0 {
		c.MaxBoost = defaults.MaxBoost
	}
}
