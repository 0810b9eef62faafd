package config

// DefaultExplainModels are the generative models a caller may pick for explanations.
var DefaultExplainModels = []string{"gpt-4o-mini", "gpt-4o", "text-davinci-003"}

// ApplyDefaults sets default values for any zero values in cfg.
// Relative storage paths without a "./" prefix resolve under the home directory.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = ".screener/data/db/candidates.db"
	}
	if cfg.Storage.BleveIndexPath == "" {
		cfg.Storage.BleveIndexPath = ".screener/data/indices/bleve"
	}
	if cfg.Storage.VectorStorePath == "" {
		cfg.Storage.VectorStorePath = ".screener/data/indices/chromem"
	}
	if cfg.Storage.EmbeddingCachePath == "" {
		cfg.Storage.EmbeddingCachePath = ".screener/data/embeddings_cache.gob"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "openai"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-3-small"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxRetries == 0 {
		cfg.Embedding.MaxRetries = 3
	}
	if cfg.Embedding.RequestsPerSecond == 0 {
		cfg.Embedding.RequestsPerSecond = 5
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Vector.IndexType == "" {
		cfg.Vector.IndexType = "chromem"
	}
	if cfg.Vector.Collection == "" {
		cfg.Vector.Collection = "resumes"
	}
	if cfg.Ranking.DefaultTopK == 0 {
		cfg.Ranking.DefaultTopK = 5
	}
	if cfg.Ranking.MaxTopK == 0 {
		cfg.Ranking.MaxTopK = 20
	}
	if cfg.Ranking.OverfetchFactor == 0 {
		cfg.Ranking.OverfetchFactor = 5
	}
	if cfg.Ranking.BoostPerYear == 0 {
		cfg.Ranking.BoostPerYear = 0.01
	}
	if cfg.Ranking.MaxBoost == 0 {
		cfg.Ranking.MaxBoost = 0.2
	}
	if cfg.Explain.Model == "" {
		cfg.Explain.Model = DefaultExplainModels[0]
	}
	if len(cfg.Explain.AllowedModels) == 0 {
		cfg.Explain.AllowedModels = append([]string(nil), DefaultExplainModels...)
	}
	if cfg.Explain.MaxTokens == 0 {
		cfg.Explain.MaxTokens = 200
	}
	if cfg.Explain.Temperature == 0 {
		cfg.Explain.Temperature = 0.1
	}
	if cfg.Explain.RequestsPerSecond == 0 {
		cfg.Explain.RequestsPerSecond = 2
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".pdf", ".docx", ".txt", ".md", ".odt", ".rtf"}
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
