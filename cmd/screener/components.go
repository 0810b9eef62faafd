package main

import (
	"fmt"
	"strings"

	"github.com/hyperjump/screener/internal/config"
	"github.com/hyperjump/screener/internal/embedding"
	"github.com/hyperjump/screener/internal/explain"
	"github.com/hyperjump/screener/internal/extract"
	"github.com/hyperjump/screener/internal/indexer"
	"github.com/hyperjump/screener/internal/keyword"
	"github.com/hyperjump/screener/internal/ranking"
	"github.com/hyperjump/screener/internal/screening"
	"github.com/hyperjump/screener/internal/storage"
	"github.com/hyperjump/screener/internal/vector"
	"go.uber.org/zap"
)

// Components holds initialized application components.
type Components struct {
	Storage      storage.Storage
	Cache        *embedding.Cache
	Provider     *embedding.Provider
	VectorIndex  vector.Index
	KeywordIndex keyword.KeywordIndex
	Explainer    *explain.Explainer
	Indexer      *indexer.Indexer
	Screening    *screening.Service
}

// Close releases all components. Errors are ignored.
func (c *Components) Close() {
	if c.KeywordIndex != nil {
		_ = c.KeywordIndex.Close()
	}
	if c.VectorIndex != nil {
		_ = c.VectorIndex.Close()
	}
	if c.Provider != nil {
		_ = c.Provider.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

// newRemote picks the remote embedding backend for cfg. A nil Remote means
// every embedding comes from the local fallback.
func newRemote(cfg *config.Config, logger *zap.Logger) embedding.Remote {
	if cfg.Offline {
		return nil
	}
	switch strings.ToLower(cfg.Embedding.Provider) {
	case "onnx":
		r, err := embedding.NewONNXRemote(cfg.Embedding.ModelPath, cfg.Embedding.Dimensions, cfg.Embedding.MaxTokens)
		if err != nil {
			logger.Warn("onnx embeddings unavailable, using fallback", zap.Error(err))
			return nil
		}
		return r
	case "openai", "":
		if cfg.OpenAI.APIKey == "" {
			logger.Debug("OPENAI_API_KEY not set, using fallback embeddings")
			return nil
		}
		r, err := embedding.NewOpenAIRemote(embedding.OpenAIConfig{
			APIKey:            cfg.OpenAI.APIKey,
			BaseURL:           cfg.OpenAI.BaseURL,
			Model:             cfg.Embedding.Model,
			RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
		})
		if err != nil {
			logger.Warn("openai embeddings unavailable, using fallback", zap.Error(err))
			return nil
		}
		return r
	default:
		return nil
	}
}

func newExplainer(cfg *config.Config, metrics *screening.Metrics, logger *zap.Logger) *explain.Explainer {
	opts := []explain.Option{
		explain.WithModels(cfg.Explain.Model, cfg.Explain.AllowedModels),
		explain.WithSampling(cfg.Explain.MaxTokens, cfg.Explain.Temperature),
		explain.WithOffline(cfg.Offline),
		explain.WithObserver(metrics.ObserveExplanation),
		explain.WithLogger(logger),
	}
	if cfg.RemoteEnabled() {
		gen, err := explain.NewOpenAIGenerator(explain.OpenAIConfig{
			APIKey:            cfg.OpenAI.APIKey,
			BaseURL:           cfg.OpenAI.BaseURL,
			Model:             cfg.Explain.Model,
			RequestsPerSecond: cfg.Explain.RequestsPerSecond,
		})
		if err != nil {
			logger.Warn("explanation generator unavailable, using heuristic", zap.Error(err))
		} else {
			opts = append(opts, explain.WithGenerator(gen))
		}
	}
	return explain.New(opts...)
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	c := &Components{}
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	c.Storage = store

	metrics := screening.NewMetrics()
	c.Cache = embedding.NewCache(cfg.Storage.EmbeddingCachePath, embedding.WithCacheLogger(logger))
	providerOpts := []embedding.ProviderOption{
		embedding.WithMaxRetries(cfg.Embedding.MaxRetries),
		embedding.WithOffline(cfg.Offline),
		embedding.WithLogger(logger),
		embedding.WithObserver(metrics.ObserveEmbedding),
	}
	if remote := newRemote(cfg, logger); remote != nil {
		providerOpts = append(providerOpts, embedding.WithRemote(remote))
	}
	c.Provider = embedding.NewProvider(c.Cache, cfg.Embedding.Dimensions, providerOpts...)

	vectorIndex, err := vector.NewIndex(cfg.Vector.IndexType, vector.Options{
		Dimensions: cfg.Embedding.Dimensions,
		Path:       cfg.Storage.VectorStorePath,
		Collection: cfg.Vector.Collection,
		Compress:   cfg.Vector.Compress,
		Logger:     logger,
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize vector index: %w", err)
	}
	c.VectorIndex = vectorIndex
	logger.Debug("vector index initialized", zap.String("type", cfg.Vector.IndexType))

	keywordIndex, err := keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
	}
	c.KeywordIndex = keywordIndex

	ranker := ranking.NewRanker(&ranking.RankingConfig{
		OverfetchFactor: cfg.Ranking.OverfetchFactor,
		BoostPerYear:    cfg.Ranking.BoostPerYear,
		MaxBoost:        cfg.Ranking.MaxBoost,
	})
	c.Explainer = newExplainer(cfg, metrics, logger)

	c.Indexer = indexer.NewIndexer(store, keywordIndex, extract.NewExtractor(),
		indexer.WithLogger(logger),
		indexer.WithWarmer(c.Provider),
	)
	c.Screening = screening.NewService(c.Provider, vectorIndex, ranker, c.Explainer,
		screening.Config{
			DefaultTopK: cfg.Ranking.DefaultTopK,
			MaxTopK:     cfg.Ranking.MaxTopK,
		},
		screening.WithStorage(store),
		screening.WithLogger(logger),
		screening.WithMetrics(metrics),
	)
	return c, nil
}
