package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"
)

// DefaultOpenAIModel is the remote embedding model used when none is configured.
const DefaultOpenAIModel = "text-embedding-3-small"

// ErrMissingAPIKey is returned when a remote backend is built without credentials.
var ErrMissingAPIKey = errors.New("missing API key")

// OpenAIConfig configures the OpenAI-compatible embedding backend.
type OpenAIConfig struct {
	APIKey            string
	BaseURL           string
	Model             string
	RequestsPerSecond float64
}

// OpenAIRemote embeds text through an OpenAI-compatible endpoint.
type OpenAIRemote struct {
	embedder *embeddings.EmbedderImpl
	limiter  *rate.Limiter
	model    string
}

// NewOpenAIRemote creates the remote backend. It does not contact the service.
func NewOpenAIRemote(cfg OpenAIConfig) (*OpenAIRemote, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithEmbeddingModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm, embeddings.WithStripNewLines(false))
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	return &OpenAIRemote{
		embedder: embedder,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		model:    cfg.Model,
	}, nil
}

// EmbedQuery returns the remote embedding for text.
func (o *OpenAIRemote) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}
	vec, err := o.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding with %s: %w", o.model, err)
	}
	if len(vec) == 0 {
		return nil, ErrMalformedEmbedding
	}
	return vec, nil
}
