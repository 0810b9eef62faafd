package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hyperjump/screener/pkg/utils"
	"go.uber.org/zap"
)

const (
	// DefaultDimensions is the fixed embedding dimension used when none is configured.
	DefaultDimensions = 384
	// DefaultMaxRetries is the number of remote attempts before falling back.
	DefaultMaxRetries = 3
)

// ErrMalformedEmbedding is returned for remote responses that cannot be used as a vector of the configured dimension.
var ErrMalformedEmbedding = errors.New("malformed embedding response")

// Provider resolves text to a vector of fixed dimension: cache first, then the
// remote backend with exponential backoff, then the deterministic fallback.
// Embed never fails; whichever path produced the vector, it is cached.
type Provider struct {
	cache      *Cache
	remote     Remote
	dimensions int
	maxRetries int
	offline    bool
	sleep      func(ctx context.Context, d time.Duration)
	logger     *zap.Logger
	observe    func(Source)
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithRemote sets the remote backend. Without one the provider is fallback-only.
func WithRemote(r Remote) ProviderOption {
	return func(p *Provider) { p.remote = r }
}

// WithMaxRetries sets the number of remote attempts (default 3).
func WithMaxRetries(n int) ProviderOption {
	return func(p *Provider) {
		if n > 0 {
			p.maxRetries = n
		}
	}
}

// WithOffline forces the deterministic fallback even when a remote is configured.
func WithOffline(offline bool) ProviderOption {
	return func(p *Provider) { p.offline = offline }
}

// WithSleep replaces the backoff sleep; tests use it to avoid real delays.
func WithSleep(fn func(ctx context.Context, d time.Duration)) ProviderOption {
	return func(p *Provider) { p.sleep = fn }
}

// WithLogger sets a logger for retry and fallback events.
func WithLogger(l *zap.Logger) ProviderOption {
	return func(p *Provider) { p.logger = l }
}

// WithObserver registers a callback invoked with the source of every resolved vector.
func WithObserver(fn func(Source)) ProviderOption {
	return func(p *Provider) { p.observe = fn }
}

// NewProvider returns a provider that stores results in cache. A nil cache is replaced
// by a memory-only one.
func NewProvider(cache *Cache, dimensions int, opts ...ProviderOption) *Provider {
	if cache == nil {
		cache = NewCache("")
	}
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	p := &Provider{
		cache:      cache,
		dimensions: dimensions,
		maxRetries: DefaultMaxRetries,
		sleep:      sleepContext,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = utils.OrNop(p.logger)
	return p
}

// Embed returns the vector for text. The error is always nil.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	return p.EmbedWithSource(ctx, text).Vector, nil
}

// EmbedWithSource returns the vector for text tagged with the path that produced it.
func (p *Provider) EmbedWithSource(ctx context.Context, text string) Result {
	res := p.resolve(ctx, text)
	if p.observe != nil {
		p.observe(res.Source)
	}
	return res
}

// EmbedBatch calls Embed for each text in order.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i], _ = p.Embed(ctx, text)
	}
	return embeddings, nil
}

// Dimensions returns the embedding dimension.
func (p *Provider) Dimensions() int {
	return p.dimensions
}

// Close releases the remote backend when it holds resources.
func (p *Provider) Close() error {
	if c, ok := p.remote.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// Cache returns the provider's cache.
func (p *Provider) Cache() *Cache {
	return p.cache
}

// RemoteEnabled reports whether a remote backend will be attempted.
func (p *Provider) RemoteEnabled() bool {
	return p.remote != nil && !p.offline
}

// Offline returns a copy of p that never calls the remote backend. The copy shares
// the cache and the observer.
func (p *Provider) Offline() *Provider {
	cp := *p
	cp.offline = true
	return &cp
}

func (p *Provider) resolve(ctx context.Context, text string) Result {
	if cached, ok := p.cache.Get(text); ok && len(cached) > 0 {
		return Result{Vector: cached, Source: SourceCache}
	}

	if p.RemoteEnabled() {
		vec, err := p.embedRemote(ctx, text)
		if err == nil {
			p.cache.Set(text, vec)
			return Result{Vector: vec, Source: SourceRemote}
		}
		p.logger.Warn("remote embedding failed after retries, using deterministic fallback",
			zap.Int("attempts", p.maxRetries), zap.Error(err))
	}

	vec := FallbackVector(text, p.dimensions)
	p.cache.Set(text, vec)
	return Result{Vector: vec, Source: SourceFallback}
}

// embedRemote calls the remote backend up to maxRetries times, sleeping 2^attempt
// seconds after each failure.
func (p *Provider) embedRemote(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	for attempt := 0; attempt < p.maxRetries; attempt++ {
		vec, err := p.remote.EmbedQuery(ctx, text)
		if err == nil {
			vec, err = p.fitDimensions(vec)
		}
		if err == nil {
			return vec, nil
		}
		lastErr = err
		p.logger.Warn("remote embedding attempt failed",
			zap.Int("attempt", attempt+1), zap.Int("max_retries", p.maxRetries), zap.Error(err))
		if ctx.Err() != nil {
			break
		}
		p.sleep(ctx, time.Duration(1<<attempt)*time.Second)
	}
	return nil, lastErr
}

// fitDimensions truncates longer vectors to the configured dimension and renormalizes them.
// Shorter or empty vectors are malformed.
func (p *Provider) fitDimensions(vec []float32) ([]float32, error) {
	switch {
	case len(vec) == p.dimensions:
		return vec, nil
	case len(vec) > p.dimensions:
		out := make([]float32, p.dimensions)
		copy(out, vec)
		utils.NormalizeL2(out)
		return out, nil
	default:
		return nil, fmt.Errorf("%w: got %d values, want %d", ErrMalformedEmbedding, len(vec), p.dimensions)
	}
}

func sleepContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
