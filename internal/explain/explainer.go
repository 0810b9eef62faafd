// Package explain produces short rationales for why a candidate matches a job description.
package explain

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperjump/screener/pkg/utils"
	"go.uber.org/zap"
)

// InsufficientInformation is returned when either text is empty.
const InsufficientInformation = "Insufficient information to explain."

// DefaultModel is the generative model used when none is requested.
const DefaultModel = "gpt-4o-mini"

// Source records which path produced an explanation.
type Source string

const (
	SourceNone      Source = "none"
	SourceRemote    Source = "remote"
	SourceHeuristic Source = "heuristic"
)

// Explainer prefers a remote generator and falls back to the keyword heuristic.
// Explain never fails and never retries.
type Explainer struct {
	generator    Generator
	offline      bool
	defaultModel string
	allowed      map[string]bool
	maxTokens    int
	temperature  float64
	logger       *zap.Logger
	observe      func(Source)
}

// Option configures an Explainer.
type Option func(*Explainer)

// WithGenerator sets the remote generator. Without one only the heuristic is used.
func WithGenerator(g Generator) Option {
	return func(e *Explainer) { e.generator = g }
}

// WithOffline forces the heuristic.
func WithOffline(offline bool) Option {
	return func(e *Explainer) { e.offline = offline }
}

// WithModels sets the default model and the models callers may request.
func WithModels(defaultModel string, allowed []string) Option {
	return func(e *Explainer) {
		if defaultModel != "" {
			e.defaultModel = defaultModel
		}
		if len(allowed) > 0 {
			e.allowed = make(map[string]bool, len(allowed))
			for _, m := range allowed {
				e.allowed[m] = true
			}
		}
	}
}

// WithSampling sets max tokens and temperature for remote calls.
func WithSampling(maxTokens int, temperature float64) Option {
	return func(e *Explainer) {
		if maxTokens > 0 {
			e.maxTokens = maxTokens
		}
		e.temperature = temperature
	}
}

// WithLogger sets a logger for remote failures.
func WithLogger(l *zap.Logger) Option {
	return func(e *Explainer) { e.logger = l }
}

// WithObserver registers a callback invoked with the source of every explanation.
func WithObserver(fn func(Source)) Option {
	return func(e *Explainer) { e.observe = fn }
}

// New creates an Explainer.
func New(opts ...Option) *Explainer {
	e := &Explainer{
		defaultModel: DefaultModel,
		allowed:      map[string]bool{"gpt-4o-mini": true, "gpt-4o": true, "text-davinci-003": true},
		maxTokens:    200,
		temperature:  0.1,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = utils.OrNop(e.logger)
	return e
}

// RemoteEnabled reports whether Explain will try the generator.
func (e *Explainer) RemoteEnabled() bool {
	return e.generator != nil && !e.offline
}

// Offline returns a copy of e that only uses the heuristic.
func (e *Explainer) Offline() *Explainer {
	cp := *e
	cp.offline = true
	return &cp
}

// ResolveModel returns model when it is allowed and the default otherwise.
func (e *Explainer) ResolveModel(model string) string {
	if model != "" && e.allowed[model] {
		return model
	}
	return e.defaultModel
}

// Explain returns a short rationale for candidateText against queryText.
func (e *Explainer) Explain(ctx context.Context, queryText, candidateText, model string) string {
	text, src := e.explain(ctx, queryText, candidateText, model)
	if e.observe != nil {
		e.observe(src)
	}
	return text
}

func (e *Explainer) explain(ctx context.Context, queryText, candidateText, model string) (string, Source) {
	if queryText == "" || candidateText == "" {
		return InsufficientInformation, SourceNone
	}
	if !e.RemoteEnabled() {
		return Heuristic(queryText, candidateText), SourceHeuristic
	}

	model = e.ResolveModel(model)
	out, err := e.generator.Generate(ctx, BuildPrompt(queryText, candidateText), GenerateOptions{
		Model:       model,
		MaxTokens:   e.maxTokens,
		Temperature: e.temperature,
	})
	if err == nil {
		out = strings.TrimSpace(out)
	}
	if err != nil || out == "" {
		if err == nil {
			err = fmt.Errorf("empty response")
		}
		e.logger.Warn("remote explanation failed, falling back to heuristic",
			zap.String("model", model), zap.Error(err))
		return Heuristic(queryText, candidateText), SourceHeuristic
	}
	return out, SourceRemote
}

// BuildPrompt returns the generation prompt for a job description and resume.
func BuildPrompt(jobDescription, resume string) string {
	return "Given the job description:\n" + jobDescription +
		"\n\nCandidate resume:\n" + resume +
		"\n\nIn 2-3 lines, explain why candidate is a good or poor match."
}
