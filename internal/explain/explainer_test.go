package explain

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	calls  int
	out    string
	err    error
	prompt string
	opts   GenerateOptions
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	s.calls++
	s.prompt = prompt
	s.opts = opts
	return s.out, s.err
}

func TestExplain_insufficientInformation(t *testing.T) {
	gen := &stubGenerator{out: "great fit"}
	e := New(WithGenerator(gen))

	assert.Equal(t, InsufficientInformation, e.Explain(context.Background(), "", "resume", ""))
	assert.Equal(t, InsufficientInformation, e.Explain(context.Background(), "jd", "", ""))
	assert.Zero(t, gen.calls, "empty input must not reach the generator")
}

func TestExplain_whitespaceOnlyIsNotEmpty(t *testing.T) {
	e := New(WithOffline(true))

	got := e.Explain(context.Background(), "Go engineer", "   \n", "")
	assert.Equal(t, Heuristic("Go engineer", "   \n"), got)
	assert.NotEqual(t, InsufficientInformation, got)
}

func TestExplain_remote(t *testing.T) {
	gen := &stubGenerator{out: "  Strong Go background.\n"}
	e := New(WithGenerator(gen))

	got := e.Explain(context.Background(), "Go engineer", "5 years Go", "gpt-4o")
	assert.Equal(t, "Strong Go background.", got)
	require.Equal(t, 1, gen.calls)
	assert.Equal(t, "gpt-4o", gen.opts.Model)
	assert.Equal(t, 200, gen.opts.MaxTokens)
	assert.InDelta(t, 0.1, gen.opts.Temperature, 1e-9)
	assert.Equal(t, BuildPrompt("Go engineer", "5 years Go"), gen.prompt)
}

func TestExplain_unknownModelUsesDefault(t *testing.T) {
	gen := &stubGenerator{out: "ok"}
	e := New(WithGenerator(gen))
	e.Explain(context.Background(), "jd", "resume", "gpt-99")
	assert.Equal(t, DefaultModel, gen.opts.Model)
	assert.Equal(t, DefaultModel, e.ResolveModel(""))
	assert.Equal(t, "text-davinci-003", e.ResolveModel("text-davinci-003"))
}

func TestExplain_fallbackOnErrorWithoutRetry(t *testing.T) {
	gen := &stubGenerator{err: errors.New("rate limited")}
	var sources []Source
	e := New(WithGenerator(gen), WithObserver(func(s Source) { sources = append(sources, s) }))

	got := e.Explain(context.Background(), "Python developer", "Python developer, 4 years", "")
	assert.Equal(t, "4 years experience; matched keywords: python, developer.", got)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, []Source{SourceHeuristic}, sources)
}

func TestExplain_fallbackOnEmptyResponse(t *testing.T) {
	gen := &stubGenerator{out: "   "}
	e := New(WithGenerator(gen))
	got := e.Explain(context.Background(), "kubernetes", "kubernetes", "")
	assert.True(t, strings.HasPrefix(got, "years not specified"), got)
}

func TestExplain_offline(t *testing.T) {
	gen := &stubGenerator{out: "remote"}
	e := New(WithGenerator(gen), WithOffline(true))
	assert.False(t, e.RemoteEnabled())
	e.Explain(context.Background(), "jd text", "resume text", "")
	assert.Zero(t, gen.calls)
}

func TestExplain_offlineCopy(t *testing.T) {
	gen := &stubGenerator{out: "remote"}
	e := New(WithGenerator(gen))
	off := e.Offline()

	assert.True(t, e.RemoteEnabled())
	assert.False(t, off.RemoteEnabled())
	out := off.Explain(context.Background(), "golang engineer", "golang, 4 years", "")
	assert.Equal(t, "4 years experience; matched keywords: golang.", out)
	assert.Zero(t, gen.calls)
}

func TestWithModels(t *testing.T) {
	e := New(WithModels("gpt-4o", []string{"gpt-4o"}))
	assert.Equal(t, "gpt-4o", e.ResolveModel("gpt-4o-mini"))
}

func TestBuildPrompt(t *testing.T) {
	assert.Equal(t,
		"Given the job description:\nJD\n\nCandidate resume:\nCV\n\nIn 2-3 lines, explain why candidate is a good or poor match.",
		BuildPrompt("JD", "CV"))
}
