package screening

import (
	"context"
	"testing"

	"github.com/hyperjump/screener/internal/embedding"
	"github.com/hyperjump/screener/internal/explain"
	"github.com/hyperjump/screener/internal/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_singleton(t *testing.T) {
	assert.Same(t, NewMetrics(), NewMetrics())
}

func TestMetrics_observers(t *testing.T) {
	m := NewMetrics()
	fallback := m.EmbeddingsTotal.WithLabelValues("fallback")
	heuristic := m.ExplanationsTotal.WithLabelValues("heuristic")
	beforeEmb := testutil.ToFloat64(fallback)
	beforeExp := testutil.ToFloat64(heuristic)

	m.ObserveEmbedding(embedding.SourceFallback)
	m.ObserveExplanation(explain.SourceHeuristic)

	assert.Equal(t, beforeEmb+1, testutil.ToFloat64(fallback))
	assert.Equal(t, beforeExp+1, testutil.ToFloat64(heuristic))
}

func TestService_recordsRunMetrics(t *testing.T) {
	m := NewMetrics()
	ok := m.RunsTotal.WithLabelValues(statusOK)
	invalid := m.RunsTotal.WithLabelValues(statusInvalid)
	beforeOK, beforeInvalid := testutil.ToFloat64(ok), testutil.ToFloat64(invalid)

	svc, _ := newTestService(t, WithMetrics(m))
	_, err := svc.Screen(context.Background(), &models.ScreenRequest{QueryText: jd, Resumes: []models.Resume{{Text: resumeA}}})
	require.NoError(t, err)
	_, err = svc.Screen(context.Background(), &models.ScreenRequest{QueryText: jd})
	require.Error(t, err)

	assert.Equal(t, beforeOK+1, testutil.ToFloat64(ok))
	assert.Equal(t, beforeInvalid+1, testutil.ToFloat64(invalid))
}
