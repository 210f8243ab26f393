package observability

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg).(*prometheusMetrics)
	ctx := context.Background()

	m.RecordOperationAttempt(ctx, "AppendMatch", "LadderService")
	m.RecordOperationAttempt(ctx, "AppendMatch", "LadderService")
	m.RecordOperationSuccess(ctx, "AppendMatch", "LadderService")
	m.RecordOperationFailure(ctx, "AppendMatch", "LadderService")
	m.RecordMatchRecorded(ctx)
	m.RecordReprojection(ctx, 12, 30*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.attempts.WithLabelValues("AppendMatch", "LadderService")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.successes.WithLabelValues("AppendMatch", "LadderService")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("AppendMatch", "LadderService")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.matchesRecorded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reprojections))
}

func TestMetricsHandler_ServesRegistry(t *testing.T) {
	obs := NewNop()
	obs.Metrics = NewPrometheusMetrics(obs.Registry)
	obs.Metrics.RecordMatchRecorded(context.Background())

	rec := httptest.NewRecorder()
	obs.MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "ladder_matches_recorded_total 1"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}
