package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRun(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveRun("SMA(2/3)", 3*time.Millisecond, 10, 2, 1, 1.05)
	m.ObserveRun("SMA(2/3)", time.Millisecond, 5, 1, 1, 0.98)
	m.ObserveFailure("RSI(14,30/70)")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BacktestsTotal.WithLabelValues("SMA(2/3)", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BacktestsTotal.WithLabelValues("RSI(14,30/70)", "error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.TradesTotal.WithLabelValues("SMA(2/3)", "buy")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TradesTotal.WithLabelValues("SMA(2/3)", "sell")))
	assert.Equal(t, 15.0, testutil.ToFloat64(m.BarsTotal))
	assert.Equal(t, 0.98, testutil.ToFloat64(m.FinalEquity.WithLabelValues("SMA(2/3)")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RunDuration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRun("x", time.Second, 1, 1, 1, 1)
		m.ObserveFailure("x")
		m.JobStarted()
		m.JobDone()
	})
}

func TestSweepJobsGauge(t *testing.T) {
	t.Parallel()

	m := New()
	m.JobStarted()
	m.JobStarted()
	m.JobDone()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SweepJobs))
}

func TestHandler(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveRun("BB(20,2)", time.Millisecond, 1, 0, 0, 1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `cryptobot_backtests_total{outcome="ok",strategy="BB(20,2)"} 1`), body)
	assert.Contains(t, body, "cryptobot_bars_total 1")
}
