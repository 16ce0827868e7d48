// Package metrics exposes Prometheus counters for backtest runs and an HTTP
// server for scraping them during long sweeps.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics holds the Prometheus collectors for backtests.
type Metrics struct {
	BacktestsTotal *prometheus.CounterVec   // labels: strategy, outcome
	TradesTotal    *prometheus.CounterVec   // labels: strategy, side
	BarsTotal      prometheus.Counter       // bars replayed
	RunDuration    *prometheus.HistogramVec // labels: strategy
	FinalEquity    *prometheus.GaugeVec     // labels: strategy
	SweepJobs      prometheus.Gauge         // sweep jobs in flight

	reg *prometheus.Registry
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		BacktestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cryptobot_backtests_total",
			Help: "Backtest runs by strategy and outcome",
		}, []string{"strategy", "outcome"}),
		TradesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cryptobot_trades_total",
			Help: "Simulated trades by strategy and side",
		}, []string{"strategy", "side"}),
		BarsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cryptobot_bars_total",
			Help: "Bars replayed through the simulator",
		}),
		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cryptobot_backtest_duration_seconds",
			Help:    "Wall time of one signals+backtest run",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"strategy"}),
		FinalEquity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cryptobot_final_equity",
			Help: "Final normalized equity of the latest run per strategy",
		}, []string{"strategy"}),
		SweepJobs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cryptobot_sweep_jobs_in_flight",
			Help: "Sweep backtests currently running",
		}),
		reg: reg,
	}

	reg.MustRegister(
		m.BacktestsTotal,
		m.TradesTotal,
		m.BarsTotal,
		m.RunDuration,
		m.FinalEquity,
		m.SweepJobs,
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// ObserveRun records a finished backtest. A nil receiver is a no-op so
// callers can leave metrics unset.
func (m *Metrics) ObserveRun(strategy string, d time.Duration, bars, buys, sells int, finalEquity float64) {
	if m == nil {
		return
	}
	m.BacktestsTotal.WithLabelValues(strategy, "ok").Inc()
	m.TradesTotal.WithLabelValues(strategy, "buy").Add(float64(buys))
	m.TradesTotal.WithLabelValues(strategy, "sell").Add(float64(sells))
	m.BarsTotal.Add(float64(bars))
	m.RunDuration.WithLabelValues(strategy).Observe(d.Seconds())
	m.FinalEquity.WithLabelValues(strategy).Set(finalEquity)
}

// ObserveFailure counts a run that returned an error.
func (m *Metrics) ObserveFailure(strategy string) {
	if m == nil {
		return
	}
	m.BacktestsTotal.WithLabelValues(strategy, "error").Inc()
}

// JobStarted and JobDone track sweep concurrency.
func (m *Metrics) JobStarted() {
	if m != nil {
		m.SweepJobs.Inc()
	}
}

func (m *Metrics) JobDone() {
	if m != nil {
		m.SweepJobs.Dec()
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Server exposes /metrics over HTTP.
type Server struct {
	addr string
	srv  *http.Server
	log  *zap.Logger
}

func NewServer(addr string, m *Metrics, log *zap.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		addr: addr,
		log:  log,
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start launches the server in a goroutine.
func (s *Server) Start() {
	go func() {
		s.log.Info("metrics server listening", zap.String("addr", s.addr))
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("metrics server", zap.Error(err))
		}
	}()
}

// Stop shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
