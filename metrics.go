package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Metrics struct {
	Requests        *prometheus.CounterVec
	RequestFailures prometheus.Counter
	RecordsSeen     prometheus.Gauge
	Matches         prometheus.Counter
	Available       prometheus.Counter
	PassDuration    prometheus.Histogram
	PassFailures    prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cowin_calendar_requests_total",
				Help: "Calendar API requests by HTTP status code",
			},
			[]string{"code"},
		),
		RequestFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "cowin_calendar_request_failures_total",
			Help: "Calendar API requests that failed before a response was read",
		}),
		RecordsSeen: f.NewGauge(prometheus.GaugeOpts{
			Name: "cowin_records_collected",
			Help: "Distinct schedule records collected by the last pass",
		}),
		Matches: f.NewCounter(prometheus.CounterOpts{
			Name: "cowin_matches_total",
			Help: "Schedule records matching the configured filters",
		}),
		Available: f.NewCounter(prometheus.CounterOpts{
			Name: "cowin_available_matches_total",
			Help: "Matching schedule records with available capacity",
		}),
		PassDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "cowin_pass_duration_seconds",
			Help:    "Duration of a collect and report pass",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}),
		PassFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "cowin_pass_failures_total",
			Help: "Passes aborted by a transport or decoding error",
		}),
	}
}

func (m *Metrics) observeStatus(code int) {
	m.Requests.WithLabelValues(strconv.Itoa(code)).Inc()
}

func newMetricsRouter(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}

// serveMetrics blocks until ctx is cancelled or the listener fails.
func serveMetrics(ctx context.Context, addr string, gatherer prometheus.Gatherer, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           newMetricsRouter(gatherer),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("metrics server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return err
	}
}
