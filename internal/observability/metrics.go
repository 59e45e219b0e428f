package observability

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the counter set for message flow through the bot.
type Metrics struct {
	// MessagesHandled counts inbound gateway messages by disposition.
	// Labels: disposition (mention|sampled|saved|ignored|dropped)
	MessagesHandled *prometheus.CounterVec

	// SegmentsSent counts delivered reply segments by status.
	// Labels: status (success|error)
	SegmentsSent *prometheus.CounterVec

	// BackendRequests counts completion calls by backend and status.
	// Labels: backend, status (success|error)
	BackendRequests *prometheus.CounterVec

	// BackendDuration measures completion latency in seconds.
	// Labels: backend
	BackendDuration *prometheus.HistogramVec

	// Resets counts session reset requests by outcome.
	// Labels: outcome (reset|denied|error)
	Resets *prometheus.CounterVec
}

// NewMetrics registers the metric set with the default Prometheus registry.
// Call once at startup.
func NewMetrics() *Metrics {
	return newMetrics(promauto.With(prometheus.DefaultRegisterer))
}

// NewMetricsWith registers against an explicit registry, which tests use to
// avoid duplicate-registration panics.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	return newMetrics(promauto.With(reg))
}

func newMetrics(factory promauto.Factory) *Metrics {
	return &Metrics{
		MessagesHandled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "osbot_messages_handled_total",
				Help: "Inbound gateway messages by disposition",
			},
			[]string{"disposition"},
		),
		SegmentsSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "osbot_segments_sent_total",
				Help: "Reply segments delivered by status",
			},
			[]string{"status"},
		),
		BackendRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "osbot_backend_requests_total",
				Help: "Completion requests by backend and status",
			},
			[]string{"backend", "status"},
		),
		BackendDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "osbot_backend_request_duration_seconds",
				Help:    "Completion request latency in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"backend"},
		),
		Resets: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "osbot_resets_total",
				Help: "Session reset requests by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// ServeMetrics exposes /metrics on addr until ctx is cancelled. It blocks;
// run it in a goroutine. An empty addr disables the listener.
func ServeMetrics(ctx context.Context, addr string, logger *slog.Logger) error {
	if addr == "" {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics listener started", "addr", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
