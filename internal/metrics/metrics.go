// Package metrics exposes the bot's operational counters on a side
// prometheus listener.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	// NotesCreated counts successful note inserts.
	NotesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notibot_notes_created_total",
		Help: "Notes successfully inserted.",
	})

	// ModelSwitches counts active-model switches.
	ModelSwitches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notibot_model_switches_total",
		Help: "Active model switches.",
	})

	// PushesSent counts delivered daily pushes.
	PushesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notibot_pushes_sent_total",
		Help: "Daily pushes delivered and marked sent.",
	})

	// PushFailures counts daily pushes that failed and stayed due.
	PushFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notibot_push_failures_total",
		Help: "Daily pushes that failed to generate or send.",
	})

	providerCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notibot_provider_calls_total",
		Help: "Outbound provider calls by HTTP status.",
	}, []string{"status"})

	providerDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "notibot_provider_call_duration_seconds",
		Help:    "Outbound provider call duration.",
		Buckets: prometheus.DefBuckets,
	})
)

// ObserveProviderCall records one outbound provider call.
func ObserveProviderCall(status int, d time.Duration) {
	providerCalls.WithLabelValues(strconv.Itoa(status)).Inc()
	providerDuration.Observe(d.Seconds())
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("metrics listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
