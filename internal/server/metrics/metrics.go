// Package metrics exposes Prometheus collectors for the RPC surface and the
// pot lifecycle.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/potkeeper/internal/common"
	"github.com/dmitrijs2005/potkeeper/internal/logging"
	"github.com/dmitrijs2005/potkeeper/internal/server/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var histogramBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}

// Pot lifecycle events.
const (
	EventCreated  = "created"
	EventDeposit  = "deposit"
	EventWithdraw = "withdraw"
	EventClosed   = "closed"
	EventProfile  = "profile_initialized"
	EventAirdrop  = "airdrop"
)

// Metrics is safe to use as a nil pointer, which records nothing.
type Metrics struct {
	rpcTotal    *prometheus.CounterVec
	rpcLatency  *prometheus.HistogramVec
	events      *prometheus.CounterVec
	valueMoved  *prometheus.CounterVec
	rateLimited *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		rpcTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "potkeeper",
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "Count of handled RPCs by method and result reason",
		}, []string{"method", "reason"}),
		rpcLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "potkeeper",
			Subsystem: "rpc",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution of RPC handlers",
			Buckets:   histogramBuckets,
		}, []string{"method"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "potkeeper",
			Subsystem: "pots",
			Name:      "events_total",
			Help:      "Committed lifecycle events",
		}, []string{"event"}),
		valueMoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "potkeeper",
			Subsystem: "ledger",
			Name:      "value_moved_total",
			Help:      "Native value moved by committed transfers",
		}, []string{"kind"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "potkeeper",
			Subsystem: "rpc",
			Name:      "rate_limit_hits_total",
			Help:      "Number of rate-limited requests",
		}, []string{"scope"}),
	}

	m.rpcTotal = register(reg, m.rpcTotal)
	m.rpcLatency = register(reg, m.rpcLatency)
	m.events = register(reg, m.events)
	m.valueMoved = register(reg, m.valueMoved)
	m.rateLimited = register(reg, m.rateLimited)
	return m
}

// register reuses an identical collector registered earlier, for example by
// a second server instance in the same process.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
	}
	return c
}

func (m *Metrics) ObserveRPC(method string, err error, d time.Duration) {
	if m == nil {
		return
	}
	m.rpcTotal.With(prometheus.Labels{"method": method, "reason": common.Reason(err)}).Inc()
	m.rpcLatency.With(prometheus.Labels{"method": method}).Observe(d.Seconds())
}

func (m *Metrics) Event(event string) {
	if m == nil {
		return
	}
	m.events.With(prometheus.Labels{"event": event}).Inc()
}

func (m *Metrics) ValueMoved(kind models.TransferKind, amount uint64) {
	if m == nil || amount == 0 {
		return
	}
	m.valueMoved.With(prometheus.Labels{"kind": string(kind)}).Add(float64(amount))
}

func (m *Metrics) RateLimited(scope string) {
	if m == nil {
		return
	}
	m.rateLimited.With(prometheus.Labels{"scope": scope}).Inc()
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer, logger logging.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "metrics server started", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info(ctx, "shutting down metrics server")
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
