// Package promhook counts cache hook events with Prometheus collectors.
package promhook

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/nscache"
)

// Hooks implements nscache.Hooks. Storage keys are never used as labels.
type Hooks struct {
	BackendErrors *prometheus.CounterVec
	Rejected      prometheus.Counter
	// FlushedKeys carries a "prefix" label only when built WithPrefixLabel.
	FlushedKeys *prometheus.CounterVec

	prefixLabel bool
}

var _ nscache.Hooks = (*Hooks)(nil)

type Option func(*Hooks)

// WithPrefixLabel labels flushed keys by namespace prefix. Every distinct
// prefix becomes a series, so enable it only for a small fixed set of
// prefixes, never per-tenant or per-request ones.
func WithPrefixLabel() Option {
	return func(h *Hooks) { h.prefixLabel = true }
}

// New creates the collectors and registers them with reg (nil => not registered).
func New(reg prometheus.Registerer, opts ...Option) *Hooks {
	h := &Hooks{}
	for _, o := range opts {
		o(h)
	}
	var flushLabels []string
	if h.prefixLabel {
		flushLabels = []string{"prefix"}
	}

	h.BackendErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nscache",
		Name:      "backend_errors_total",
		Help:      "Backend failures by cache operation.",
	}, []string{"op"})

	h.Rejected = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "nscache",
		Name:      "set_rejected_total",
		Help:      "Writes the backend dropped without error.",
	})

	h.FlushedKeys = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nscache",
		Name:      "flushed_keys_total",
		Help:      "Entries removed by namespace flushes.",
	}, flushLabels)

	if reg != nil {
		reg.MustRegister(h.BackendErrors, h.Rejected, h.FlushedKeys)
	}
	return h
}

func (h *Hooks) BackendError(op nscache.Op, _ string, _ error) {
	h.BackendErrors.WithLabelValues(string(op)).Inc()
}

func (h *Hooks) SetRejected(string) { h.Rejected.Inc() }

func (h *Hooks) Flushed(prefix string, removed int64) {
	if h.prefixLabel {
		h.FlushedKeys.WithLabelValues(prefix).Add(float64(removed))
		return
	}
	h.FlushedKeys.WithLabelValues().Add(float64(removed))
}
