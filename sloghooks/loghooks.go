// Package sloghooks reports cache hook events through log/slog.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/nscache"
)

type Options struct {
	// Sampling to avoid floods during an outage; 0/1 = log all.
	BackendErrorEvery uint64
	SetRejectedEvery  uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	backendErrCtr atomic.Uint64
	rejectedCtr   atomic.Uint64
}

var _ nscache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) BackendError(op nscache.Op, storageKey string, err error) {
	if h.l == nil || !sample(h.opts.BackendErrorEvery, &h.backendErrCtr) {
		return
	}
	h.l.Warn("nscache.backend_error",
		"op", string(op),
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) SetRejected(storageKey string) {
	if h.l == nil || !sample(h.opts.SetRejectedEvery, &h.rejectedCtr) {
		return
	}
	h.l.Info("nscache.set_rejected",
		"key", h.redact(storageKey))
}

// Flushed is not sampled; flushes are rare and operator-driven.
func (h *Hooks) Flushed(prefix string, removed int64) {
	if h.l == nil {
		return
	}
	h.l.Info("nscache.flushed",
		"prefix", prefix,
		"removed", removed)
}
