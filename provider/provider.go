// Package provider defines the backend abstraction used by nscache.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly the
// same []byte that was previously passed to Set for a key (no prepended/appended
// metadata, no re-encoding, no mutation). nscache stores caller values as raw
// bytes and relies on this for cross-client compatibility.
//
// Storage keys handed to a Provider are already namespaced ("<prefix>:...").
package provider

import (
	"context"
	"net"
	"strconv"
	"time"
)

// Provider is a minimal byte store with TTLs, deletion and prefix enumeration.
// Must be safe for concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL; ttl <= 0 means no expiry.
	// Returns ok=false when the store rejected the write under pressure.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) (ok bool, err error)

	// Del removes keys in a single round trip and reports how many existed.
	Del(ctx context.Context, keys ...string) (int64, error)

	// Scan calls fn with pages of at most batch keys that start with prefix.
	// Iteration stops at the first error returned by fn.
	Scan(ctx context.Context, prefix string, batch int, fn func(keys []string) error) error

	// Close releases resources.
	Close(ctx context.Context) error
}

// Endpoint is where (and how patiently) a Dialer should connect.
type Endpoint struct {
	Host          string
	Port          int
	Timeout       time.Duration // 0 => no timeout
	RetryInterval time.Duration // 0 => no retry
}

// Addr returns host:port.
func (e Endpoint) Addr() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// Dialer opens a Provider for an Endpoint.
type Dialer interface {
	Dial(ctx context.Context, ep Endpoint) (Provider, error)
}

// DialFunc adapts a function to a Dialer.
type DialFunc func(ctx context.Context, ep Endpoint) (Provider, error)

func (f DialFunc) Dial(ctx context.Context, ep Endpoint) (Provider, error) { return f(ctx, ep) }

// Static returns a Dialer that always hands out p, ignoring the Endpoint.
// Handy for in-process providers and tests.
func Static(p Provider) Dialer {
	return DialFunc(func(context.Context, Endpoint) (Provider, error) { return p, nil })
}

// Pages splits keys into consecutive slices of at most batch elements and
// calls fn for each. Shared by providers that enumerate in memory.
func Pages(keys []string, batch int, fn func([]string) error) error {
	if batch <= 0 {
		batch = len(keys)
	}
	for len(keys) > 0 {
		n := batch
		if n > len(keys) {
			n = len(keys)
		}
		if err := fn(keys[:n]); err != nil {
			return err
		}
		keys = keys[n:]
	}
	return nil
}
