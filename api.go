package nscache

import (
	"context"
	"errors"
	"time"

	pr "github.com/unkn0wn-root/nscache/provider"
)

// DefaultPrefix is the namespace used by the Cache methods that take no prefix.
const DefaultPrefix = "cache"

// Cache is the namespaced key-value cache client.
//
// The set/get/del/flush methods never return backend failures: they degrade to
// false / "" and report the failure to Logger and Hooks, so an unavailable
// cache cannot break the caller. Use Lookup or the Namespace E variants when
// the error kind matters.
//
// A Cache starts disconnected. Until Connect succeeds every operation fails
// with ErrNotConnected without touching a backend. A Cache is safe for
// concurrent use.
type Cache interface {
	Connect(ctx context.Context, cfg Config) error
	Connected() bool
	Close(ctx context.Context) error

	// Default namespace (Options.DefaultPrefix)
	Set(ctx context.Context, key, value string) bool
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) bool
	Get(ctx context.Context, key string) string
	Lookup(ctx context.Context, key string) Result
	Del(ctx context.Context, key string) bool
	Flush(ctx context.Context) bool

	// Namespace binds the same operations to an explicit prefix.
	Namespace(prefix string) Namespace
}

// Options tune the client. Only Dialer is required.
type Options struct {
	// Required
	Dialer pr.Dialer // opens the backend on Connect, e.g. redis.NewDialer(...)

	DefaultPrefix  string        // "" => "cache"
	DefaultTTL     time.Duration // used by Set; 0 => no expiry
	FlushBatchSize int           // keys per Scan page / Del round trip; 0 => 500
	Logger         Logger        // if nil, NopLogger is used
	Hooks          Hooks         // if nil, NopHooks is used
}

func New(opts Options) (Cache, error) {
	if opts.Dialer == nil {
		return nil, errors.New("nscache: dialer is required")
	}
	return newClient(opts), nil
}
