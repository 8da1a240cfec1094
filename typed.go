package nscache

import (
	"context"
	"fmt"
	"time"

	"github.com/unkn0wn-root/nscache/codec"
)

// Typed stores values of V in a namespace through a codec. Failures are
// returned, not swallowed.
//
//	users := nscache.NewTyped[User](cache.Namespace("users"), codec.JSON[User]{})
//	_, err := users.Set(ctx, "42", u, time.Minute)
type Typed[V any] struct {
	ns    Namespace
	codec codec.Codec[V]
}

func NewTyped[V any](ns Namespace, c codec.Codec[V]) Typed[V] {
	return Typed[V]{ns: ns, codec: c}
}

func (t Typed[V]) Namespace() Namespace { return t.ns }

func (t Typed[V]) Set(ctx context.Context, key string, v V, ttl time.Duration) (bool, error) {
	b, err := t.codec.Encode(v)
	if err != nil {
		return false, fmt.Errorf("nscache: encode %q: %w", key, err)
	}
	return t.ns.c.set(ctx, t.ns.prefix, key, b, ttl)
}

// Get reports ok=false on a miss. A payload the codec cannot decode is
// deleted and reported as an error.
func (t Typed[V]) Get(ctx context.Context, key string) (v V, ok bool, err error) {
	b, ok, err := t.ns.c.get(ctx, t.ns.prefix, key)
	if err != nil || !ok {
		return v, false, err
	}
	v, err = t.codec.Decode(b)
	if err != nil {
		// self-heal: drop the undecodable entry
		_, _ = t.ns.c.del(ctx, t.ns.prefix, key)
		var zero V
		return zero, false, fmt.Errorf("nscache: decode %q: %w", key, err)
	}
	return v, true, nil
}

func (t Typed[V]) Del(ctx context.Context, key string) (bool, error) {
	return t.ns.DelE(ctx, key)
}

func (t Typed[V]) Flush(ctx context.Context) (int64, error) {
	return t.ns.FlushE(ctx)
}
