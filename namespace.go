package nscache

import (
	"context"
	"time"
)

// Namespace is a view of the client bound to one prefix. It is a small value;
// create as many as needed. Every key it touches is stored as
// prefix + ":" + sanitized key + ":" + digest, so namespaces never see each
// other's entries.
//
// Prefixes may contain ":" (for example "tenant:7"); Flush on "tenant" leaves
// the entries of "tenant:7" alone.
type Namespace struct {
	c      *client
	prefix string
}

func (n Namespace) Prefix() string { return n.prefix }

// Set stores value with the client's default TTL.
func (n Namespace) Set(ctx context.Context, key, value string) bool {
	return n.SetWithTTL(ctx, key, value, n.c.defaultTTL)
}

// SetWithTTL stores value; ttl <= 0 means no expiry. False when the backend
// failed, dropped the write under pressure, or the client is not connected.
func (n Namespace) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) bool {
	ok, err := n.SetE(ctx, key, value, ttl)
	if err != nil {
		n.c.swallow(OpSet, err)
	}
	return ok
}

// SetE is SetWithTTL with the failure returned. (false, nil) means the backend
// rejected the write without error.
func (n Namespace) SetE(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return n.c.set(ctx, n.prefix, key, []byte(value), ttl)
}

// Get returns the stored value, or "" on a miss or failure. Use Lookup to
// distinguish the two.
func (n Namespace) Get(ctx context.Context, key string) string {
	r := n.Lookup(ctx, key)
	if r.Status == StatusFailed {
		n.c.swallow(OpGet, r.Err)
	}
	return r.Value
}

func (n Namespace) Lookup(ctx context.Context, key string) Result {
	b, ok, err := n.c.get(ctx, n.prefix, key)
	switch {
	case err != nil:
		return Result{Status: StatusFailed, Err: err}
	case !ok:
		return Result{Status: StatusNotFound}
	default:
		return Result{Status: StatusFound, Value: string(b)}
	}
}

// Del removes key. True only if the backend reports that an entry was removed.
func (n Namespace) Del(ctx context.Context, key string) bool {
	ok, err := n.DelE(ctx, key)
	if err != nil {
		n.c.swallow(OpDel, err)
	}
	return ok
}

func (n Namespace) DelE(ctx context.Context, key string) (bool, error) {
	return n.c.del(ctx, n.prefix, key)
}

// Flush removes every entry of this namespace and nothing outside it. An empty
// namespace flushes successfully.
func (n Namespace) Flush(ctx context.Context) bool {
	_, err := n.FlushE(ctx)
	if err != nil {
		n.c.swallow(OpFlush, err)
		return false
	}
	return true
}

// FlushE returns how many entries were removed. On error, the count covers the
// pages deleted before the failure.
func (n Namespace) FlushE(ctx context.Context) (int64, error) {
	return n.c.flush(ctx, n.prefix)
}
