// Package nscache is a namespaced key-value cache client over a pluggable
// byte store (Redis, BigCache, Ristretto).
//
// Components:
//   - Cache: connection lifecycle plus set/get/del/flush. Failures never escape
//     the sentinel methods; they go to Logger and Hooks.
//   - Namespace: the same operations bound to a prefix, with E variants that
//     return errors.
//   - Typed[V]: a Namespace plus a codec.Codec[V] for non-string values.
//   - provider.Dialer: opens the backend on Connect.
//
// Keys:
//
//	<prefix>:<key with "//" replaced by ":">:<16 hex xxhash64 of key>
//
// The digest keeps "a//b" and "a:b" apart after sanitizing. Flush scans
// "<prefix>:" and deletes page by page. Keys of a nested prefix such as
// "<prefix>:sub" come back from the scan too; their digest does not match and
// they are left alone.
//
// Usage:
//
//	c, _ := nscache.New(nscache.Options{Dialer: redis.NewDialer(redis.DialConfig{})})
//	if err := c.Connect(ctx, nscache.Config{Host: "localhost"}); err != nil { ... }
//	c.Set(ctx, "user//42", "alice")
//	v := c.Get(ctx, "user//42")
package nscache
