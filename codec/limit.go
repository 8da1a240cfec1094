package codec

import (
	"errors"
	"fmt"
)

// ErrTooLarge is wrapped by codecs built with Limit.
var ErrTooLarge = errors.New("codec: payload too large")

// Limit bounds the stored size of a value in both directions: Encode refuses
// to produce more than maxBytes and Decode refuses to read more. maxBytes <= 0
// returns inner unchanged.
func Limit[V any](inner Codec[V], maxBytes int) Codec[V] {
	if maxBytes <= 0 {
		return inner
	}
	return limited[V]{inner: inner, max: maxBytes}
}

type limited[V any] struct {
	inner Codec[V]
	max   int
}

func (c limited[V]) Encode(v V) ([]byte, error) {
	b, err := c.inner.Encode(v)
	if err != nil {
		return nil, err
	}
	if len(b) > c.max {
		return nil, fmt.Errorf("%w: encoded %d > %d bytes", ErrTooLarge, len(b), c.max)
	}
	return b, nil
}

func (c limited[V]) Decode(b []byte) (V, error) {
	if len(b) > c.max {
		var zero V
		return zero, fmt.Errorf("%w: stored %d > %d bytes", ErrTooLarge, len(b), c.max)
	}
	return c.inner.Decode(b)
}
