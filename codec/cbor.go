package codec

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var errCBORUnset = errors.New("codec: CBOR codec used without NewCBOR")

// CBOR encodes with the RFC 8949 core deterministic options, so equal values
// always yield equal bytes. Struct fields fall back to their json tags.
// Construct with NewCBOR; the zero value fails every call.
type CBOR[V any] struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var _ Codec[struct{}] = CBOR[struct{}]{}

func NewCBOR[V any]() (CBOR[V], error) {
	eo := cbor.CoreDetEncOptions()
	eo.Time = cbor.TimeRFC3339Nano
	enc, err := eo.EncMode()
	if err != nil {
		return CBOR[V]{}, fmt.Errorf("codec: cbor encode mode: %w", err)
	}
	// a namespace can be shared with other writers
	dec, err := cbor.DecOptions{DupMapKey: cbor.DupMapKeyEnforcedAPF}.DecMode()
	if err != nil {
		return CBOR[V]{}, fmt.Errorf("codec: cbor decode mode: %w", err)
	}
	return CBOR[V]{enc: enc, dec: dec}, nil
}

func (c CBOR[V]) Encode(v V) ([]byte, error) {
	if c.enc == nil {
		return nil, errCBORUnset
	}
	return c.enc.Marshal(v)
}

func (c CBOR[V]) Decode(b []byte) (V, error) {
	var v V
	if c.dec == nil {
		return v, errCBORUnset
	}
	err := c.dec.Unmarshal(b, &v)
	return v, err
}
