// Package codec turns typed values into the bytes a namespace stores, and back.
// Codecs are stateless after construction and safe for concurrent use.
package codec

import "fmt"

// Codec encodes values of V for storage and decodes them on read.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// Codec names accepted by ForString and the config "codec" field.
const (
	NameRaw      = "raw"
	NameJSON     = "json"
	NameCBOR     = "cbor"
	NameMsgpack  = "msgpack"
	NameProtobuf = "protobuf"
)

// Names lists every name ForString accepts.
func Names() []string {
	return []string{NameRaw, NameJSON, NameCBOR, NameMsgpack, NameProtobuf}
}

// ForString returns the named codec for plain string values. An empty name
// means raw: the string's bytes are stored as they are.
func ForString(name string) (Codec[string], error) {
	switch name {
	case "", NameRaw:
		return String{}, nil
	case NameJSON:
		return JSON[string]{}, nil
	case NameCBOR:
		return NewCBOR[string]()
	case NameMsgpack:
		return Msgpack[string]{}, nil
	case NameProtobuf:
		return StringValue(), nil
	default:
		return nil, fmt.Errorf("codec: unknown codec %q (want one of %v)", name, Names())
	}
}
