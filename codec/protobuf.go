package codec

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

var protoMarshal = proto.MarshalOptions{Deterministic: true}

// Protobuf stores messages in deterministic wire format.
type Protobuf[T proto.Message] struct {
	new func() T
}

// NewProtobuf takes a constructor for the concrete message, e.g.
// func() *pb.User { return &pb.User{} }.
func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{new: ctor}
}

func (c Protobuf[T]) Encode(v T) ([]byte, error) { return protoMarshal.Marshal(v) }

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	m := c.new()
	err := proto.Unmarshal(b, m)
	return m, err
}

// StringValue stores plain strings as google.protobuf.StringValue messages,
// readable by any protobuf consumer of the namespace.
func StringValue() Codec[string] {
	return stringValue{pb: NewProtobuf(func() *wrapperspb.StringValue { return &wrapperspb.StringValue{} })}
}

type stringValue struct {
	pb Protobuf[*wrapperspb.StringValue]
}

func (c stringValue) Encode(s string) ([]byte, error) { return c.pb.Encode(wrapperspb.String(s)) }

func (c stringValue) Decode(b []byte) (string, error) {
	m, err := c.pb.Decode(b)
	if err != nil {
		return "", err
	}
	return m.GetValue(), nil
}
