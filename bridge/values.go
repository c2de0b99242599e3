package bridge

import (
	"google.golang.org/protobuf/types/known/structpb"
)

// EncodeBytes encodes a bare byte argument.
func EncodeBytes(b []byte) *structpb.Value { return bytesValue(b) }

// DecodeBytes decodes a bare byte argument. Empty decodes to nil.
func DecodeBytes(v *structpb.Value, path string) ([]byte, error) {
	return decodeBytes(v, path)
}

// EncodeOptionalBytes encodes nil as null.
func EncodeOptionalBytes(b []byte) *structpb.Value { return optBytesValue(b) }

// DecodeOptionalBytes decodes null as nil and an empty string as []byte{}.
func DecodeOptionalBytes(v *structpb.Value, path string) ([]byte, error) {
	if _, ok := v.GetKind().(*structpb.Value_NullValue); ok {
		return nil, nil
	}
	b, err := decodeBytes(v, path)
	if err != nil {
		return nil, err
	}
	if b == nil {
		b = []byte{}
	}
	return b, nil
}
