package bridge

import (
	"encoding/base64"
	"fmt"
	"math"

	"github.com/holiman/uint256"
	"google.golang.org/protobuf/types/known/structpb"

	"anoma.net/arm"
	"anoma.net/arm/journal"
	"anoma.net/arm/resource"
)

// record builds a tagged struct term.
func record(tag Tag, fields map[string]*structpb.Value) *structpb.Value {
	fields[TagField] = structpb.NewStringValue(string(tag))
	return structpb.NewStructValue(&structpb.Struct{Fields: fields})
}

func bytesValue(b []byte) *structpb.Value {
	return structpb.NewStringValue(base64.StdEncoding.EncodeToString(b))
}

func optBytesValue(b []byte) *structpb.Value {
	if b == nil {
		return structpb.NewNullValue()
	}
	return bytesValue(b)
}

func wordsValue(w []uint32) *structpb.Value {
	vals := make([]*structpb.Value, len(w))
	for i, x := range w {
		vals[i] = structpb.NewNumberValue(float64(x))
	}
	return structpb.NewListValue(&structpb.ListValue{Values: vals})
}

func digestValue(d journal.Digest) *structpb.Value { return wordsValue(d.Words()) }

func listValue(vals []*structpb.Value) *structpb.Value {
	return structpb.NewListValue(&structpb.ListValue{Values: vals})
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func index(path string, i int) string { return fmt.Sprintf("%s[%d]", path, i) }

// fields reads a tagged struct. Every accessor marks its field as used; done
// rejects the rest.
type fields struct {
	path string
	m    map[string]*structpb.Value
	used map[string]bool
}

func openRecord(v *structpb.Value, path string, tag Tag) (*fields, error) {
	s := v.GetStructValue()
	if s == nil {
		return nil, arm.DecodeError("ARM-DEC-100", path, fmt.Sprintf("expected a %s struct", tag))
	}
	m := s.GetFields()
	tv, ok := m[TagField]
	if !ok {
		return nil, arm.DecodeError("ARM-DEC-101", join(path, TagField), "missing record tag")
	}
	if tv.GetStringValue() != string(tag) {
		return nil, arm.DecodeError("ARM-DEC-101", join(path, TagField), fmt.Sprintf("expected tag %s", tag))
	}
	return &fields{path: path, m: m, used: map[string]bool{TagField: true}}, nil
}

func (f *fields) fail(name, msg string) error {
	return arm.DecodeError("ARM-DEC-105", join(f.path, name), msg)
}

func (f *fields) get(name string) (*structpb.Value, error) {
	f.used[name] = true
	v, ok := f.m[name]
	if !ok || v == nil {
		return nil, arm.DecodeError("ARM-DEC-102", join(f.path, name), "missing field")
	}
	return v, nil
}

// sub returns a nested term and its path.
func (f *fields) sub(name string) (*structpb.Value, string, error) {
	v, err := f.get(name)
	return v, join(f.path, name), err
}

func (f *fields) done() error {
	for name := range f.m {
		if !f.used[name] {
			return arm.DecodeError("ARM-DEC-103", join(f.path, name), "unknown field")
		}
	}
	return nil
}

func decodeBytes(v *structpb.Value, path string) ([]byte, error) {
	sv, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return nil, arm.DecodeError("ARM-DEC-105", path, "expected a base64 string")
	}
	b, err := base64.StdEncoding.Strict().DecodeString(sv.StringValue)
	if err != nil {
		return nil, arm.DecodeError("ARM-DEC-106", path, "malformed base64")
	}
	if len(b) == 0 {
		return nil, nil
	}
	return b, nil
}

func (f *fields) bytes(name string) ([]byte, error) {
	v, err := f.get(name)
	if err != nil {
		return nil, err
	}
	return decodeBytes(v, join(f.path, name))
}

func (f *fields) bytesN(name string, n int) ([]byte, error) {
	b, err := f.bytes(name)
	if err != nil {
		return nil, err
	}
	if len(b) != n {
		return nil, arm.DecodeError("ARM-DEC-107", join(f.path, name), fmt.Sprintf("expected %d bytes, got %d", n, len(b)))
	}
	return b, nil
}

func (f *fields) array32(name string) ([32]byte, error) {
	var out [32]byte
	b, err := f.bytesN(name, 32)
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	return out, nil
}

// optBytes distinguishes null (nil) from present-but-empty ([]byte{}).
func (f *fields) optBytes(name string) ([]byte, error) {
	v, err := f.get(name)
	if err != nil {
		return nil, err
	}
	return DecodeOptionalBytes(v, join(f.path, name))
}

func decodeU32(v *structpb.Value, path string) (uint32, error) {
	nv, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, arm.DecodeError("ARM-DEC-105", path, "expected a number")
	}
	x := nv.NumberValue
	if x != math.Trunc(x) || x < 0 || x > math.MaxUint32 {
		return 0, arm.DecodeError("ARM-DEC-108", path, "expected an integer in [0, 2^32)")
	}
	return uint32(x), nil
}

func decodeWords(v *structpb.Value, path string) ([]uint32, error) {
	lv, ok := v.GetKind().(*structpb.Value_ListValue)
	if !ok {
		return nil, arm.DecodeError("ARM-DEC-105", path, "expected a list of numbers")
	}
	vals := lv.ListValue.GetValues()
	if len(vals) == 0 {
		return nil, nil
	}
	out := make([]uint32, len(vals))
	for i, e := range vals {
		x, err := decodeU32(e, index(path, i))
		if err != nil {
			return nil, err
		}
		out[i] = x
	}
	return out, nil
}

func (f *fields) u32(name string) (uint32, error) {
	v, err := f.get(name)
	if err != nil {
		return 0, err
	}
	return decodeU32(v, join(f.path, name))
}

func (f *fields) words(name string) ([]uint32, error) {
	v, err := f.get(name)
	if err != nil {
		return nil, err
	}
	return decodeWords(v, join(f.path, name))
}

func (f *fields) digest(name string) (journal.Digest, error) {
	w, err := f.words(name)
	if err != nil {
		return journal.Digest{}, err
	}
	if len(w) != journal.DigestWords {
		return journal.Digest{}, arm.DecodeError("ARM-DEC-107", join(f.path, name), fmt.Sprintf("expected %d words, got %d", journal.DigestWords, len(w)))
	}
	return journal.DigestFromWords(w)
}

func (f *fields) boolean(name string) (bool, error) {
	v, err := f.get(name)
	if err != nil {
		return false, err
	}
	bv, ok := v.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return false, f.fail(name, "expected a boolean")
	}
	return bv.BoolValue, nil
}

func (f *fields) quantity(name string) (uint256.Int, error) {
	v, err := f.get(name)
	if err != nil {
		return uint256.Int{}, err
	}
	sv, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return uint256.Int{}, f.fail(name, "expected a decimal string")
	}
	s := sv.StringValue
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return uint256.Int{}, arm.DecodeError("ARM-DEC-109", join(f.path, name), "quantity must be a canonical decimal")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return uint256.Int{}, arm.DecodeError("ARM-DEC-109", join(f.path, name), "quantity must be a canonical decimal")
		}
	}
	q, err := uint256.FromDecimal(s)
	if err != nil || !resource.ValidQuantity(q) {
		return uint256.Int{}, arm.DecodeError("ARM-DEC-109", join(f.path, name), "quantity must fit in 128 bits")
	}
	return *q, nil
}

// list returns the elements of a list field with their paths.
func (f *fields) list(name string) ([]*structpb.Value, string, error) {
	v, err := f.get(name)
	if err != nil {
		return nil, "", err
	}
	lv, ok := v.GetKind().(*structpb.Value_ListValue)
	if !ok {
		return nil, "", f.fail(name, "expected a list")
	}
	return lv.ListValue.GetValues(), join(f.path, name), nil
}
