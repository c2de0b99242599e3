// Package bridge converts every core type to and from a boundary-neutral
// term: a protobuf structpb.Value.
//
// Records are structs whose "__struct__" field holds the record's Tag. Fixed
// and variable byte fields are standard base64 strings, u32 vectors and
// digests are lists of integral numbers in stored order, quantities are
// decimal strings and absent optional values are null.
//
// Decoding is strict: a missing, unknown, mistyped or wrongly sized field
// fails with an arm.KindDecode error whose Field is the full path of the
// offending value, for example
// "transaction.actions[1].compliance_units[0].proof".
package bridge

import (
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"anoma.net/arm"
)

// TagField is the discriminator field of every record.
const TagField = "__struct__"

// Tag identifies the logical type of a record.
type Tag string

const (
	TagKeypair                Tag = "arm.v1.Keypair"
	TagResource               Tag = "arm.v1.Resource"
	TagNullifierKey           Tag = "arm.v1.NullifierKey"
	TagNullifierKeyCommitment Tag = "arm.v1.NullifierKeyCommitment"
	TagMerklePath             Tag = "arm.v1.MerklePath"
	TagMerklePathNode         Tag = "arm.v1.MerklePathNode"
	TagComplianceWitness      Tag = "arm.v1.ComplianceWitness"
	TagComplianceInstance     Tag = "arm.v1.ComplianceInstance"
	TagComplianceUnit         Tag = "arm.v1.ComplianceUnit"
	TagDeltaWitness           Tag = "arm.v1.DeltaWitness"
	TagDeltaProof             Tag = "arm.v1.DeltaProof"
	TagExpirableBlob          Tag = "arm.v1.ExpirableBlob"
	TagAppData                Tag = "arm.v1.AppData"
	TagLogicVerifier          Tag = "arm.v1.LogicVerifier"
	TagLogicVerifierInputs    Tag = "arm.v1.LogicVerifierInputs"
	TagAction                 Tag = "arm.v1.Action"
	TagTransaction            Tag = "arm.v1.Transaction"
	TagCiphertext             Tag = "arm.v1.Ciphertext"
)

var knownTags = map[Tag]bool{
	TagKeypair: true, TagResource: true, TagNullifierKey: true,
	TagNullifierKeyCommitment: true, TagMerklePath: true, TagMerklePathNode: true,
	TagComplianceWitness: true, TagComplianceInstance: true, TagComplianceUnit: true,
	TagDeltaWitness: true, TagDeltaProof: true, TagExpirableBlob: true,
	TagAppData: true, TagLogicVerifier: true, TagLogicVerifierInputs: true,
	TagAction: true, TagTransaction: true, TagCiphertext: true,
}

// Valid reports whether t is a known tag.
func (t Tag) Valid() bool { return knownTags[t] }

// TagOf returns the tag of a record term.
func TagOf(v *structpb.Value) (Tag, error) {
	s := v.GetStructValue()
	if s == nil {
		return "", arm.DecodeError("ARM-DEC-100", "", "expected a tagged struct")
	}
	tv, ok := s.GetFields()[TagField]
	if !ok {
		return "", arm.DecodeError("ARM-DEC-101", TagField, "missing record tag")
	}
	sv, ok := tv.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", arm.DecodeError("ARM-DEC-101", TagField, "record tag must be a string")
	}
	t := Tag(sv.StringValue)
	if !t.Valid() {
		return "", arm.DecodeError("ARM-DEC-104", TagField, "unknown record tag "+sv.StringValue)
	}
	return t, nil
}

// Marshal returns the deterministic protobuf encoding of v.
func Marshal(v *structpb.Value) ([]byte, error) {
	return proto.MarshalOptions{Deterministic: true}.Marshal(v)
}

// Unmarshal parses the protobuf encoding of a term.
func Unmarshal(b []byte) (*structpb.Value, error) {
	v := new(structpb.Value)
	if err := proto.Unmarshal(b, v); err != nil {
		return nil, arm.WrapError(arm.KindDecode, "ARM-DEC-110", "malformed protobuf term", err)
	}
	return v, nil
}

// MarshalJSON returns the protojson encoding of v.
func MarshalJSON(v *structpb.Value) ([]byte, error) {
	return protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(v)
}

// UnmarshalJSON parses the protojson encoding of a term.
func UnmarshalJSON(b []byte) (*structpb.Value, error) {
	v := new(structpb.Value)
	if err := protojson.Unmarshal(b, v); err != nil {
		return nil, arm.WrapError(arm.KindDecode, "ARM-DEC-111", "malformed JSON term", err)
	}
	return v, nil
}
