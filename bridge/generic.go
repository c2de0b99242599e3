package bridge

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"anoma.net/arm"
	"anoma.net/arm/compliance"
	"anoma.net/arm/curve"
	"anoma.net/arm/delta"
	"anoma.net/arm/encryption"
	"anoma.net/arm/logic"
	"anoma.net/arm/merkle"
	"anoma.net/arm/resource"
	"anoma.net/arm/transaction"
)

// Encode encodes any core value the bridge knows. Pointers to known types are
// accepted as well.
func Encode(x any) (*structpb.Value, error) {
	switch x := x.(type) {
	case curve.Keypair:
		return EncodeKeypair(x), nil
	case resource.Resource:
		return EncodeResource(x), nil
	case *resource.Resource:
		return EncodeResource(*x), nil
	case resource.NullifierKey:
		return EncodeNullifierKey(x), nil
	case resource.NullifierKeyCommitment:
		return EncodeNullifierKeyCommitment(x), nil
	case merkle.Path:
		return EncodeMerklePath(x), nil
	case *compliance.Witness:
		return EncodeComplianceWitness(x), nil
	case compliance.Instance:
		return EncodeComplianceInstance(x), nil
	case compliance.Unit:
		return EncodeComplianceUnit(x), nil
	case delta.Witness:
		return EncodeDeltaWitness(x), nil
	case delta.Proof:
		return EncodeDeltaProof(x), nil
	case transaction.WitnessDelta, transaction.ProofDelta:
		return EncodeDelta(x.(transaction.Delta)), nil
	case logic.ExpirableBlob:
		return EncodeExpirableBlob(x), nil
	case logic.AppData:
		return EncodeAppData(x), nil
	case logic.Verifier:
		return EncodeLogicVerifier(x), nil
	case logic.VerifierInputs:
		return EncodeLogicVerifierInputs(x), nil
	case transaction.Action:
		return EncodeAction(x), nil
	case transaction.Transaction:
		return EncodeTransaction(x), nil
	case *transaction.Transaction:
		return EncodeTransaction(*x), nil
	case encryption.Ciphertext:
		return EncodeCiphertext(x), nil
	default:
		return nil, arm.NewError(arm.KindPrecondition, "ARM-PRE-070", fmt.Sprintf("bridge: no encoding for %T", x))
	}
}

// Decode decodes a record term into the core value its tag names. A
// ComplianceWitness decodes to *compliance.Witness; everything else decodes
// to a value.
func Decode(v *structpb.Value) (any, error) {
	tag, err := TagOf(v)
	if err != nil {
		return nil, err
	}
	switch tag {
	case TagKeypair:
		return DecodeKeypair(v)
	case TagResource:
		return DecodeResource(v)
	case TagNullifierKey:
		return DecodeNullifierKey(v)
	case TagNullifierKeyCommitment:
		return DecodeNullifierKeyCommitment(v)
	case TagMerklePath:
		return DecodeMerklePath(v)
	case TagComplianceWitness:
		w, err := DecodeComplianceWitness(v)
		if err != nil {
			return nil, err
		}
		return &w, nil
	case TagComplianceInstance:
		return DecodeComplianceInstance(v)
	case TagComplianceUnit:
		return DecodeComplianceUnit(v)
	case TagDeltaWitness:
		return DecodeDeltaWitness(v)
	case TagDeltaProof:
		return DecodeDeltaProof(v)
	case TagExpirableBlob:
		return DecodeExpirableBlob(v)
	case TagAppData:
		return DecodeAppData(v)
	case TagLogicVerifier:
		return DecodeLogicVerifier(v)
	case TagLogicVerifierInputs:
		return DecodeLogicVerifierInputs(v)
	case TagAction:
		return DecodeAction(v)
	case TagTransaction:
		return DecodeTransaction(v)
	case TagCiphertext:
		return DecodeCiphertext(v)
	default:
		return nil, arm.DecodeError("ARM-DEC-104", TagField, "record tag has no standalone decoding")
	}
}
