package compliance

import (
	"bytes"
	"crypto/sha256"
	"errors"

	"anoma.net/arm"
	"anoma.net/arm/curve"
	"anoma.net/arm/journal"
	"anoma.net/arm/proving"
	"anoma.net/arm/resource"
)

// VerifyingKey names the compliance relation in the proving backend.
var VerifyingKey = func() proving.VerifyingKey {
	return journal.Digest(sha256.Sum256([]byte("ARM_COMPLIANCE_CIRCUIT_V1"))).Words()
}()

// Unit is a compliance proof together with the instance it commits to.
type Unit struct {
	Proof    []byte
	Instance []byte
}

// Clone returns a deep copy of u.
func (u Unit) Clone() Unit {
	return Unit{
		Proof:    append([]byte(nil), u.Proof...),
		Instance: append([]byte(nil), u.Instance...),
	}
}

// Derive computes the public instance of w. It is a pure function of w.
func Derive(w *Witness) (Instance, error) {
	if err := w.checkLive(); err != nil {
		return Instance{}, err
	}
	consumed, created := &w.ConsumedResource, &w.CreatedResource

	consumedCm, err := resource.Commitment(consumed)
	if err != nil {
		return Instance{}, arm.WithField(err, "consumed_resource")
	}
	nf, err := resource.Nullifier(consumed, w.NfKey)
	if err != nil {
		return Instance{}, err
	}

	root := w.EphemeralRoot
	if !consumed.IsEphemeral {
		if err := w.MerklePath.CheckDepth(); err != nil {
			return Instance{}, err
		}
		root = w.MerklePath.Root(consumedCm)
	}

	createdCm, err := resource.Commitment(created)
	if err != nil {
		return Instance{}, arm.WithField(err, "created_resource")
	}

	rcv, err := curve.ParseScalar(w.Rcv[:])
	if err != nil {
		return Instance{}, arm.WrapError(arm.KindPrecondition, "ARM-PRE-021", "rcv is not a valid non-zero scalar", err)
	}

	var acc curve.Accumulator
	acc.AddBaseMult(&rcv)
	qc := resource.QuantityScalar(&consumed.Quantity)
	acc.AddScalarMult(&qc, resource.Kind(consumed))
	qo := resource.QuantityScalar(&created.Quantity)
	qo.Negate()
	acc.AddScalarMult(&qo, resource.Kind(created))
	delta, err := acc.Point()
	if err != nil {
		return Instance{}, err
	}
	dx, dy := curve.Coordinates(delta)

	return Instance{
		ConsumedNullifier:          nf,
		ConsumedLogicRef:           consumed.LogicRef,
		ConsumedCommitmentTreeRoot: root,
		CreatedCommitment:          createdCm,
		CreatedLogicRef:            created.LogicRef,
		DeltaX:                     dx,
		DeltaY:                     dy,
	}, nil
}

// Create derives the instance of w and asks p for a proof of it. The backend
// must report exactly the derived instance.
//
// Create does not zeroize w; callers that are done with the witness should.
func Create(w *Witness, p proving.Prover) (Unit, error) {
	inst, err := Derive(w)
	if err != nil {
		return Unit{}, err
	}
	wb, err := w.MarshalBinary()
	if err != nil {
		return Unit{}, err
	}
	want := inst.Bytes()

	proof, got, err := p.Prove(VerifyingKey, wb)
	if err != nil {
		var ae *arm.Error
		if errors.As(err, &ae) && ae.Kind == arm.KindBackend {
			return Unit{}, err
		}
		return Unit{}, arm.BackendFailure("ARM-BCK-010", "compliance proving failed", err)
	}
	if !bytes.Equal(got, want) {
		return Unit{}, arm.BackendFailure("ARM-BCK-011", "backend instance does not match the derived instance", nil)
	}
	return Unit{Proof: proof, Instance: want}, nil
}

// GetInstance decodes the instance carried by u.
func GetInstance(u Unit) (Instance, error) {
	return UnmarshalInstance(u.Instance)
}

// Verify checks u's proof with v under VerifyingKey.
func Verify(u Unit, v proving.Verifier) error {
	if _, err := GetInstance(u); err != nil {
		return err
	}
	ok, err := v.Verify(u.Proof, u.Instance, VerifyingKey)
	if err != nil {
		return arm.BackendFailure("ARM-BCK-012", "compliance verification failed", err)
	}
	if !ok {
		return arm.Precondition("ARM-PRE-022", "compliance proof does not verify")
	}
	return nil
}

// Circuit runs the compliance relation natively over an encoded witness.
// Register it with a backend that proves by execution.
func Circuit(witness []byte) ([]byte, error) {
	w, err := UnmarshalWitness(witness)
	if err != nil {
		return nil, err
	}
	inst, err := Derive(&w)
	if err != nil {
		return nil, err
	}
	return inst.Bytes(), nil
}
