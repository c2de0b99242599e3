// Package resource defines resources and the commitments, nullifiers and
// kinds derived from them.
package resource

import (
	"crypto/rand"
	"crypto/sha256"
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/holiman/uint256"

	"anoma.net/arm"
	"anoma.net/arm/curve"
	"anoma.net/arm/journal"
)

// MaxQuantityBits bounds resource quantities.
const MaxQuantityBits = 128

const (
	commitmentDomain   = "ARM_RESOURCE_COMMITMENT"
	nullifierDomain    = "ARM_NULLIFIER"
	nkCommitmentDomain = "ARM_NK_COMMITMENT"
	kindDomain         = "ARM_KIND"
)

// Resource is the unit of value the protocol moves. Every field enters the
// commitment, so two resources with the same commitment are identical.
type Resource struct {
	LogicRef     journal.Digest
	LabelRef     journal.Digest
	ValueRef     journal.Digest
	Quantity     uint256.Int
	IsEphemeral  bool
	Nonce        journal.Digest
	NkCommitment NullifierKeyCommitment
	RandSeed     journal.Digest
}

// NullifierKey is the secret that authorizes consuming a resource.
type NullifierKey [32]byte

// NullifierKeyCommitment binds a resource to a NullifierKey without
// revealing it.
type NullifierKeyCommitment [32]byte

// Commit returns the commitment of k.
func (k NullifierKey) Commit() NullifierKeyCommitment {
	h := sha256.New()
	_, _ = h.Write([]byte(nkCommitmentDomain))
	_, _ = h.Write(k[:])
	var c NullifierKeyCommitment
	copy(c[:], h.Sum(nil))
	return c
}

// GenerateNullifierKey draws a random key from r (nil means crypto/rand) and
// returns it with its commitment.
func GenerateNullifierKey(r io.Reader) (NullifierKey, NullifierKeyCommitment, error) {
	if r == nil {
		r = rand.Reader
	}
	var k NullifierKey
	if _, err := io.ReadFull(r, k[:]); err != nil {
		return NullifierKey{}, NullifierKeyCommitment{}, arm.RandomnessFailure("ARM-RND-002", err)
	}
	return k, k.Commit(), nil
}

// ValidQuantity reports whether q fits the protocol's quantity range.
func ValidQuantity(q *uint256.Int) bool {
	return q.BitLen() <= MaxQuantityBits
}

// QuantityBytes returns q as a 16-byte big-endian value. q must satisfy
// ValidQuantity.
func QuantityBytes(q *uint256.Int) [16]byte {
	full := q.Bytes32()
	var out [16]byte
	copy(out[:], full[16:])
	return out
}

// QuantityScalar returns q as a scalar mod n.
func QuantityScalar(q *uint256.Int) secp256k1.ModNScalar {
	b := q.Bytes32()
	var s secp256k1.ModNScalar
	s.SetBytes(&b)
	return s
}

// Commitment returns the commitment of r.
func Commitment(r *Resource) (journal.Digest, error) {
	if !ValidQuantity(&r.Quantity) {
		return journal.Digest{}, arm.Precondition("ARM-PRE-001", "resource quantity exceeds 128 bits")
	}
	q := QuantityBytes(&r.Quantity)
	h := sha256.New()
	_, _ = h.Write([]byte(commitmentDomain))
	_, _ = h.Write(r.LogicRef[:])
	_, _ = h.Write(r.LabelRef[:])
	_, _ = h.Write(r.ValueRef[:])
	_, _ = h.Write(q[:])
	if r.IsEphemeral {
		_, _ = h.Write([]byte{1})
	} else {
		_, _ = h.Write([]byte{0})
	}
	_, _ = h.Write(r.Nonce[:])
	_, _ = h.Write(r.NkCommitment[:])
	_, _ = h.Write(r.RandSeed[:])
	var d journal.Digest
	copy(d[:], h.Sum(nil))
	return d, nil
}

// Nullifier returns the nullifier that consumes r. nk must open
// r.NkCommitment.
func Nullifier(r *Resource, nk NullifierKey) (journal.Digest, error) {
	if nk.Commit() != r.NkCommitment {
		return journal.Digest{}, arm.Precondition("ARM-PRE-002", "nullifier key does not match the resource's commitment")
	}
	cm, err := Commitment(r)
	if err != nil {
		return journal.Digest{}, err
	}
	h := sha256.New()
	_, _ = h.Write([]byte(nullifierDomain))
	_, _ = h.Write(nk[:])
	_, _ = h.Write(r.Nonce[:])
	_, _ = h.Write(r.RandSeed[:])
	_, _ = h.Write(cm[:])
	var d journal.Digest
	copy(d[:], h.Sum(nil))
	return d, nil
}

// Kind returns the value base point of r's kind. Resources with the same
// logic and label are fungible.
func Kind(r *Resource) *secp256k1.PublicKey {
	return curve.HashToCurve(kindDomain, r.LogicRef[:], r.LabelRef[:])
}

// SetNonceFromNullifier sets r's nonce to the nullifier of the resource it
// replaces, which makes the created commitment unique.
func (r *Resource) SetNonceFromNullifier(nf journal.Digest) {
	r.Nonce = nf
}
