// Package proving defines the interface to the external proof system.
//
// The core never computes validity proofs itself. It hands a witness to a
// Prover under a verifying key and gets back opaque proof bytes plus the
// public instance the proof commits to. Verification is the inverse
// capability. Any zkVM, SNARK or attestation service can sit behind these
// interfaces.
package proving

import (
	"crypto/sha256"
	"encoding/hex"

	"anoma.net/arm/journal"
)

// VerifyingKey identifies the relation a proof attests to. Word order is
// significant.
type VerifyingKey []uint32

// Bytes returns the little-endian encoding of vk.
func (vk VerifyingKey) Bytes() []byte { return journal.WordsToBytes(vk) }

// ID returns a fixed-size identifier for vk.
func (vk VerifyingKey) ID() journal.Digest {
	return journal.Digest(sha256.Sum256(vk.Bytes()))
}

func (vk VerifyingKey) String() string {
	id := vk.ID()
	return hex.EncodeToString(id[:8])
}

// Equal reports whether vk and other are the same key.
func (vk VerifyingKey) Equal(other VerifyingKey) bool {
	if len(vk) != len(other) {
		return false
	}
	for i := range vk {
		if vk[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of vk.
func (vk VerifyingKey) Clone() VerifyingKey {
	if vk == nil {
		return nil
	}
	return append(VerifyingKey(nil), vk...)
}

// Prover computes a proof that witness satisfies the relation named by vk.
// It returns the proof and the public instance bytes the proof commits to.
type Prover interface {
	Prove(vk VerifyingKey, witness []byte) (proof, instance []byte, err error)
}

// Verifier checks a proof against an instance under vk. A false result with
// a nil error means the proof is well-formed but invalid.
type Verifier interface {
	Verify(proof, instance []byte, vk VerifyingKey) (bool, error)
}

// Backend is a full proving capability.
type Backend interface {
	Prover
	Verifier
}

// Circuit executes a relation natively: it maps a witness to the instance a
// proof over that witness would commit to.
type Circuit func(witness []byte) (instance []byte, err error)
