// Package delta proves that a transaction's value contributions balance.
//
// Every compliance unit publishes a point rcv·G + (value terms). When value
// is conserved the value terms cancel, the sum of the points is (Σrcv)·G,
// and knowing Σrcv is proven by a recoverable ECDSA signature under it.
package delta

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"

	"anoma.net/arm"
	"anoma.net/arm/curve"
)

// SignatureSize is the size of r ‖ s.
const SignatureSize = 64

// Witness is the aggregated signing key of a transaction.
type Witness struct {
	SigningKey secp256k1.ModNScalar
}

// NewWitness parses a 32-byte big-endian signing key. The zero key is
// accepted since Sum and Combine can produce it; Prove refuses it.
func NewWitness(key []byte) (Witness, error) {
	k, err := curve.ParseScalarOrZero(key)
	if err != nil {
		return Witness{}, err
	}
	return Witness{SigningKey: k}, nil
}

// Bytes returns the 32-byte big-endian signing key.
func (w Witness) Bytes() [32]byte { return w.SigningKey.Bytes() }

// Combine returns w1 + w2 mod n.
func Combine(w1, w2 Witness) Witness {
	var out Witness
	out.SigningKey.Add2(&w1.SigningKey, &w2.SigningKey)
	return out
}

// Sum folds Combine over ws. The empty sum is the zero key.
func Sum(ws ...Witness) Witness {
	var out Witness
	for _, w := range ws {
		out = Combine(out, w)
	}
	return out
}

// Proof is a recoverable ECDSA signature.
type Proof struct {
	Signature  [SignatureSize]byte
	RecoveryID byte
}

// Hash returns Keccak-256(message), the digest a Proof signs.
func Hash(message []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write(message)
	return h.Sum(nil)
}

// Prove signs Keccak-256(message) with w using a deterministic RFC 6979
// nonce.
func Prove(message []byte, w Witness) (Proof, error) {
	if w.SigningKey.IsZero() {
		return Proof{}, arm.Precondition("ARM-PRE-030", "delta signing key is zero")
	}
	priv := secp256k1.NewPrivateKey(&w.SigningKey)
	compact := ecdsa.SignCompact(priv, Hash(message), true)

	var p Proof
	p.RecoveryID = (compact[0] - 27) & 3
	copy(p.Signature[:], compact[1:])
	return p, nil
}

// Recover returns the public point that produced p over message.
func (p Proof) Recover(message []byte) (*secp256k1.PublicKey, error) {
	if p.RecoveryID > 3 {
		return nil, arm.NewError(arm.KindDecode, "ARM-DEC-050", "recovery id must be 0..3")
	}
	compact := make([]byte, 1+SignatureSize)
	compact[0] = 27 + 4 + p.RecoveryID
	copy(compact[1:], p.Signature[:])
	pub, _, err := ecdsa.RecoverCompact(compact, Hash(message))
	if err != nil {
		return nil, arm.WrapError(arm.KindPrecondition, "ARM-PRE-031", "delta proof does not recover a public key", err)
	}
	return pub, nil
}

// Verify checks that p over message recovers the sum of deltas, less the
// declared balance when one is given.
func Verify(message []byte, p Proof, deltas []*secp256k1.PublicKey, balance *secp256k1.PublicKey) error {
	got, err := p.Recover(message)
	if err != nil {
		return err
	}
	var acc curve.Accumulator
	for _, d := range deltas {
		acc.Add(d)
	}
	if balance != nil {
		acc.Sub(balance)
	}
	want, err := acc.Point()
	if err != nil {
		return arm.Precondition("ARM-PRE-032", "delta sum is the point at infinity")
	}
	if !got.IsEqual(want) {
		return arm.Precondition("ARM-PRE-033", "transaction does not balance")
	}
	return nil
}
