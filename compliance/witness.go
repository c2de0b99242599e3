// Package compliance derives compliance instances from witnesses and
// packages them with a backend proof into compliance units.
package compliance

import (
	"io"

	"anoma.net/arm"
	"anoma.net/arm/curve"
	"anoma.net/arm/journal"
	"anoma.net/arm/merkle"
	"anoma.net/arm/resource"
)

// Witness is the private input of one compliance unit: a consumed resource,
// the created resource replacing it, the consumed resource's inclusion path,
// the nullifier key that consumes it and the blinding scalar of its value
// contribution.
type Witness struct {
	ConsumedResource resource.Resource
	MerklePath       merkle.Path
	EphemeralRoot    journal.Digest
	NfKey            resource.NullifierKey
	CreatedResource  resource.Resource
	Rcv              [curve.ScalarSize]byte

	wiped bool
}

// GenerateRcv draws a fresh blinding scalar. A nil r uses crypto/rand.
func GenerateRcv(r io.Reader) ([curve.ScalarSize]byte, error) {
	k, err := curve.RandomScalar(r)
	if err != nil {
		return [curve.ScalarSize]byte{}, err
	}
	return k.Bytes(), nil
}

// Zeroize wipes the secret material of w. Any later engine call on w fails.
func (w *Witness) Zeroize() {
	for i := range w.NfKey {
		w.NfKey[i] = 0
	}
	for i := range w.Rcv {
		w.Rcv[i] = 0
	}
	w.wiped = true
}

// Zeroized reports whether Zeroize has been called.
func (w *Witness) Zeroized() bool { return w.wiped }

func (w *Witness) checkLive() error {
	if w.wiped {
		return arm.Precondition("ARM-PRE-020", "compliance witness has been zeroized")
	}
	return nil
}

// Clone returns a deep copy of w.
func (w *Witness) Clone() Witness {
	out := *w
	out.MerklePath = w.MerklePath.Clone()
	return out
}

func writeResource(jw *journal.Writer, r *resource.Resource) {
	jw.WriteDigest(r.LogicRef)
	jw.WriteDigest(r.LabelRef)
	jw.WriteDigest(r.ValueRef)
	jw.WriteDigest(r.Quantity.Bytes32())
	jw.WriteBool(r.IsEphemeral)
	jw.WriteDigest(r.Nonce)
	jw.WriteDigest(journal.Digest(r.NkCommitment))
	jw.WriteDigest(r.RandSeed)
}

func readResource(jr *journal.Reader) resource.Resource {
	var r resource.Resource
	r.LogicRef = jr.ReadDigest()
	r.LabelRef = jr.ReadDigest()
	r.ValueRef = jr.ReadDigest()
	q := jr.ReadDigest()
	r.Quantity.SetBytes32(q[:])
	r.IsEphemeral = jr.ReadBool()
	r.Nonce = jr.ReadDigest()
	r.NkCommitment = resource.NullifierKeyCommitment(jr.ReadDigest())
	r.RandSeed = jr.ReadDigest()
	return r
}

// MarshalBinary returns the journal encoding of w handed to the proving
// backend.
func (w *Witness) MarshalBinary() ([]byte, error) {
	if err := w.checkLive(); err != nil {
		return nil, err
	}
	var jw journal.Writer
	writeResource(&jw, &w.ConsumedResource)
	jw.WriteU32(uint32(len(w.MerklePath)))
	for _, n := range w.MerklePath {
		jw.WriteDigest(n.Sibling)
		jw.WriteBool(n.IsRight)
	}
	jw.WriteDigest(w.EphemeralRoot)
	jw.WriteDigest(journal.Digest(w.NfKey))
	writeResource(&jw, &w.CreatedResource)
	jw.WriteDigest(w.Rcv)
	return jw.Bytes(), nil
}

// UnmarshalWitness is the inverse of Witness.MarshalBinary.
func UnmarshalWitness(b []byte) (Witness, error) {
	jr := journal.NewReader(b)
	var w Witness
	w.ConsumedResource = readResource(jr)
	n := jr.ReadU32()
	if jr.Err() == nil && uint64(n) > uint64(len(b))/(journal.DigestSize+journal.WordSize) {
		return Witness{}, arm.NewError(arm.KindDecode, "ARM-DEC-040", "merkle path length exceeds input")
	}
	if jr.Err() == nil {
		w.MerklePath = make(merkle.Path, n)
		for i := range w.MerklePath {
			w.MerklePath[i] = merkle.Node{Sibling: jr.ReadDigest(), IsRight: jr.ReadBool()}
		}
	}
	w.EphemeralRoot = jr.ReadDigest()
	w.NfKey = resource.NullifierKey(jr.ReadDigest())
	w.CreatedResource = readResource(jr)
	w.Rcv = jr.ReadDigest()
	if err := jr.Done(); err != nil {
		return Witness{}, err
	}
	return w, nil
}
