// Package logic holds the per-resource logic proof payloads carried by an
// action and converts backend verification journals into them.
package logic

import (
	"anoma.net/arm"
	"anoma.net/arm/journal"
	"anoma.net/arm/proving"
)

// ExpirableBlob is a payload with a deletion criterion.
type ExpirableBlob struct {
	Blob              []uint32
	DeletionCriterion uint32
}

// AppData bundles the four payload categories of a resource logic.
type AppData struct {
	ResourcePayload    []ExpirableBlob
	DiscoveryPayload   []ExpirableBlob
	ExternalPayload    []ExpirableBlob
	ApplicationPayload []ExpirableBlob
}

// VerifierInputs is the external verification payload of one resource logic.
type VerifierInputs struct {
	Tag          journal.Digest
	VerifyingKey proving.VerifyingKey
	AppData      AppData
	Proof        []byte
}

// Verifier is a logic proof as the backend reports it: the proof, its raw
// journal and the key it was made under.
type Verifier struct {
	Proof        []byte
	Instance     []byte
	VerifyingKey proving.VerifyingKey
}

// Instance is the decoded journal of a logic proof.
type Instance struct {
	Tag        journal.Digest
	IsConsumed bool
	Root       journal.Digest
	AppData    AppData
}

func (a *AppData) payloads() []*[]ExpirableBlob {
	return []*[]ExpirableBlob{&a.ResourcePayload, &a.DiscoveryPayload, &a.ExternalPayload, &a.ApplicationPayload}
}

// Clone returns a deep copy of a.
func (a AppData) Clone() AppData {
	var out AppData
	src, dst := a.payloads(), out.payloads()
	for i := range src {
		if *src[i] == nil {
			continue
		}
		cp := make([]ExpirableBlob, len(*src[i]))
		for j, b := range *src[i] {
			cp[j] = ExpirableBlob{Blob: append([]uint32(nil), b.Blob...), DeletionCriterion: b.DeletionCriterion}
		}
		*dst[i] = cp
	}
	return out
}

// Clone returns a deep copy of v.
func (v VerifierInputs) Clone() VerifierInputs {
	return VerifierInputs{
		Tag:          v.Tag,
		VerifyingKey: v.VerifyingKey.Clone(),
		AppData:      v.AppData.Clone(),
		Proof:        append([]byte(nil), v.Proof...),
	}
}

// Bytes returns the journal encoding of i.
func (i Instance) Bytes() []byte {
	var jw journal.Writer
	jw.WriteDigest(i.Tag)
	jw.WriteBool(i.IsConsumed)
	jw.WriteDigest(i.Root)
	for _, p := range i.AppData.payloads() {
		jw.WriteU32(uint32(len(*p)))
		for _, b := range *p {
			jw.WriteWords(b.Blob)
			jw.WriteU32(b.DeletionCriterion)
		}
	}
	return jw.Bytes()
}

// UnmarshalInstance decodes a logic journal.
func UnmarshalInstance(b []byte) (Instance, error) {
	jr := journal.NewReader(b)
	var i Instance
	i.Tag = jr.ReadDigest()
	i.IsConsumed = jr.ReadBool()
	i.Root = jr.ReadDigest()
	for _, p := range i.AppData.payloads() {
		n := jr.ReadU32()
		if jr.Err() != nil || n == 0 {
			continue
		}
		// Each blob takes at least two words.
		if uint64(n)*2*journal.WordSize > uint64(len(b)) {
			return Instance{}, arm.NewError(arm.KindDecode, "ARM-DEC-060", "payload count exceeds input")
		}
		blobs := make([]ExpirableBlob, n)
		for j := range blobs {
			blobs[j].Blob = jr.ReadWords()
			blobs[j].DeletionCriterion = jr.ReadU32()
		}
		*p = blobs
	}
	if err := jr.Done(); err != nil {
		return Instance{}, err
	}
	return i, nil
}

// Convert adapts a backend verifier into the inputs an action carries. It
// fails with a decode error on the "instance" field if the journal is
// malformed.
func Convert(v Verifier) (VerifierInputs, error) {
	inst, err := UnmarshalInstance(v.Instance)
	if err != nil {
		return VerifierInputs{}, arm.WithField(err, "instance")
	}
	return VerifierInputs{
		Tag:          inst.Tag,
		VerifyingKey: v.VerifyingKey.Clone(),
		AppData:      inst.AppData,
		Proof:        append([]byte(nil), v.Proof...),
	}, nil
}

// ToVerifier rebuilds the verifier whose journal has v's tag and app data
// plus the given consumption flag and action root. It inverts Convert.
func (v VerifierInputs) ToVerifier(isConsumed bool, root journal.Digest) Verifier {
	inst := Instance{Tag: v.Tag, IsConsumed: isConsumed, Root: root, AppData: v.AppData}
	return Verifier{
		Proof:        append([]byte(nil), v.Proof...),
		Instance:     inst.Bytes(),
		VerifyingKey: v.VerifyingKey.Clone(),
	}
}

// Verify checks the logic proof of v with backend b.
func (v VerifierInputs) Verify(b proving.Verifier, isConsumed bool, root journal.Digest) error {
	lv := v.ToVerifier(isConsumed, root)
	ok, err := b.Verify(lv.Proof, lv.Instance, lv.VerifyingKey)
	if err != nil {
		return arm.BackendFailure("ARM-BCK-020", "logic verification failed", err)
	}
	if !ok {
		return arm.Precondition("ARM-PRE-040", "logic proof does not verify")
	}
	return nil
}
