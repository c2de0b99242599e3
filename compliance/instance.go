package compliance

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"anoma.net/arm/curve"
	"anoma.net/arm/journal"
)

// InstanceSize is the encoded size of an Instance.
const InstanceSize = 7 * journal.DigestSize

// Instance is the public output of a compliance proof.
type Instance struct {
	ConsumedNullifier          journal.Digest
	ConsumedLogicRef           journal.Digest
	ConsumedCommitmentTreeRoot journal.Digest
	CreatedCommitment          journal.Digest
	CreatedLogicRef            journal.Digest
	DeltaX                     journal.Digest
	DeltaY                     journal.Digest
}

// Bytes returns the journal encoding of i.
func (i Instance) Bytes() []byte {
	var jw journal.Writer
	jw.WriteDigest(i.ConsumedNullifier)
	jw.WriteDigest(i.ConsumedLogicRef)
	jw.WriteDigest(i.ConsumedCommitmentTreeRoot)
	jw.WriteDigest(i.CreatedCommitment)
	jw.WriteDigest(i.CreatedLogicRef)
	jw.WriteDigest(i.DeltaX)
	jw.WriteDigest(i.DeltaY)
	return jw.Bytes()
}

// UnmarshalInstance decodes instance bytes. Anything other than exactly
// seven digests is rejected.
func UnmarshalInstance(b []byte) (Instance, error) {
	jr := journal.NewReader(b)
	i := Instance{
		ConsumedNullifier:          jr.ReadDigest(),
		ConsumedLogicRef:           jr.ReadDigest(),
		ConsumedCommitmentTreeRoot: jr.ReadDigest(),
		CreatedCommitment:          jr.ReadDigest(),
		CreatedLogicRef:            jr.ReadDigest(),
		DeltaX:                     jr.ReadDigest(),
		DeltaY:                     jr.ReadDigest(),
	}
	if err := jr.Done(); err != nil {
		return Instance{}, err
	}
	return i, nil
}

// DeltaPoint returns the value contribution (DeltaX, DeltaY) as a point.
func (i Instance) DeltaPoint() (*secp256k1.PublicKey, error) {
	return curve.PointFromCoordinates(i.DeltaX, i.DeltaY)
}

// Tags returns the consumed nullifier and created commitment, the two
// resource tags the unit publishes.
func (i Instance) Tags() (consumed, created journal.Digest) {
	return i.ConsumedNullifier, i.CreatedCommitment
}
