package transaction

import (
	"testing"

	"github.com/stretchr/testify/require"

	"anoma.net/arm/compliance"
	"anoma.net/arm/delta"
	"anoma.net/arm/journal"
	"anoma.net/arm/logic"
	"anoma.net/arm/merkle"
	"anoma.net/arm/proving"
	"anoma.net/arm/proving/testkit"
	"anoma.net/arm/resource"
)

var logicKey = proving.VerifyingKey{0x10, 0x20, 0x30}

func newBackend() *testkit.Stub {
	s := testkit.NewStub()
	s.Register(compliance.VerifyingKey, compliance.Circuit)
	return s
}

// newWitness returns a witness consuming a resource of quantity in and
// creating one of the same kind with quantity out.
func newWitness(t *testing.T, label byte, in, out uint64) *compliance.Witness {
	t.Helper()
	nk, nkc, err := resource.GenerateNullifierKey(nil)
	require.NoError(t, err)

	consumed := resource.Resource{NkCommitment: nkc}
	consumed.LogicRef[0] = 0x01
	consumed.LabelRef[0] = label
	consumed.Quantity.SetUint64(in)
	consumed.Nonce[1] = label

	cm, err := resource.Commitment(&consumed)
	require.NoError(t, err)
	path, err := merkle.New(cm).Path(0)
	require.NoError(t, err)
	nf, err := resource.Nullifier(&consumed, nk)
	require.NoError(t, err)

	created := consumed
	created.Quantity.SetUint64(out)
	created.SetNonceFromNullifier(nf)

	rcv, err := compliance.GenerateRcv(nil)
	require.NoError(t, err)
	return &compliance.Witness{
		ConsumedResource: consumed,
		MerklePath:       path,
		NfKey:            nk,
		CreatedResource:  created,
		Rcv:              rcv,
	}
}

// newAction proves every witness and attaches one logic proof per tag.
func newAction(t *testing.T, b proving.Prover, ws ...*compliance.Witness) (Action, delta.Witness) {
	t.Helper()
	var a Action
	var dw delta.Witness
	var insts []compliance.Instance
	for _, w := range ws {
		u, err := compliance.Create(w, b)
		require.NoError(t, err)
		a.ComplianceUnits = append(a.ComplianceUnits, u)
		inst, err := compliance.GetInstance(u)
		require.NoError(t, err)
		insts = append(insts, inst)

		wd, err := delta.NewWitness(w.Rcv[:])
		require.NoError(t, err)
		dw = delta.Combine(dw, wd)
	}
	root := Root(insts)
	for _, inst := range insts {
		nf, cm := inst.Tags()
		for _, tag := range []struct {
			d          journal.Digest
			isConsumed bool
		}{{nf, true}, {cm, false}} {
			in := logic.VerifierInputs{Tag: tag.d, VerifyingKey: logicKey}
			lv := in.ToVerifier(tag.isConsumed, root)
			proof, _, err := b.Prove(lv.VerifyingKey, lv.Instance)
			require.NoError(t, err)
			in.Proof = proof
			a.LogicVerifierInputs = append(a.LogicVerifierInputs, in)
		}
	}
	return a, dw
}
