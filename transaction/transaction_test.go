package transaction

import (
	"testing"

	"github.com/stretchr/testify/require"

	"anoma.net/arm"
	"anoma.net/arm/compliance"
	"anoma.net/arm/curve"
	"anoma.net/arm/delta"
	"anoma.net/arm/resource"
)

func TestGenerateDeltaProof_Finalizes(t *testing.T) {
	b := newBackend()
	action, dw := newAction(t, b, newWitness(t, 1, 5, 5), newWitness(t, 2, 9, 9))
	tx := Transaction{Actions: []Action{action}, Delta: WitnessDelta{Witness: dw}}

	final, err := GenerateDeltaProof(tx)
	require.NoError(t, err)
	require.True(t, final.IsFinalized())
	require.Equal(t, tx.Actions, final.Actions)
	require.Nil(t, final.ExpectedBalance)
	require.IsType(t, WitnessDelta{}, tx.Delta, "input must not be mutated")

	require.NoError(t, Verify(final, b))

	_, err = GenerateDeltaProof(final)
	require.True(t, arm.IsKind(err, arm.KindPrecondition))
	require.Equal(t, "ARM-PRE-060", arm.RuleID(err))
}

func TestGenerateDeltaProof_RecoversDeltaSum(t *testing.T) {
	b := newBackend()
	action, dw := newAction(t, b, newWitness(t, 1, 3, 3), newWitness(t, 1, 4, 4))
	final, err := GenerateDeltaProof(Transaction{Actions: []Action{action}, Delta: WitnessDelta{Witness: dw}})
	require.NoError(t, err)

	msg, err := DeltaMessage(final.Actions)
	require.NoError(t, err)
	require.Len(t, msg, 2*2*32)
	got, err := final.Delta.(ProofDelta).Proof.Recover(msg)
	require.NoError(t, err)

	var acc curve.Accumulator
	insts, err := action.Instances()
	require.NoError(t, err)
	for _, inst := range insts {
		p, err := inst.DeltaPoint()
		require.NoError(t, err)
		acc.Add(p)
	}
	want, err := acc.Point()
	require.NoError(t, err)
	require.True(t, got.IsEqual(want))
}

func TestGenerateDeltaProof_Preconditions(t *testing.T) {
	_, err := GenerateDeltaProof(Transaction{})
	require.Equal(t, "ARM-PRE-061", arm.RuleID(err))

	bad := Transaction{
		Actions: []Action{{ComplianceUnits: []compliance.Unit{{Instance: []byte{1}}}}},
		Delta:   WitnessDelta{Witness: delta.Witness{}},
	}
	_, err = GenerateDeltaProof(bad)
	require.True(t, arm.IsKind(err, arm.KindDecode))
	require.Equal(t, "transaction.actions[0].compliance_units[0].instance", arm.FieldOf(err))
}

func TestVerify_RejectsUnbalancedUnlessDeclared(t *testing.T) {
	b := newBackend()
	w := newWitness(t, 7, 10, 4)
	action, dw := newAction(t, b, w)

	tx := Transaction{Actions: []Action{action}, Delta: WitnessDelta{Witness: dw}}
	final, err := GenerateDeltaProof(tx)
	require.NoError(t, err)
	require.Equal(t, "ARM-PRE-033", arm.RuleID(Verify(final, b)))

	balance, err := ExpectedBalance(
		[]resource.Resource{w.ConsumedResource},
		[]resource.Resource{w.CreatedResource},
	)
	require.NoError(t, err)
	require.Len(t, balance, curve.PointSize)

	tx.ExpectedBalance = balance
	final, err = GenerateDeltaProof(tx)
	require.NoError(t, err)
	require.Equal(t, balance, final.ExpectedBalance)
	require.NoError(t, Verify(final, b))
}

func TestVerify_Rejections(t *testing.T) {
	b := newBackend()
	action, dw := newAction(t, b, newWitness(t, 1, 1, 1))
	tx := Transaction{Actions: []Action{action}, Delta: WitnessDelta{Witness: dw}}

	require.Equal(t, "ARM-PRE-064", arm.RuleID(Verify(tx, b)))

	final, err := GenerateDeltaProof(tx)
	require.NoError(t, err)

	missing := final.Clone()
	missing.Actions[0].LogicVerifierInputs = missing.Actions[0].LogicVerifierInputs[:1]
	require.Equal(t, "ARM-PRE-066", arm.RuleID(Verify(missing, b)))

	forged := final.Clone()
	forged.Actions[0].ComplianceUnits[0].Proof[0] ^= 1
	err = Verify(forged, b)
	require.Equal(t, "ARM-PRE-022", arm.RuleID(err))
	require.Equal(t, "actions[0].compliance_units[0]", arm.FieldOf(err))

	badLogic := final.Clone()
	badLogic.Actions[0].LogicVerifierInputs[1].Proof[0] ^= 1
	err = Verify(badLogic, b)
	require.Equal(t, "ARM-PRE-040", arm.RuleID(err))
	require.Equal(t, "actions[0].logic_verifier_inputs[1]", arm.FieldOf(err))

	doubled := final.Clone()
	doubled.Actions = append(doubled.Actions, final.Clone().Actions[0])
	require.Equal(t, "ARM-PRE-065", arm.RuleID(Verify(doubled, b)))

	badBalance := final.Clone()
	badBalance.ExpectedBalance = []byte{1, 2, 3, 4, 5}
	err = Verify(badBalance, b)
	require.True(t, arm.IsKind(err, arm.KindDecode))
	require.Equal(t, "expected_balance", arm.FieldOf(err))
}

func TestCompose(t *testing.T) {
	b := newBackend()
	a1, w1 := newAction(t, b, newWitness(t, 1, 2, 2))
	a2, w2 := newAction(t, b, newWitness(t, 2, 3, 3))
	tx1 := Transaction{Actions: []Action{a1}, Delta: WitnessDelta{Witness: w1}}
	tx2 := Transaction{Actions: []Action{a2}, Delta: WitnessDelta{Witness: w2}}

	composed, err := Compose(tx1, tx2)
	require.NoError(t, err)
	require.Len(t, composed.Actions, 2)

	final, err := GenerateDeltaProof(composed)
	require.NoError(t, err)
	require.NoError(t, Verify(final, b))

	_, err = Compose(final, tx2)
	require.Equal(t, "ARM-PRE-062", arm.RuleID(err))

	tx1.ExpectedBalance = []byte{1}
	_, err = Compose(tx1, tx2)
	require.Equal(t, "ARM-PRE-063", arm.RuleID(err))
}

func TestExpectedBalance_ZeroNetIsAbsent(t *testing.T) {
	w := newWitness(t, 3, 8, 8)
	balance, err := ExpectedBalance(
		[]resource.Resource{w.ConsumedResource},
		[]resource.Resource{w.CreatedResource},
	)
	require.NoError(t, err)
	require.Nil(t, balance)
}

func TestClone_IsDeep(t *testing.T) {
	b := newBackend()
	action, dw := newAction(t, b, newWitness(t, 1, 1, 1))
	tx := Transaction{Actions: []Action{action}, Delta: WitnessDelta{Witness: dw}, ExpectedBalance: []byte{9}}
	cp := tx.Clone()
	require.Equal(t, tx, cp)
	cp.Actions[0].ComplianceUnits[0].Instance[0] ^= 1
	cp.ExpectedBalance[0] = 0
	require.NotEqual(t, tx.Actions[0].ComplianceUnits[0].Instance[0], cp.Actions[0].ComplianceUnits[0].Instance[0])
	require.Equal(t, byte(9), tx.ExpectedBalance[0])
}
