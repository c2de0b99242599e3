package transaction

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"anoma.net/arm"
	"anoma.net/arm/compliance"
	"anoma.net/arm/curve"
	"anoma.net/arm/delta"
	"anoma.net/arm/journal"
	"anoma.net/arm/proving"
	"anoma.net/arm/resource"
)

// Verify checks a finalized transaction: every compliance and logic proof
// verifies with v, every resource tag has exactly one logic proof, no
// nullifier repeats and the delta proof balances.
func Verify(tx Transaction, v proving.Verifier) error {
	pd, ok := tx.Delta.(ProofDelta)
	if !ok {
		return arm.Precondition("ARM-PRE-064", "transaction is not finalized")
	}

	var deltas []*secp256k1.PublicKey
	seen := make(map[journal.Digest]struct{})
	for i, a := range tx.Actions {
		field := fmt.Sprintf("actions[%d]", i)
		insts, err := a.Instances()
		if err != nil {
			return arm.WithField(err, field)
		}
		for j, u := range a.ComplianceUnits {
			if err := compliance.Verify(u, v); err != nil {
				return arm.WithField(err, fmt.Sprintf("%s.compliance_units[%d]", field, j))
			}
			nf := insts[j].ConsumedNullifier
			if _, dup := seen[nf]; dup {
				return arm.Precondition("ARM-PRE-065", "nullifier appears twice in the transaction")
			}
			seen[nf] = struct{}{}
			p, err := insts[j].DeltaPoint()
			if err != nil {
				return arm.WithField(err, fmt.Sprintf("%s.compliance_units[%d].instance", field, j))
			}
			deltas = append(deltas, p)
		}
		if err := verifyLogic(a, insts, v); err != nil {
			return arm.WithField(err, field)
		}
	}

	var balance *secp256k1.PublicKey
	if tx.ExpectedBalance != nil {
		b, err := curve.ParsePoint(tx.ExpectedBalance)
		if err != nil {
			return arm.WithField(err, "expected_balance")
		}
		balance = b
	}
	msg, err := DeltaMessage(tx.Actions)
	if err != nil {
		return err
	}
	return delta.Verify(msg, pd.Proof, deltas, balance)
}

func verifyLogic(a Action, insts []compliance.Instance, v proving.Verifier) error {
	consumed := make(map[journal.Digest]bool, 2*len(insts))
	for _, inst := range insts {
		nf, cm := inst.Tags()
		consumed[nf] = true
		consumed[cm] = false
	}
	if len(a.LogicVerifierInputs) != len(consumed) {
		return arm.Precondition("ARM-PRE-066", "every resource tag needs exactly one logic proof")
	}
	root := Root(insts)
	covered := make(map[journal.Digest]struct{}, len(consumed))
	for k, in := range a.LogicVerifierInputs {
		isConsumed, ok := consumed[in.Tag]
		if !ok {
			return arm.Precondition("ARM-PRE-067", "logic proof for a tag outside the action")
		}
		if _, dup := covered[in.Tag]; dup {
			return arm.Precondition("ARM-PRE-066", "every resource tag needs exactly one logic proof")
		}
		covered[in.Tag] = struct{}{}
		if err := in.Verify(v, isConsumed, root); err != nil {
			return arm.WithField(err, fmt.Sprintf("logic_verifier_inputs[%d]", k))
		}
	}
	return nil
}

// ExpectedBalance returns the declared net value of a transaction consuming
// consumed and creating created: Σ q·K over consumed minus Σ q·K over created,
// as a compressed point. A zero net value has no point and returns nil,
// which is the absent balance.
func ExpectedBalance(consumed, created []resource.Resource) ([]byte, error) {
	var acc curve.Accumulator
	for i := range consumed {
		if !resource.ValidQuantity(&consumed[i].Quantity) {
			return nil, arm.Precondition("ARM-PRE-001", "resource quantity exceeds 128 bits")
		}
		q := resource.QuantityScalar(&consumed[i].Quantity)
		acc.AddScalarMult(&q, resource.Kind(&consumed[i]))
	}
	for i := range created {
		if !resource.ValidQuantity(&created[i].Quantity) {
			return nil, arm.Precondition("ARM-PRE-001", "resource quantity exceeds 128 bits")
		}
		q := resource.QuantityScalar(&created[i].Quantity)
		q.Negate()
		acc.AddScalarMult(&q, resource.Kind(&created[i]))
	}
	if acc.IsInfinity() {
		return nil, nil
	}
	p, err := acc.Point()
	if err != nil {
		return nil, err
	}
	return p.SerializeCompressed(), nil
}
