// Package transaction assembles actions into transactions, finalizes them
// with a delta proof and verifies finalized transactions.
package transaction

import (
	"fmt"

	"anoma.net/arm"
	"anoma.net/arm/compliance"
	"anoma.net/arm/delta"
	"anoma.net/arm/journal"
	"anoma.net/arm/logic"
	"anoma.net/arm/merkle"
)

// Delta is the balance component of a transaction: the signing key while
// the transaction is being built, the proof once it is finalized. Its only
// implementations are WitnessDelta and ProofDelta.
type Delta interface {
	isDelta()
	clone() Delta
}

type WitnessDelta struct {
	Witness delta.Witness
}

type ProofDelta struct {
	Proof delta.Proof
}

func (WitnessDelta) isDelta() {}
func (ProofDelta) isDelta()   {}

func (d WitnessDelta) clone() Delta { return d }
func (d ProofDelta) clone() Delta   { return d }

// Action groups compliance units with the logic proofs of the resources they
// touch.
type Action struct {
	ComplianceUnits     []compliance.Unit
	LogicVerifierInputs []logic.VerifierInputs
}

// Clone returns a deep copy of a.
func (a Action) Clone() Action {
	var out Action
	if a.ComplianceUnits != nil {
		out.ComplianceUnits = make([]compliance.Unit, len(a.ComplianceUnits))
		for i, u := range a.ComplianceUnits {
			out.ComplianceUnits[i] = u.Clone()
		}
	}
	if a.LogicVerifierInputs != nil {
		out.LogicVerifierInputs = make([]logic.VerifierInputs, len(a.LogicVerifierInputs))
		for i, v := range a.LogicVerifierInputs {
			out.LogicVerifierInputs[i] = v.Clone()
		}
	}
	return out
}

// Instances decodes the compliance instances of a in order.
func (a Action) Instances() ([]compliance.Instance, error) {
	out := make([]compliance.Instance, len(a.ComplianceUnits))
	for j, u := range a.ComplianceUnits {
		inst, err := compliance.GetInstance(u)
		if err != nil {
			return nil, arm.WithField(err, fmt.Sprintf("compliance_units[%d].instance", j))
		}
		out[j] = inst
	}
	return out, nil
}

// Root returns the action tree root logic proofs of a commit to: the compact
// tree over every unit's consumed nullifier and created commitment, in order.
func Root(instances []compliance.Instance) journal.Digest {
	tags := make([]journal.Digest, 0, 2*len(instances))
	for _, inst := range instances {
		nf, cm := inst.Tags()
		tags = append(tags, nf, cm)
	}
	return merkle.CompactRoot(tags)
}

// Transaction is a set of actions plus their balance component.
// ExpectedBalance is nil when absent.
type Transaction struct {
	Actions         []Action
	Delta           Delta
	ExpectedBalance []byte
}

// Clone returns a deep copy of tx.
func (tx Transaction) Clone() Transaction {
	var out Transaction
	if tx.Actions != nil {
		out.Actions = make([]Action, len(tx.Actions))
		for i, a := range tx.Actions {
			out.Actions[i] = a.Clone()
		}
	}
	if tx.Delta != nil {
		out.Delta = tx.Delta.clone()
	}
	if tx.ExpectedBalance != nil {
		out.ExpectedBalance = append([]byte{}, tx.ExpectedBalance...)
	}
	return out
}

// IsFinalized reports whether tx carries a delta proof.
func (tx Transaction) IsFinalized() bool {
	_, ok := tx.Delta.(ProofDelta)
	return ok
}

// DeltaMessage returns the message the delta proof signs: for every action
// in order, for every compliance unit in order, the consumed nullifier
// followed by the created commitment.
func DeltaMessage(actions []Action) ([]byte, error) {
	var msg []byte
	for i, a := range actions {
		insts, err := a.Instances()
		if err != nil {
			return nil, arm.WithField(err, fmt.Sprintf("actions[%d]", i))
		}
		for _, inst := range insts {
			nf, cm := inst.Tags()
			msg = append(msg, nf[:]...)
			msg = append(msg, cm[:]...)
		}
	}
	return msg, nil
}

// GenerateDeltaProof returns a copy of tx whose witness delta is replaced by
// the proof over DeltaMessage(tx.Actions). Actions and expected balance are
// unchanged. A transaction that is already finalized is refused.
func GenerateDeltaProof(tx Transaction) (Transaction, error) {
	wd, ok := tx.Delta.(WitnessDelta)
	if !ok {
		if tx.IsFinalized() {
			return Transaction{}, arm.Precondition("ARM-PRE-060", "transaction already carries a delta proof")
		}
		return Transaction{}, arm.Precondition("ARM-PRE-061", "transaction has no delta witness")
	}
	msg, err := DeltaMessage(tx.Actions)
	if err != nil {
		return Transaction{}, arm.WithField(err, "transaction")
	}
	p, err := delta.Prove(msg, wd.Witness)
	if err != nil {
		return Transaction{}, err
	}
	out := tx.Clone()
	out.Delta = ProofDelta{Proof: p}
	return out, nil
}

// Compose merges two unfinalized transactions: actions are concatenated and
// witnesses combined. Neither may declare an expected balance.
func Compose(a, b Transaction) (Transaction, error) {
	wa, okA := a.Delta.(WitnessDelta)
	wb, okB := b.Delta.(WitnessDelta)
	if !okA || !okB {
		return Transaction{}, arm.Precondition("ARM-PRE-062", "only transactions with delta witnesses can be composed")
	}
	if a.ExpectedBalance != nil || b.ExpectedBalance != nil {
		return Transaction{}, arm.Precondition("ARM-PRE-063", "transactions with an expected balance cannot be composed")
	}
	ca, cb := a.Clone(), b.Clone()
	return Transaction{
		Actions: append(ca.Actions, cb.Actions...),
		Delta:   WitnessDelta{Witness: delta.Combine(wa.Witness, wb.Witness)},
	}, nil
}
