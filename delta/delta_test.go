package delta

import (
	"bytes"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"anoma.net/arm"
	"anoma.net/arm/curve"
)

func randomWitness(t *testing.T) Witness {
	t.Helper()
	k, err := curve.RandomScalar(nil)
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	return Witness{SigningKey: k}
}

func pubOf(w Witness) *secp256k1.PublicKey {
	return secp256k1.NewPrivateKey(&w.SigningKey).PubKey()
}

func TestCombine_Laws(t *testing.T) {
	a, b, c := randomWitness(t), randomWitness(t), randomWitness(t)
	ab, ba := Combine(a, b), Combine(b, a)
	if !ab.SigningKey.Equals(&ba.SigningKey) {
		t.Fatalf("Combine is not commutative")
	}
	left := Combine(Combine(a, b), c)
	right := Combine(a, Combine(b, c))
	if !left.SigningKey.Equals(&right.SigningKey) {
		t.Fatalf("Combine is not associative")
	}
	sum := Sum(a, b, c)
	if !sum.SigningKey.Equals(&left.SigningKey) {
		t.Fatalf("Sum disagrees with Combine")
	}
	empty := Sum()
	if !empty.SigningKey.IsZero() {
		t.Fatalf("empty sum must be zero")
	}
}

func TestProve_RecoversSigningPoint(t *testing.T) {
	w := randomWitness(t)
	msg := []byte("actions digest")
	p, err := Prove(msg, w)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	if p.RecoveryID > 3 {
		t.Fatalf("recovery id out of range: %d", p.RecoveryID)
	}
	got, err := p.Recover(msg)
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if !got.IsEqual(pubOf(w)) {
		t.Fatalf("recovered point does not match signing key")
	}

	again, err := Prove(msg, w)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	if again != p {
		t.Fatalf("expected deterministic signatures")
	}
}

func TestProve_ZeroKey(t *testing.T) {
	if _, err := Prove([]byte("m"), Witness{}); arm.RuleID(err) != "ARM-PRE-030" {
		t.Fatalf("expected ARM-PRE-030, got %v", err)
	}
}

func TestVerify_Balance(t *testing.T) {
	w1, w2 := randomWitness(t), randomWitness(t)
	msg := []byte("tx")
	p, err := Prove(msg, Sum(w1, w2))
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	deltas := []*secp256k1.PublicKey{pubOf(w1), pubOf(w2)}
	if err := Verify(msg, p, deltas, nil); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if err := Verify([]byte("other"), p, deltas, nil); arm.RuleID(err) != "ARM-PRE-033" {
		t.Fatalf("expected imbalance for a different message, got %v", err)
	}
	if err := Verify(msg, p, deltas[:1], nil); arm.RuleID(err) != "ARM-PRE-033" {
		t.Fatalf("expected imbalance for missing delta, got %v", err)
	}

	// A declared balance B is subtracted from the delta sum.
	b := pubOf(randomWitness(t))
	var acc curve.Accumulator
	acc.Add(pubOf(w1))
	acc.Add(b)
	shifted, err := acc.Point()
	if err != nil {
		t.Fatalf("Point: %v", err)
	}
	p1, err := Prove(msg, w1)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	if err := Verify(msg, p1, []*secp256k1.PublicKey{shifted}, b); err != nil {
		t.Fatalf("Verify with balance: %v", err)
	}
}

func TestRecover_RejectsBadRecoveryID(t *testing.T) {
	p := Proof{RecoveryID: 4}
	if _, err := p.Recover(nil); !arm.IsKind(err, arm.KindDecode) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestNewWitness(t *testing.T) {
	w := randomWitness(t)
	b := w.Bytes()
	back, err := NewWitness(b[:])
	if err != nil {
		t.Fatalf("NewWitness: %v", err)
	}
	if !back.SigningKey.Equals(&w.SigningKey) {
		t.Fatalf("round trip mismatch")
	}
	if _, err := NewWitness(make([]byte, 31)); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNewWitness_ZeroSum(t *testing.T) {
	w := randomWitness(t)
	var neg Witness
	neg.SigningKey.NegateVal(&w.SigningKey)

	for name, z := range map[string]Witness{"empty": Sum(), "cancelled": Combine(w, neg)} {
		b := z.Bytes()
		back, err := NewWitness(b[:])
		if err != nil {
			t.Fatalf("%s: NewWitness: %v", name, err)
		}
		if !back.SigningKey.IsZero() {
			t.Fatalf("%s: expected zero key", name)
		}
		if _, err := Prove([]byte("m"), back); !arm.IsKind(err, arm.KindPrecondition) {
			t.Fatalf("%s: expected precondition error, got %v", name, err)
		}
	}
	over := bytes.Repeat([]byte{0xff}, 32)
	if _, err := NewWitness(over); err == nil {
		t.Fatalf("expected error for key >= n")
	}
}
