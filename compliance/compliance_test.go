package compliance

import (
	"bytes"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"anoma.net/arm"
	"anoma.net/arm/journal"
	"anoma.net/arm/merkle"
	"anoma.net/arm/proving"
	"anoma.net/arm/proving/testkit"
	"anoma.net/arm/resource"
)

type deterministicReader struct{ b byte }

func (r *deterministicReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = r.b
		r.b++
	}
	return len(p), nil
}

// testWitness builds a consumed resource held in a real commitment tree and
// a created resource of the same kind and quantity.
func testWitness(t *testing.T, seed byte) *Witness {
	t.Helper()
	rnd := &deterministicReader{b: seed}
	nk, nkc, err := resource.GenerateNullifierKey(rnd)
	if err != nil {
		t.Fatalf("GenerateNullifierKey: %v", err)
	}
	consumed := resource.Resource{NkCommitment: nkc}
	consumed.LogicRef[0] = 0x10
	consumed.LabelRef[0] = 0x20
	consumed.Nonce[0] = seed
	consumed.Quantity.SetUint64(5)

	cm, err := resource.Commitment(&consumed)
	if err != nil {
		t.Fatalf("Commitment: %v", err)
	}
	var other journal.Digest
	other[0] = 0xee
	tree := merkle.New(other, cm)
	path, err := tree.Path(1)
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	nf, err := resource.Nullifier(&consumed, nk)
	if err != nil {
		t.Fatalf("Nullifier: %v", err)
	}

	created := consumed
	created.SetNonceFromNullifier(nf)

	rcv, err := GenerateRcv(rnd)
	if err != nil {
		t.Fatalf("GenerateRcv: %v", err)
	}
	return &Witness{
		ConsumedResource: consumed,
		MerklePath:       path,
		NfKey:            nk,
		CreatedResource:  created,
		Rcv:              rcv,
	}
}

func newBackend() *testkit.Stub {
	s := testkit.NewStub()
	s.Register(VerifyingKey, Circuit)
	return s
}

func TestDerive_BalancedUnitDeltaIsRcvG(t *testing.T) {
	w := testWitness(t, 1)
	inst, err := Derive(w)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	p, err := inst.DeltaPoint()
	if err != nil {
		t.Fatalf("DeltaPoint: %v", err)
	}
	priv := secp256k1.PrivKeyFromBytes(w.Rcv[:])
	if !p.IsEqual(priv.PubKey()) {
		t.Fatalf("expected delta == rcv·G when value is conserved")
	}
	if inst.ConsumedLogicRef != w.ConsumedResource.LogicRef || inst.CreatedLogicRef != w.CreatedResource.LogicRef {
		t.Fatalf("logic refs not copied")
	}
	cm, _ := resource.Commitment(&w.ConsumedResource)
	if inst.ConsumedCommitmentTreeRoot != w.MerklePath.Root(cm) {
		t.Fatalf("root mismatch")
	}
}

func TestDerive_UnbalancedUnitDeltaDiffers(t *testing.T) {
	w := testWitness(t, 2)
	w.CreatedResource.Quantity.SetUint64(3)
	inst, err := Derive(w)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	p, err := inst.DeltaPoint()
	if err != nil {
		t.Fatalf("DeltaPoint: %v", err)
	}
	if p.IsEqual(secp256k1.PrivKeyFromBytes(w.Rcv[:]).PubKey()) {
		t.Fatalf("expected value imbalance to shift delta")
	}
}

func TestCreate_DeterministicInstances(t *testing.T) {
	w := testWitness(t, 3)
	b := newBackend()
	u1, err := Create(w, b)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	u2, err := Create(w, b)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !bytes.Equal(u1.Instance, u2.Instance) {
		t.Fatalf("instances differ across calls")
	}
	if len(u1.Instance) != InstanceSize {
		t.Fatalf("unexpected instance size %d", len(u1.Instance))
	}
	if err := Verify(u1, b); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	inst, err := GetInstance(u1)
	if err != nil {
		t.Fatalf("GetInstance: %v", err)
	}
	want, _ := Derive(w)
	if inst != want {
		t.Fatalf("GetInstance mismatch")
	}
}

type lyingBackend struct{ testkit.Stub }

func (l *lyingBackend) Prove(vk proving.VerifyingKey, witness []byte) ([]byte, []byte, error) {
	return []byte("proof"), make([]byte, InstanceSize), nil
}

func TestCreate_BackendFailures(t *testing.T) {
	w := testWitness(t, 4)

	failing := newBackend()
	failing.FailProve = true
	if _, err := Create(w, failing); arm.RuleID(err) != "ARM-BCK-010" {
		t.Fatalf("expected ARM-BCK-010, got %v", err)
	}
	if _, err := Create(w, &lyingBackend{}); arm.RuleID(err) != "ARM-BCK-011" {
		t.Fatalf("expected ARM-BCK-011, got %v", err)
	}
}

func TestZeroize_ConsumesWitness(t *testing.T) {
	w := testWitness(t, 5)
	w.Zeroize()
	if !w.Zeroized() {
		t.Fatalf("expected zeroized")
	}
	if w.Rcv != ([32]byte{}) || w.NfKey != (resource.NullifierKey{}) {
		t.Fatalf("secret material not wiped")
	}
	if _, err := Create(w, newBackend()); arm.RuleID(err) != "ARM-PRE-020" {
		t.Fatalf("expected ARM-PRE-020, got %v", err)
	}
	if _, err := w.MarshalBinary(); !arm.IsKind(err, arm.KindPrecondition) {
		t.Fatalf("expected precondition error, got %v", err)
	}
}

func TestDerive_Preconditions(t *testing.T) {
	w := testWitness(t, 6)
	w.NfKey[0] ^= 1
	if _, err := Derive(w); arm.RuleID(err) != "ARM-PRE-002" {
		t.Fatalf("wrong nullifier key: got %v", err)
	}

	w = testWitness(t, 6)
	w.MerklePath = w.MerklePath[:3]
	if _, err := Derive(w); arm.RuleID(err) != "ARM-PRE-010" {
		t.Fatalf("short path: got %v", err)
	}

	w = testWitness(t, 6)
	w.Rcv = [32]byte{}
	if _, err := Derive(w); arm.RuleID(err) != "ARM-PRE-021" {
		t.Fatalf("zero rcv: got %v", err)
	}
}

func TestDerive_EphemeralUsesEphemeralRoot(t *testing.T) {
	w := testWitness(t, 7)
	w.ConsumedResource.IsEphemeral = true
	w.MerklePath = nil
	w.EphemeralRoot[3] = 0x33
	inst, err := Derive(w)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if inst.ConsumedCommitmentTreeRoot != w.EphemeralRoot {
		t.Fatalf("expected ephemeral root")
	}
}

func TestCircuit_MatchesDerive(t *testing.T) {
	w := testWitness(t, 8)
	wb, err := w.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	back, err := UnmarshalWitness(wb)
	if err != nil {
		t.Fatalf("UnmarshalWitness: %v", err)
	}
	if back.ConsumedResource != w.ConsumedResource || back.Rcv != w.Rcv || len(back.MerklePath) != merkle.Depth {
		t.Fatalf("witness round trip mismatch")
	}
	got, err := Circuit(wb)
	if err != nil {
		t.Fatalf("Circuit: %v", err)
	}
	want, _ := Derive(w)
	if !bytes.Equal(got, want.Bytes()) {
		t.Fatalf("circuit output differs from Derive")
	}
	if _, err := Circuit(wb[:len(wb)-4]); !arm.IsKind(err, arm.KindDecode) {
		t.Fatalf("expected decode error for truncated witness, got %v", err)
	}
}

func TestGetInstance_RejectsForeignBytes(t *testing.T) {
	for _, n := range []int{0, 32, InstanceSize - 4, InstanceSize + 4} {
		if _, err := GetInstance(Unit{Instance: make([]byte, n)}); !arm.IsKind(err, arm.KindDecode) {
			t.Fatalf("len %d: expected decode error, got %v", n, err)
		}
	}
}
