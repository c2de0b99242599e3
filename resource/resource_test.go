package resource

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"anoma.net/arm"
)

type deterministicReader struct{ b byte }

func (r *deterministicReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = r.b
		r.b++
	}
	return len(p), nil
}

func testResource(t *testing.T, nk NullifierKey, q uint64) Resource {
	t.Helper()
	var r Resource
	r.LogicRef[0] = 1
	r.LabelRef[0] = 2
	r.ValueRef[0] = 3
	r.Nonce[0] = 4
	r.RandSeed[0] = 5
	r.Quantity.SetUint64(q)
	r.NkCommitment = nk.Commit()
	return r
}

func TestNullifierKey_CommitIsDeterministic(t *testing.T) {
	k1, c1, err := GenerateNullifierKey(&deterministicReader{})
	if err != nil {
		t.Fatalf("GenerateNullifierKey: %v", err)
	}
	k2, c2, err := GenerateNullifierKey(&deterministicReader{})
	if err != nil {
		t.Fatalf("GenerateNullifierKey: %v", err)
	}
	if k1 != k2 || c1 != c2 {
		t.Fatalf("expected identical pairs from identical readers")
	}
	if k1.Commit() != c1 {
		t.Fatalf("commitment mismatch")
	}
}

func TestGenerateNullifierKey_RandomnessFailure(t *testing.T) {
	_, _, err := GenerateNullifierKey(errReader{})
	if !arm.IsKind(err, arm.KindRandomness) {
		t.Fatalf("expected KindRandomness, got %v", err)
	}
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestCommitment_BindsEveryField(t *testing.T) {
	nk, _, err := GenerateNullifierKey(nil)
	if err != nil {
		t.Fatalf("GenerateNullifierKey: %v", err)
	}
	base := testResource(t, nk, 10)
	cm, err := Commitment(&base)
	if err != nil {
		t.Fatalf("Commitment: %v", err)
	}

	mutations := map[string]func(r *Resource){
		"logic":     func(r *Resource) { r.LogicRef[31] ^= 1 },
		"label":     func(r *Resource) { r.LabelRef[31] ^= 1 },
		"value":     func(r *Resource) { r.ValueRef[31] ^= 1 },
		"quantity":  func(r *Resource) { r.Quantity.SetUint64(11) },
		"ephemeral": func(r *Resource) { r.IsEphemeral = true },
		"nonce":     func(r *Resource) { r.Nonce[31] ^= 1 },
		"nk":        func(r *Resource) { r.NkCommitment[31] ^= 1 },
		"seed":      func(r *Resource) { r.RandSeed[31] ^= 1 },
	}
	for name, mutate := range mutations {
		r := base
		mutate(&r)
		got, err := Commitment(&r)
		if err != nil {
			t.Fatalf("%s: Commitment: %v", name, err)
		}
		if got == cm {
			t.Fatalf("%s: commitment did not change", name)
		}
	}
}

func TestCommitment_RejectsWideQuantity(t *testing.T) {
	var r Resource
	r.Quantity.Lsh(uint256.NewInt(1), 128)
	if _, err := Commitment(&r); !arm.IsKind(err, arm.KindPrecondition) {
		t.Fatalf("expected precondition error, got %v", err)
	}
}

func TestNullifier_RequiresMatchingKey(t *testing.T) {
	nk, _, err := GenerateNullifierKey(nil)
	if err != nil {
		t.Fatalf("GenerateNullifierKey: %v", err)
	}
	r := testResource(t, nk, 1)
	nf, err := Nullifier(&r, nk)
	if err != nil {
		t.Fatalf("Nullifier: %v", err)
	}
	again, err := Nullifier(&r, nk)
	if err != nil || again != nf {
		t.Fatalf("expected deterministic nullifier")
	}

	other := nk
	other[0] ^= 0xff
	if _, err := Nullifier(&r, other); arm.RuleID(err) != "ARM-PRE-002" {
		t.Fatalf("expected ARM-PRE-002, got %v", err)
	}
}

func TestKind_DependsOnLogicAndLabelOnly(t *testing.T) {
	var nk NullifierKey
	a := testResource(t, nk, 1)
	b := testResource(t, nk, 99)
	b.Nonce[5] = 9
	if !Kind(&a).IsEqual(Kind(&b)) {
		t.Fatalf("expected same kind for same logic and label")
	}
	b.LabelRef[1] = 7
	if Kind(&a).IsEqual(Kind(&b)) {
		t.Fatalf("expected different kind for different label")
	}
}

func TestQuantityScalar(t *testing.T) {
	q := uint256.NewInt(42)
	s := QuantityScalar(q)
	var want [32]byte
	want[31] = 42
	if s.Bytes() != want {
		t.Fatalf("unexpected scalar %x", s.Bytes())
	}
	qb := QuantityBytes(q)
	if qb[15] != 42 {
		t.Fatalf("unexpected quantity bytes %x", qb)
	}
}
