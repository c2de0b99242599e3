package keys

import (
	"testing"
)

func TestDeriveRoleSeedDeterministic(t *testing.T) {
	root := testSeed(0)

	a, err := DeriveRoleSeed(root, "compliance")
	if err != nil {
		t.Fatalf("DeriveRoleSeed: %v", err)
	}
	b, err := DeriveRoleSeed(root, "compliance")
	if err != nil {
		t.Fatalf("DeriveRoleSeed: %v", err)
	}
	if string(a) != string(b) {
		t.Fatalf("expected deterministic derivation")
	}

	c, err := DeriveRoleSeed(root, "logic")
	if err != nil {
		t.Fatalf("DeriveRoleSeed: %v", err)
	}
	if string(a) == string(c) {
		t.Fatalf("expected different roles to derive different seeds")
	}

	if _, err := DeriveRoleSeed(root, "bad role"); err == nil {
		t.Fatalf("expected invalid role to be rejected")
	}
}

func TestDeriveRoleSeedRejectsShortRoot(t *testing.T) {
	if _, err := DeriveRoleSeed(make([]byte, SeedSize-1), "attest"); err == nil {
		t.Fatalf("expected short root seed to be rejected")
	}
	seed, err := DeriveRoleSeed(testSeed(1), "attest")
	if err != nil {
		t.Fatalf("DeriveRoleSeed: %v", err)
	}
	if len(seed) != SeedSize {
		t.Fatalf("derived seed has %d bytes", len(seed))
	}
}
