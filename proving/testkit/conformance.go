package testkit

import (
	"bytes"
	"testing"

	"anoma.net/arm/proving"
)

// Fixture is a fresh backend plus one witness it can prove under VK.
// WantInstance is the instance the backend must report for Witness.
type Fixture struct {
	Backend      proving.Backend
	VK           proving.VerifyingKey
	Witness      []byte
	WantInstance []byte
}

// NewFixture constructs an isolated Fixture for a test.
type NewFixture func(t *testing.T) Fixture

func RunBackendConformance(t *testing.T, newFixture NewFixture) {
	t.Helper()

	t.Run("ProveVerifyRoundTrip", func(t *testing.T) {
		f := newFixture(t)
		proof, instance, err := f.Backend.Prove(f.VK, f.Witness)
		if err != nil {
			t.Fatalf("Prove failed: %v", err)
		}
		if !bytes.Equal(instance, f.WantInstance) {
			t.Fatalf("Prove instance mismatch")
		}
		ok, err := f.Backend.Verify(proof, instance, f.VK)
		if err != nil {
			t.Fatalf("Verify failed: %v", err)
		}
		if !ok {
			t.Fatalf("honest proof did not verify")
		}
	})

	t.Run("RejectTamperedInstance", func(t *testing.T) {
		f := newFixture(t)
		proof, instance, err := f.Backend.Prove(f.VK, f.Witness)
		if err != nil {
			t.Fatalf("Prove failed: %v", err)
		}
		bad := append([]byte(nil), instance...)
		bad = append(bad, 0)
		ok, err := f.Backend.Verify(proof, bad, f.VK)
		if err == nil && ok {
			t.Fatalf("tampered instance verified")
		}
	})

	t.Run("RejectTamperedProof", func(t *testing.T) {
		f := newFixture(t)
		proof, instance, err := f.Backend.Prove(f.VK, f.Witness)
		if err != nil {
			t.Fatalf("Prove failed: %v", err)
		}
		if len(proof) == 0 {
			t.Fatalf("empty proof")
		}
		bad := append([]byte(nil), proof...)
		bad[0] ^= 0xff
		ok, err := f.Backend.Verify(bad, instance, f.VK)
		if err == nil && ok {
			t.Fatalf("tampered proof verified")
		}
	})

	t.Run("RejectOtherKey", func(t *testing.T) {
		f := newFixture(t)
		proof, instance, err := f.Backend.Prove(f.VK, f.Witness)
		if err != nil {
			t.Fatalf("Prove failed: %v", err)
		}
		other := append(f.VK.Clone(), 0xdeadbeef)
		ok, err := f.Backend.Verify(proof, instance, other)
		if err == nil && ok {
			t.Fatalf("proof verified under a different key")
		}
	})
}
