package keys

import (
	"bytes"
	"testing"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
)

func testSeed(b byte) []byte {
	seed := make([]byte, SeedSize)
	for i := range seed {
		seed[i] = b + byte(i)
	}
	return seed
}

func TestSigners_SignAndVerify(t *testing.T) {
	for _, scheme := range []string{SchemeEd25519, SchemeDilithium3} {
		s, err := NewSigner(scheme, testSeed(1))
		if err != nil {
			t.Fatalf("%s: NewSigner: %v", scheme, err)
		}
		if s.Scheme() != scheme {
			t.Fatalf("%s: unexpected scheme %q", scheme, s.Scheme())
		}
		msg := []byte("instance digest")
		sig, err := s.Sign(msg)
		if err != nil {
			t.Fatalf("%s: Sign: %v", scheme, err)
		}
		if !Verify(scheme, s.PublicKey(), msg, sig) {
			t.Fatalf("%s: signature did not verify", scheme)
		}
		if Verify(scheme, s.PublicKey(), []byte("other"), sig) {
			t.Fatalf("%s: signature verified over the wrong message", scheme)
		}
	}
}

func TestDilithium3_SignatureSize(t *testing.T) {
	s, err := NewSigner(SchemeDilithium3, testSeed(9))
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	sig, err := s.Sign([]byte("m"))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if len(sig) != mode3.SignatureSize {
		t.Fatalf("unexpected signature size: got %d want %d", len(sig), mode3.SignatureSize)
	}
}

func TestNewSigner_DeterministicFromSeed(t *testing.T) {
	a, err := NewSigner(SchemeDilithium3, testSeed(3))
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	b, err := NewSigner(SchemeDilithium3, testSeed(3))
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	if !bytes.Equal(a.PublicKey(), b.PublicKey()) {
		t.Fatalf("expected same public key from same seed")
	}
}

func TestNewSigner_Rejects(t *testing.T) {
	if _, err := NewSigner(SchemeEd25519, make([]byte, 16)); err == nil {
		t.Fatalf("expected short seed to be rejected")
	}
	if _, err := NewSigner("rsa", testSeed(0)); err == nil {
		t.Fatalf("expected unknown scheme to be rejected")
	}
	if Verify("rsa", nil, nil, nil) {
		t.Fatalf("expected unknown scheme to fail verification")
	}
}

func TestKeyID_RoundTrip(t *testing.T) {
	s, err := NewSigner(SchemeEd25519, testSeed(5))
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	scheme, pub, err := ParseKeyID(KeyID(s))
	if err != nil {
		t.Fatalf("ParseKeyID: %v", err)
	}
	if scheme != SchemeEd25519 || !bytes.Equal(pub, s.PublicKey()) {
		t.Fatalf("round trip mismatch")
	}
	if _, _, err := ParseKeyID("nocolon"); err == nil {
		t.Fatalf("expected error")
	}
}
