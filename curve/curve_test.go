package curve

import (
	"bytes"
	"errors"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

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

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestGenerateKeypair_PublicIsSecretTimesG(t *testing.T) {
	for i := 0; i < 16; i++ {
		kp, err := GenerateKeypair(nil)
		if err != nil {
			t.Fatalf("GenerateKeypair: %v", err)
		}
		if !kp.Valid() {
			t.Fatalf("public key does not match secret")
		}
		var want secp256k1.JacobianPoint
		secp256k1.ScalarBaseMultNonConst(&kp.Secret.Key, &want)
		want.ToAffine()
		if !secp256k1.NewPublicKey(&want.X, &want.Y).IsEqual(kp.Public) {
			t.Fatalf("public != secret*G")
		}
	}
}

func TestGenerateKeypair_Deterministic(t *testing.T) {
	a, err := GenerateKeypair(&deterministicReader{})
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	b, err := GenerateKeypair(&deterministicReader{})
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	if !bytes.Equal(a.Secret.Serialize(), b.Secret.Serialize()) {
		t.Fatalf("expected identical secrets from identical readers")
	}
}

func TestGenerateKeypair_RandomnessFailure(t *testing.T) {
	_, err := GenerateKeypair(failingReader{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !arm.IsKind(err, arm.KindRandomness) {
		t.Fatalf("expected KindRandomness, got %v", err)
	}
}

func TestParseScalar_Rejects(t *testing.T) {
	if _, err := ParseScalar(make([]byte, 31)); !arm.IsKind(err, arm.KindDecode) {
		t.Fatalf("short scalar: got %v", err)
	}
	if _, err := ParseScalar(make([]byte, 32)); arm.RuleID(err) != "ARM-DEC-012" {
		t.Fatalf("zero scalar: got %v", err)
	}
	over := bytes.Repeat([]byte{0xff}, 32)
	if _, err := ParseScalar(over); arm.RuleID(err) != "ARM-DEC-011" {
		t.Fatalf("overflowing scalar: got %v", err)
	}
}

func TestParseScalarOrZero(t *testing.T) {
	k, err := ParseScalarOrZero(make([]byte, 32))
	if err != nil || !k.IsZero() {
		t.Fatalf("zero scalar: got %v, %v", k, err)
	}
	if _, err := ParseScalarOrZero(make([]byte, 33)); arm.RuleID(err) != "ARM-DEC-010" {
		t.Fatalf("long scalar: got %v", err)
	}
	if _, err := ParseScalarOrZero(bytes.Repeat([]byte{0xff}, 32)); arm.RuleID(err) != "ARM-DEC-011" {
		t.Fatalf("overflowing scalar: got %v", err)
	}
}

func TestParsePoint_RoundTrip(t *testing.T) {
	kp, err := GenerateKeypair(&deterministicReader{b: 7})
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	p, err := ParsePoint(kp.Public.SerializeCompressed())
	if err != nil {
		t.Fatalf("ParsePoint: %v", err)
	}
	if !p.IsEqual(kp.Public) {
		t.Fatalf("round trip mismatch")
	}
	if _, err := ParsePoint(kp.Public.SerializeUncompressed()); err == nil {
		t.Fatalf("expected uncompressed encoding to be rejected")
	}
	bad := kp.Public.SerializeCompressed()
	bad[0] = 0x05
	if _, err := ParsePoint(bad); !arm.IsKind(err, arm.KindDecode) {
		t.Fatalf("bad prefix: got %v", err)
	}
}

func TestCoordinates_RoundTrip(t *testing.T) {
	kp, err := GenerateKeypair(nil)
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	x, y := Coordinates(kp.Public)
	p, err := PointFromCoordinates(x, y)
	if err != nil {
		t.Fatalf("PointFromCoordinates: %v", err)
	}
	if !p.IsEqual(kp.Public) {
		t.Fatalf("round trip mismatch")
	}
	y[31] ^= 1
	if _, err := PointFromCoordinates(x, y); err == nil {
		t.Fatalf("expected off-curve coordinates to be rejected")
	}
}

func TestHashToCurve_DeterministicAndDomainSeparated(t *testing.T) {
	a := HashToCurve("test-domain", []byte("logic"), []byte("label"))
	b := HashToCurve("test-domain", []byte("logic"), []byte("label"))
	if !a.IsEqual(b) {
		t.Fatalf("expected deterministic output")
	}
	c := HashToCurve("other-domain", []byte("logic"), []byte("label"))
	if a.IsEqual(c) {
		t.Fatalf("expected different domains to give different points")
	}
	if a.SerializeCompressed()[0] != secp256k1.PubKeyFormatCompressedEven {
		t.Fatalf("expected even-y point")
	}
}

func TestAccumulator_CancelsToInfinity(t *testing.T) {
	kp, err := GenerateKeypair(nil)
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	var acc Accumulator
	if !acc.IsInfinity() {
		t.Fatalf("zero accumulator must be infinity")
	}
	acc.Add(kp.Public)
	acc.Sub(kp.Public)
	if !acc.IsInfinity() {
		t.Fatalf("p - p must be infinity")
	}
	if _, err := acc.Point(); err == nil {
		t.Fatalf("expected error encoding infinity")
	}
}

func TestAccumulator_ScalarMultMatchesRepeatedAdd(t *testing.T) {
	kp, err := GenerateKeypair(nil)
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	var three secp256k1.ModNScalar
	three.SetInt(3)

	var a, b Accumulator
	a.AddScalarMult(&three, kp.Public)
	b.Add(kp.Public)
	b.Add(kp.Public)
	b.Add(kp.Public)
	pa, err := a.Point()
	if err != nil {
		t.Fatalf("Point: %v", err)
	}
	pb, err := b.Point()
	if err != nil {
		t.Fatalf("Point: %v", err)
	}
	if !pa.IsEqual(pb) {
		t.Fatalf("3·P != P+P+P")
	}

	var base Accumulator
	base.AddBaseMult(&kp.Secret.Key)
	pk, err := base.Point()
	if err != nil {
		t.Fatalf("Point: %v", err)
	}
	if !pk.IsEqual(kp.Public) {
		t.Fatalf("k·G != public key")
	}
}
