package keys

import (
	"crypto/ed25519"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"golang.org/x/crypto/sha3"
)

// Supported signature schemes.
const (
	SchemeEd25519    = "ed25519"
	SchemeDilithium3 = "dilithium3"
)

// SeedSize is the seed length for every scheme.
const SeedSize = 32

// Signer signs attestation digests.
type Signer interface {
	Scheme() string
	PublicKey() []byte
	Sign(message []byte) ([]byte, error)
}

func digestFor(hashAlg string, message []byte) ([]byte, error) {
	switch hashAlg {
	case "sha256":
		s := sha256.Sum256(message)
		return s[:], nil
	case "sha512":
		s := sha512.Sum512(message)
		return s[:], nil
	case "sha3-256":
		s := sha3.Sum256(message)
		return s[:], nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %q", hashAlg)
	}
}

// hashFor is the message digest each scheme signs.
func hashFor(scheme string) string {
	if scheme == SchemeDilithium3 {
		return "sha3-256"
	}
	return "sha256"
}

type ed25519Signer struct {
	priv ed25519.PrivateKey
}

func (s *ed25519Signer) Scheme() string { return SchemeEd25519 }

func (s *ed25519Signer) PublicKey() []byte {
	return append([]byte(nil), s.priv.Public().(ed25519.PublicKey)...)
}

func (s *ed25519Signer) Sign(message []byte) ([]byte, error) {
	digest, err := digestFor(hashFor(SchemeEd25519), message)
	if err != nil {
		return nil, err
	}
	return ed25519.Sign(s.priv, digest), nil
}

type dilithium3Signer struct {
	pub  *mode3.PublicKey
	priv *mode3.PrivateKey
}

func (s *dilithium3Signer) Scheme() string { return SchemeDilithium3 }

func (s *dilithium3Signer) PublicKey() []byte { return s.pub.Bytes() }

func (s *dilithium3Signer) Sign(message []byte) ([]byte, error) {
	digest, err := digestFor(hashFor(SchemeDilithium3), message)
	if err != nil {
		return nil, err
	}
	sig := make([]byte, mode3.SignatureSize)
	mode3.SignTo(s.priv, digest, sig)
	return sig, nil
}

// NewSigner returns a signer for scheme built from a 32-byte seed.
func NewSigner(scheme string, seed []byte) (Signer, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	switch scheme {
	case SchemeEd25519:
		return &ed25519Signer{priv: ed25519.NewKeyFromSeed(seed)}, nil
	case SchemeDilithium3:
		var s [mode3.SeedSize]byte
		copy(s[:], seed)
		pub, priv := mode3.NewKeyFromSeed(&s)
		return &dilithium3Signer{pub: pub, priv: priv}, nil
	default:
		return nil, fmt.Errorf("unsupported signature scheme: %q", scheme)
	}
}

// Verify checks sig over message for a public key of the given scheme.
func Verify(scheme string, publicKey, message, sig []byte) bool {
	digest, err := digestFor(hashFor(scheme), message)
	if err != nil {
		return false
	}
	switch scheme {
	case SchemeEd25519:
		if len(publicKey) != ed25519.PublicKeySize {
			return false
		}
		return ed25519.Verify(ed25519.PublicKey(publicKey), digest, sig)
	case SchemeDilithium3:
		var pk mode3.PublicKey
		if err := pk.UnmarshalBinary(publicKey); err != nil {
			return false
		}
		return mode3.Verify(&pk, digest, sig)
	default:
		return false
	}
}
