// Package encryption encrypts payloads to a recipient's curve key.
//
// The sender combines an ephemeral secret with the recipient's public key
// (ECDH), derives a symmetric key with HKDF-SHA256 and seals the payload
// with ChaCha20-Poly1305. The ciphertext carries the nonce and the ephemeral
// public key so the recipient needs only its secret to open it:
//
//	sealed ‖ nonce (12) ‖ ephemeral public key (33, compressed)
package encryption

import (
	"crypto/sha256"
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"anoma.net/arm"
	"anoma.net/arm/curve"
)

const (
	// NonceSize is the only accepted nonce length.
	NonceSize = chacha20poly1305.NonceSize
	// Overhead is the ciphertext expansion over the payload.
	Overhead = chacha20poly1305.Overhead + NonceSize + curve.PointSize

	kdfInfo = "ARM_ENCRYPTION_V1"
)

// Ciphertext is an encrypted payload in its wire layout.
type Ciphertext []byte

func deriveKey(shared, ephemeralPub []byte) ([]byte, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	r := hkdf.New(sha256.New, shared, ephemeralPub, []byte(kdfInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}

// Encrypt seals payload for recipient using the sender's ephemeral secret
// and a caller-chosen nonce. The nonce must be exactly NonceSize bytes.
func Encrypt(payload []byte, recipient *secp256k1.PublicKey, ephemeral *secp256k1.PrivateKey, nonce []byte) (Ciphertext, error) {
	if len(nonce) != NonceSize {
		return nil, arm.Precondition("ARM-PRE-050", "nonce must be 12 bytes")
	}
	if recipient == nil || ephemeral == nil {
		return nil, arm.Precondition("ARM-PRE-051", "encryption needs a recipient key and an ephemeral secret")
	}
	shared := secp256k1.GenerateSharedSecret(ephemeral, recipient)
	ephPub := ephemeral.PubKey().SerializeCompressed()
	key, err := deriveKey(shared, ephPub)
	if err != nil {
		return nil, arm.WrapError(arm.KindInternal, "ARM-INT-010", "key derivation failed", err)
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, arm.WrapError(arm.KindInternal, "ARM-INT-011", "cipher setup failed", err)
	}

	out := make([]byte, 0, len(payload)+Overhead)
	out = aead.Seal(out, nonce, payload, ephPub)
	out = append(out, nonce...)
	out = append(out, ephPub...)
	return Ciphertext(out), nil
}

// Decrypt opens ct with the recipient's secret. It reports false on any
// failure: wrong key, tampering or truncation.
func Decrypt(ct Ciphertext, recipient *secp256k1.PrivateKey) ([]byte, bool) {
	if recipient == nil || len(ct) < Overhead {
		return nil, false
	}
	n := len(ct)
	ephPub := ct[n-curve.PointSize:]
	nonce := ct[n-curve.PointSize-NonceSize : n-curve.PointSize]
	sealed := ct[:n-curve.PointSize-NonceSize]

	pub, err := curve.ParsePoint(ephPub)
	if err != nil {
		return nil, false
	}
	shared := secp256k1.GenerateSharedSecret(recipient, pub)
	key, err := deriveKey(shared, ephPub)
	if err != nil {
		return nil, false
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, false
	}
	plain, err := aead.Open(nil, nonce, sealed, ephPub)
	if err != nil {
		return nil, false
	}
	if plain == nil {
		plain = []byte{}
	}
	return plain, true
}

// EncryptWithKeypair is the boundary form of Encrypt: kp.Public is the
// recipient and kp.Secret is the sender's ephemeral secret.
func EncryptWithKeypair(payload []byte, kp curve.Keypair, nonce []byte) (Ciphertext, error) {
	return Encrypt(payload, kp.Public, kp.Secret, nonce)
}
