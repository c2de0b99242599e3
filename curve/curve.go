// Package curve is the elliptic-curve key layer: secp256k1 keypairs, scalar
// and point parsing, point sums and hashing to the curve.
package curve

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"anoma.net/arm"
)

const (
	// ScalarSize is the encoded size of a secret scalar.
	ScalarSize = 32
	// PointSize is the size of a compressed SEC1 point.
	PointSize = secp256k1.PubKeyBytesLenCompressed
	// CoordinateSize is the size of one affine coordinate.
	CoordinateSize = 32
)

// Keypair holds a secret scalar and a public curve point.
//
// For generated pairs Public == Secret·G. The type itself does not enforce
// the relation: the encryption boundary pairs a recipient public key with a
// sender's ephemeral secret in one Keypair value.
type Keypair struct {
	Secret *secp256k1.PrivateKey
	Public *secp256k1.PublicKey
}

// GenerateKeypair draws a uniformly random non-zero scalar below the group
// order from r and returns it with its public point. A nil r uses
// crypto/rand.Reader. A failing reader is fatal: the error is returned, never
// retried.
func GenerateKeypair(r io.Reader) (Keypair, error) {
	k, err := RandomScalar(r)
	if err != nil {
		return Keypair{}, err
	}
	priv := secp256k1.NewPrivateKey(&k)
	return Keypair{Secret: priv, Public: priv.PubKey()}, nil
}

// RandomScalar rejection-samples a non-zero scalar below n.
func RandomScalar(r io.Reader) (secp256k1.ModNScalar, error) {
	if r == nil {
		r = rand.Reader
	}
	var buf [ScalarSize]byte
	for {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return secp256k1.ModNScalar{}, arm.RandomnessFailure("ARM-RND-001", err)
		}
		var k secp256k1.ModNScalar
		overflow := k.SetBytes(&buf)
		if overflow == 0 && !k.IsZero() {
			zero(buf[:])
			return k, nil
		}
	}
}

// KeypairFromSecret returns the keypair for secret.
func KeypairFromSecret(secret *secp256k1.PrivateKey) Keypair {
	return Keypair{Secret: secret, Public: secret.PubKey()}
}

// Valid reports whether Public == Secret·G.
func (k Keypair) Valid() bool {
	if k.Secret == nil || k.Public == nil {
		return false
	}
	return k.Secret.PubKey().IsEqual(k.Public)
}

// ParseScalar parses a 32-byte big-endian scalar. Values >= n and zero are
// rejected.
func ParseScalar(b []byte) (secp256k1.ModNScalar, error) {
	k, err := ParseScalarOrZero(b)
	if err != nil {
		return k, err
	}
	if k.IsZero() {
		return k, arm.NewError(arm.KindDecode, "ARM-DEC-012", "scalar is zero")
	}
	return k, nil
}

// ParseScalarOrZero is ParseScalar for sums, where zero is a legal value.
func ParseScalarOrZero(b []byte) (secp256k1.ModNScalar, error) {
	var k secp256k1.ModNScalar
	if len(b) != ScalarSize {
		return k, arm.NewError(arm.KindDecode, "ARM-DEC-010", "scalar must be 32 bytes")
	}
	if overflow := k.SetByteSlice(b); overflow {
		return k, arm.NewError(arm.KindDecode, "ARM-DEC-011", "scalar is not below the group order")
	}
	return k, nil
}

// ParseSecret parses a 32-byte secret key.
func ParseSecret(b []byte) (*secp256k1.PrivateKey, error) {
	k, err := ParseScalar(b)
	if err != nil {
		return nil, err
	}
	return secp256k1.NewPrivateKey(&k), nil
}

// ParsePoint parses a compressed SEC1 point.
func ParsePoint(b []byte) (*secp256k1.PublicKey, error) {
	if len(b) != PointSize {
		return nil, arm.NewError(arm.KindDecode, "ARM-DEC-020", "point must be 33 compressed bytes")
	}
	p, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, arm.WrapError(arm.KindDecode, "ARM-DEC-021", "not a point on the curve", err)
	}
	return p, nil
}

// Coordinates returns the big-endian affine coordinates of p.
func Coordinates(p *secp256k1.PublicKey) (x, y [CoordinateSize]byte) {
	u := p.SerializeUncompressed()
	copy(x[:], u[1:1+CoordinateSize])
	copy(y[:], u[1+CoordinateSize:])
	return x, y
}

// PointFromCoordinates rebuilds a point from affine coordinates and checks
// that it lies on the curve.
func PointFromCoordinates(x, y [CoordinateSize]byte) (*secp256k1.PublicKey, error) {
	var u [secp256k1.PubKeyBytesLenUncompressed]byte
	u[0] = secp256k1.PubKeyFormatUncompressed
	copy(u[1:], x[:])
	copy(u[1+CoordinateSize:], y[:])
	p, err := secp256k1.ParsePubKey(u[:])
	if err != nil {
		return nil, arm.WrapError(arm.KindDecode, "ARM-DEC-022", "coordinates are not a point on the curve", err)
	}
	return p, nil
}

// HashToCurve maps domain and parts to a curve point by try-and-increment:
// SHA-256(domain ‖ parts ‖ counter) is read as the x coordinate of an even-y
// point until one exists. Nobody knows the discrete log of the result.
func HashToCurve(domain string, parts ...[]byte) *secp256k1.PublicKey {
	var enc [PointSize]byte
	enc[0] = secp256k1.PubKeyFormatCompressedEven
	var ctr [4]byte
	for i := uint32(0); ; i++ {
		h := sha256.New()
		_, _ = h.Write([]byte(domain))
		for _, p := range parts {
			_, _ = h.Write(p)
		}
		binary.BigEndian.PutUint32(ctr[:], i)
		_, _ = h.Write(ctr[:])
		copy(enc[1:], h.Sum(nil))
		if p, err := secp256k1.ParsePubKey(enc[:]); err == nil {
			return p
		}
	}
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
