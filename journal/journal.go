// Package journal implements the word-stream encoding proof systems use for
// public instances: a sequence of little-endian u32 words.
//
// Digests are 32 bytes and occupy 8 words. Booleans occupy one word (0 or 1).
// Variable-length word vectors are prefixed by their length.
package journal

import (
	"encoding/binary"
	"encoding/hex"

	"anoma.net/arm"
)

const (
	// DigestSize is the size of a digest in bytes.
	DigestSize = 32
	// DigestWords is the size of a digest in u32 words.
	DigestWords = DigestSize / 4
	// WordSize is the size of one journal word in bytes.
	WordSize = 4
)

// Digest is a 32-byte hash value.
type Digest [DigestSize]byte

// Words returns d as 8 little-endian u32 words.
func (d Digest) Words() []uint32 {
	out := make([]uint32, DigestWords)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(d[i*WordSize:])
	}
	return out
}

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// IsZero reports whether every byte of d is zero.
func (d Digest) IsZero() bool { return d == Digest{} }

// DigestFromWords is the inverse of Digest.Words.
func DigestFromWords(w []uint32) (Digest, error) {
	var d Digest
	if len(w) != DigestWords {
		return d, arm.NewError(arm.KindDecode, "ARM-DEC-030", "digest must be 8 words")
	}
	for i, v := range w {
		binary.LittleEndian.PutUint32(d[i*WordSize:], v)
	}
	return d, nil
}

// DigestFromBytes copies a 32-byte slice into a Digest.
func DigestFromBytes(b []byte) (Digest, error) {
	var d Digest
	if len(b) != DigestSize {
		return d, arm.NewError(arm.KindDecode, "ARM-DEC-031", "digest must be 32 bytes")
	}
	copy(d[:], b)
	return d, nil
}

// BytesToWords reinterprets b as little-endian words. len(b) must be a
// multiple of 4.
func BytesToWords(b []byte) ([]uint32, error) {
	if len(b)%WordSize != 0 {
		return nil, arm.NewError(arm.KindDecode, "ARM-DEC-032", "journal length is not a multiple of 4")
	}
	out := make([]uint32, len(b)/WordSize)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(b[i*WordSize:])
	}
	return out, nil
}

// WordsToBytes is the inverse of BytesToWords.
func WordsToBytes(w []uint32) []byte {
	out := make([]byte, len(w)*WordSize)
	for i, v := range w {
		binary.LittleEndian.PutUint32(out[i*WordSize:], v)
	}
	return out
}
