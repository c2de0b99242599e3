package keys

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const roleKDFSalt = "arm-prover-keys-v1"

// DeriveRoleSeed derives the seed of role from a root seed with
// HKDF-SHA256. The derived seed is valid for every scheme.
func DeriveRoleSeed(rootSeed []byte, role string) ([]byte, error) {
	if len(rootSeed) != SeedSize {
		return nil, fmt.Errorf("root seed must be %d bytes", SeedSize)
	}
	if err := CheckRole(role); err != nil {
		return nil, err
	}
	out := make([]byte, SeedSize)
	r := hkdf.New(sha256.New, rootSeed, []byte(roleKDFSalt), []byte("role:"+role))
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, err
	}
	return out, nil
}
