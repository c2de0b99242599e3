package keys

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// KeyID renders a public key as "<scheme>:" + base64(pub).
func KeyID(s Signer) string {
	return s.Scheme() + ":" + base64.StdEncoding.EncodeToString(s.PublicKey())
}

// ParseKeyID is the inverse of KeyID.
func ParseKeyID(id string) (scheme string, pub []byte, err error) {
	scheme, b64, ok := strings.Cut(id, ":")
	if !ok {
		return "", nil, fmt.Errorf("key id %q has no scheme prefix", id)
	}
	if scheme != SchemeEd25519 && scheme != SchemeDilithium3 {
		return "", nil, fmt.Errorf("unsupported signature scheme: %q", scheme)
	}
	pub, err = base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", nil, fmt.Errorf("key id: %w", err)
	}
	return scheme, pub, nil
}
