// Package keys manages the attestation keys a prover uses to vouch for the
// instances it computes.
//
// Two schemes are supported: ed25519 and dilithium3 (post-quantum). Both are
// derived from a 32-byte seed, so a single root seed plus a role name is
// enough to reproduce every key a prover uses.
//
// The filesystem-backed KeyStore is a local convenience for the daemon and
// CLI; it is not part of the proving contract.
package keys
