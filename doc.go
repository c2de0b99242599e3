// Package arm holds the error taxonomy shared by the resource machine
// cryptographic core.
//
// The core itself lives in subpackages:
//
//   - curve, encryption: secp256k1 keys and ECIES-style payload encryption
//   - resource, merkle, compliance: witness -> compliance instance derivation
//   - delta, transaction: value balance proofs and transaction finalization
//   - logic: logic verifier inputs
//   - bridge: boundary-neutral encoding of every type above
//   - service: the gRPC call surface
//
// Every exported operation in the core is pure and safe for concurrent use.
package arm
