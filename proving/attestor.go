package proving

import (
	"crypto/sha256"
	"fmt"
	"sync"

	"anoma.net/arm"
	"anoma.net/arm/keys"
)

const attestationDomain = "ARM_ATTESTATION_V1"

// attestationMessage binds an instance to the relation it was computed under.
func attestationMessage(vk VerifyingKey, instance []byte) []byte {
	id := vk.ID()
	ih := sha256.Sum256(instance)
	msg := make([]byte, 0, len(attestationDomain)+len(id)+len(ih))
	msg = append(msg, attestationDomain...)
	msg = append(msg, id[:]...)
	msg = append(msg, ih[:]...)
	return msg
}

// Attestor is a Backend for deployments without a zkVM: it runs registered
// circuits natively and signs the resulting instance with a prover key.
// Verifiers trust the prover's key instead of checking a succinct proof.
type Attestor struct {
	AttestationVerifier
	signer keys.Signer

	mu       sync.RWMutex
	circuits map[string]Circuit
}

// NewAttestor returns an Attestor signing with s.
func NewAttestor(s keys.Signer) *Attestor {
	return &Attestor{
		AttestationVerifier: AttestationVerifier{Scheme: s.Scheme(), PublicKey: s.PublicKey()},
		signer:              s,
		circuits:            make(map[string]Circuit),
	}
}

// Register binds vk to c. Registering the same key twice replaces c.
func (a *Attestor) Register(vk VerifyingKey, c Circuit) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.circuits[string(vk.Bytes())] = c
}

func (a *Attestor) circuit(vk VerifyingKey) (Circuit, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	c, ok := a.circuits[string(vk.Bytes())]
	return c, ok
}

func (a *Attestor) Prove(vk VerifyingKey, witness []byte) ([]byte, []byte, error) {
	c, ok := a.circuit(vk)
	if !ok {
		return nil, nil, arm.BackendFailure("ARM-BCK-001", fmt.Sprintf("no circuit registered for verifying key %s", vk), nil)
	}
	instance, err := c(witness)
	if err != nil {
		return nil, nil, arm.BackendFailure("ARM-BCK-002", "circuit rejected the witness", err)
	}
	sig, err := a.signer.Sign(attestationMessage(vk, instance))
	if err != nil {
		return nil, nil, arm.BackendFailure("ARM-BCK-003", "signing attestation failed", err)
	}
	return sig, instance, nil
}

// AttestationVerifier checks attestations made by a single prover key.
type AttestationVerifier struct {
	Scheme    string
	PublicKey []byte
}

func (v AttestationVerifier) Verify(proof, instance []byte, vk VerifyingKey) (bool, error) {
	if len(v.PublicKey) == 0 {
		return false, arm.BackendFailure("ARM-BCK-004", "attestation verifier has no public key", nil)
	}
	return keys.Verify(v.Scheme, v.PublicKey, attestationMessage(vk, instance), proof), nil
}
