// Package testkit provides a stub proving backend and a conformance suite
// shared by Backend implementations.
package testkit

import (
	"crypto/sha256"
	"errors"
	"sync"

	"anoma.net/arm/proving"
)

// Stub is a deterministic in-memory Backend. Registered circuits compute the
// instance; without one the witness itself is the instance. Proofs are a hash
// of the key and instance, so Verify accepts exactly what Prove produced.
type Stub struct {
	mu       sync.Mutex
	circuits map[string]proving.Circuit
	// FailProve makes every Prove call fail.
	FailProve bool
	// ProveCalls and VerifyCalls count invocations.
	ProveCalls, VerifyCalls int
}

func NewStub() *Stub {
	return &Stub{circuits: make(map[string]proving.Circuit)}
}

func (s *Stub) Register(vk proving.VerifyingKey, c proving.Circuit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.circuits[string(vk.Bytes())] = c
}

func stubProof(vk proving.VerifyingKey, instance []byte) []byte {
	h := sha256.New()
	_, _ = h.Write([]byte("stub-proof"))
	_, _ = h.Write(vk.Bytes())
	_, _ = h.Write(instance)
	return h.Sum(nil)
}

func (s *Stub) Prove(vk proving.VerifyingKey, witness []byte) ([]byte, []byte, error) {
	s.mu.Lock()
	s.ProveCalls++
	c := s.circuits[string(vk.Bytes())]
	fail := s.FailProve
	s.mu.Unlock()

	if fail {
		return nil, nil, errors.New("stub: prove disabled")
	}
	instance := append([]byte(nil), witness...)
	if c != nil {
		var err error
		if instance, err = c(witness); err != nil {
			return nil, nil, err
		}
	}
	return stubProof(vk, instance), instance, nil
}

func (s *Stub) Verify(proof, instance []byte, vk proving.VerifyingKey) (bool, error) {
	s.mu.Lock()
	s.VerifyCalls++
	s.mu.Unlock()
	want := stubProof(vk, instance)
	if len(proof) != len(want) {
		return false, nil
	}
	for i := range want {
		if proof[i] != want[i] {
			return false, nil
		}
	}
	return true, nil
}
