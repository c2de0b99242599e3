// Package testkit holds the archive backend conformance suite, transaction
// fixtures and an in-memory CAS for tests.
package testkit

import (
	"bytes"
	"sync"
	"testing"

	"github.com/ipfs/go-cid"

	"anoma.net/arm/cidutil"
	"anoma.net/arm/compliance"
	"anoma.net/arm/delta"
	"anoma.net/arm/logic"
	"anoma.net/arm/storage"
	"anoma.net/arm/transaction"
)

// Transaction returns a finalized transaction that differs for every n. Its
// proofs are placeholders: it archives and decodes but does not verify.
func Transaction(n uint32) transaction.Transaction {
	var p delta.Proof
	p.Signature[0] = 1
	p.RecoveryID = byte(n % 2)
	return transaction.Transaction{
		Actions: []transaction.Action{{
			ComplianceUnits: []compliance.Unit{{Proof: []byte{1, 2}, Instance: make([]byte, compliance.InstanceSize)}},
			LogicVerifierInputs: []logic.VerifierInputs{{
				VerifyingKey: []uint32{n},
				Proof:        []byte{3},
			}},
		}},
		Delta: transaction.ProofDelta{Proof: p},
	}
}

// Object returns the archived encoding of Transaction(n).
func Object(t testing.TB, n uint32) []byte {
	t.Helper()
	b, err := storage.EncodeTransaction(Transaction(n))
	if err != nil {
		t.Fatalf("EncodeTransaction: %v", err)
	}
	return b
}

// NewCAS constructs a fresh, empty backend for one test.
type NewCAS func(t *testing.T) storage.CAS

// RunCASConformance checks the backend contract with archived transaction
// encodings, then runs an Archive over the backend.
func RunCASConformance(t *testing.T, newCAS NewCAS) {
	t.Helper()

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		cas := newCAS(t)
		want := Object(t, 1)

		id, err := cas.Put(want)
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		wantID, err := cidutil.Sum(want)
		if err != nil {
			t.Fatalf("Sum failed: %v", err)
		}
		if id != wantID {
			t.Fatalf("Put CID mismatch: got %s want %s", id, wantID)
		}
		got, err := cas.Get(id)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("Get bytes mismatch")
		}
	})

	t.Run("PutIdempotent", func(t *testing.T) {
		cas := newCAS(t)
		b := Object(t, 2)
		id1, err := cas.Put(b)
		if err != nil {
			t.Fatalf("Put(1) failed: %v", err)
		}
		id2, err := cas.Put(b)
		if err != nil {
			t.Fatalf("Put(2) failed: %v", err)
		}
		if id1 != id2 {
			t.Fatalf("Put not idempotent: %s vs %s", id1, id2)
		}
	})

	t.Run("GetReturnsCopy", func(t *testing.T) {
		cas := newCAS(t)
		want := Object(t, 3)
		id, err := cas.Put(want)
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		got, err := cas.Get(id)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		got[0] ^= 0xff
		again, err := cas.Get(id)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !bytes.Equal(again, want) {
			t.Fatalf("stored object changed through a returned slice")
		}
	})

	t.Run("HasAndNotFound", func(t *testing.T) {
		cas := newCAS(t)
		b := Object(t, 4)
		id, err := cidutil.Sum(b)
		if err != nil {
			t.Fatalf("Sum failed: %v", err)
		}
		if cas.Has(id) {
			t.Fatalf("Has returned true for missing CID")
		}
		if _, err := cas.Get(id); !storage.IsNotFound(err) {
			t.Fatalf("Get missing: got err=%v want ErrNotFound", err)
		}
		if _, err := cas.Put(b); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if !cas.Has(id) {
			t.Fatalf("Has returned false after Put")
		}
	})

	t.Run("RejectUndefCID", func(t *testing.T) {
		cas := newCAS(t)
		var undef cid.Cid
		if cas.Has(undef) {
			t.Fatalf("Has should be false for undefined CID")
		}
		if _, err := cas.Get(undef); err == nil {
			t.Fatalf("Get should fail for undefined CID")
		}
	})

	t.Run("ArchiveStoreLoad", func(t *testing.T) {
		a := storage.NewArchive(newCAS(t))
		tx := Transaction(5)
		id, err := a.Store(tx)
		if err != nil {
			t.Fatalf("Store failed: %v", err)
		}
		want, err := storage.TransactionID(tx)
		if err != nil {
			t.Fatalf("TransactionID failed: %v", err)
		}
		if id != want {
			t.Fatalf("Store ID: got %s want %s", id, want)
		}
		got, err := a.Load(id)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		again, err := storage.TransactionID(got)
		if err != nil {
			t.Fatalf("TransactionID failed: %v", err)
		}
		if again != id {
			t.Fatalf("loaded transaction differs from the stored one")
		}
	})
}

// MemCAS is a map-backed CAS. It accepts any bytes. The zero value is ready
// to use.
type MemCAS struct {
	mu      sync.RWMutex
	objects map[cid.Cid][]byte
}

var _ storage.CAS = (*MemCAS)(nil)

func (m *MemCAS) Put(b []byte) (cid.Cid, error) {
	id, err := cidutil.Sum(b)
	if err != nil {
		return cid.Undef, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.objects[id]; ok {
		if !bytes.Equal(existing, b) {
			return cid.Undef, storage.ErrImmutable
		}
		return id, nil
	}
	if m.objects == nil {
		m.objects = make(map[cid.Cid][]byte)
	}
	m.objects[id] = append([]byte(nil), b...)
	return id, nil
}

func (m *MemCAS) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, storage.ErrInvalidCID
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.objects[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

func (m *MemCAS) Has(id cid.Cid) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[id]
	return ok
}

// Len returns the number of stored objects.
func (m *MemCAS) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
