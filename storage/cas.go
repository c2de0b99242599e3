// Package storage archives finalized transactions in content-addressed
// stores. An object's ID is the CIDv1 (raw, sha2-256) of its bytes, so a
// transaction has the same ID in every backend.
package storage

import (
	"github.com/ipfs/go-cid"

	"anoma.net/arm/cidutil"
)

// CAS is one archive backend. Objects are immutable: putting bytes that are
// already present returns the same ID, and getting an absent ID returns
// ErrNotFound. Backends store bytes; Set and Archive decide what may be
// stored.
type CAS interface {
	Put(b []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}

// Verify checks that b is the object named id.
func Verify(id cid.Cid, b []byte) error {
	if !id.Defined() {
		return ErrInvalidCID
	}
	got, err := cidutil.Sum(b)
	if err != nil {
		return err
	}
	if !got.Equals(id) {
		return ErrCIDMismatch
	}
	return nil
}
