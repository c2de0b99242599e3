// Package boltcas is a single-file transaction archive store on bbolt.
package boltcas

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ipfs/go-cid"
	bolt "go.etcd.io/bbolt"

	"anoma.net/arm/cidutil"
	"anoma.net/arm/storage"
)

var bucket = []byte("objects")

// CAS keeps objects in one bbolt bucket keyed by the binary CID.
type CAS struct {
	once sync.Once
	db   *bolt.DB
}

var _ storage.CAS = (*CAS)(nil)

// Open opens (creating if needed) the database file at path.
func Open(path string) (*CAS, error) {
	if path == "" {
		return nil, errors.New("boltcas: database path is required")
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("boltcas: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("boltcas: init bucket: %w", err)
	}
	return &CAS{db: db}, nil
}

func (c *CAS) Put(b []byte) (cid.Cid, error) {
	id, err := cidutil.Sum(b)
	if err != nil {
		return cid.Undef, err
	}
	key := id.Bytes()
	err = c.db.Update(func(tx *bolt.Tx) error {
		bk := tx.Bucket(bucket)
		if existing := bk.Get(key); existing != nil {
			if !bytes.Equal(existing, b) {
				return storage.ErrImmutable
			}
			return nil
		}
		return bk.Put(key, b)
	})
	if err != nil {
		return cid.Undef, err
	}
	return id, nil
}

func (c *CAS) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, storage.ErrInvalidCID
	}
	var out []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucket).Get(id.Bytes())
		if v == nil {
			return storage.ErrNotFound
		}
		// v is only valid inside the transaction.
		out = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	got, err := cidutil.Sum(out)
	if err != nil {
		return nil, err
	}
	if got != id {
		return nil, storage.ErrCIDMismatch
	}
	return out, nil
}

func (c *CAS) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	var found bool
	_ = c.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(bucket).Get(id.Bytes()) != nil
		return nil
	})
	return found
}

// Close closes the database. Later calls are no-ops.
func (c *CAS) Close() error {
	var err error
	c.once.Do(func() {
		err = c.db.Close()
	})
	return err
}
