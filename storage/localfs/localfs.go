// Package localfs keeps a transaction archive in a directory tree, one
// read-only file per object.
package localfs

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ipfs/go-cid"

	"anoma.net/arm/cidutil"
	"anoma.net/arm/storage"
)

// Store lays objects out as <root>/<xx>/<cid>, where xx is the last two
// characters of the CID string. Every archive CID shares its leading
// characters, so the tail is what spreads objects over directories.
//
// A write goes to a temporary file that is hard-linked into place: readers
// never see a partial object and an existing object is never replaced.
type Store struct {
	root string
}

var _ storage.CAS = (*Store)(nil)

// New returns a store rooted at root, creating the directory if needed.
func New(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("localfs: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Store{root: root}, nil
}

func (s *Store) Put(b []byte) (cid.Cid, error) {
	id, err := cidutil.Sum(b)
	if err != nil {
		return cid.Undef, err
	}
	path := s.path(id)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return cid.Undef, err
	}
	err = publish(path, b)
	if errors.Is(err, fs.ErrExist) {
		// The object already exists; it must hold exactly these bytes.
		existing, rerr := os.ReadFile(path)
		if rerr != nil || !bytes.Equal(existing, b) {
			return cid.Undef, storage.ErrImmutable
		}
		return id, nil
	}
	if err != nil {
		return cid.Undef, err
	}
	return id, nil
}

// publish writes b next to path and links it into place.
func publish(path string, b []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".put-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	defer os.Remove(name)

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(name, 0o444); err != nil {
		return err
	}
	return os.Link(name, path)
}

// Get reads an object and checks it still hashes to id.
func (s *Store) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, storage.ErrInvalidCID
	}
	b, err := os.ReadFile(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := storage.Verify(id, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Store) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	info, err := os.Stat(s.path(id))
	return err == nil && info.Mode().IsRegular()
}

func (s *Store) path(id cid.Cid) string {
	name := id.String()
	if len(name) < 2 {
		return filepath.Join(s.root, name)
	}
	return filepath.Join(s.root, name[len(name)-2:], name)
}
