package storage

import "errors"

var (
	// ErrNotFound reports an ID no backend holds.
	ErrNotFound = errors.New("storage: not found")
	// ErrInvalidCID reports an undefined or non-archive CID.
	ErrInvalidCID = errors.New("storage: invalid cid")
	// ErrCIDMismatch reports bytes that do not hash to the ID they were
	// stored or served under.
	ErrCIDMismatch = errors.New("storage: cid mismatch")
	// ErrImmutable reports an attempt to replace an existing object.
	ErrImmutable = errors.New("storage: immutable object mismatch")
	// ErrNotTransaction reports bytes that are not the canonical encoding
	// of a transaction.
	ErrNotTransaction = errors.New("storage: not an archived transaction")
	// ErrNotFinalized reports a transaction still carrying a delta witness.
	ErrNotFinalized = errors.New("storage: transaction is not finalized")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
