package storage

import (
	"bytes"
	"fmt"

	"github.com/ipfs/go-cid"

	"anoma.net/arm/bridge"
	"anoma.net/arm/cidutil"
	"anoma.net/arm/transaction"
)

// Archive stores finalized transactions as deterministic protobuf bridge
// terms. A transaction's ID is the CID of that encoding, so equal
// transactions share an ID.
type Archive struct {
	CAS CAS
}

// NewArchive returns an archive over cas.
func NewArchive(cas CAS) *Archive {
	return &Archive{CAS: cas}
}

// EncodeTransaction returns the archived byte form of tx.
func EncodeTransaction(tx transaction.Transaction) ([]byte, error) {
	return bridge.Marshal(bridge.EncodeTransaction(tx))
}

// DecodeTransaction is the inverse of EncodeTransaction.
func DecodeTransaction(b []byte) (transaction.Transaction, error) {
	v, err := bridge.Unmarshal(b)
	if err != nil {
		return transaction.Transaction{}, err
	}
	return bridge.DecodeTransaction(v)
}

// TransactionID returns the ID tx has (or would have) in any archive.
func TransactionID(tx transaction.Transaction) (cid.Cid, error) {
	b, err := EncodeTransaction(tx)
	if err != nil {
		return cid.Undef, err
	}
	return cidutil.Sum(b)
}

// Check decodes b as an archivable object: the canonical encoding of a
// finalized transaction. Bytes that decode but re-encode differently are
// rejected, so an object's ID always equals TransactionID of its content.
func Check(b []byte) (transaction.Transaction, error) {
	tx, err := DecodeTransaction(b)
	if err != nil {
		return transaction.Transaction{}, fmt.Errorf("%w: %v", ErrNotTransaction, err)
	}
	if !tx.IsFinalized() {
		return transaction.Transaction{}, ErrNotFinalized
	}
	canon, err := EncodeTransaction(tx)
	if err != nil {
		return transaction.Transaction{}, err
	}
	if !bytes.Equal(canon, b) {
		return transaction.Transaction{}, fmt.Errorf("%w: non-canonical encoding", ErrNotTransaction)
	}
	return tx, nil
}

// Store archives a finalized transaction and returns its ID.
func (a *Archive) Store(tx transaction.Transaction) (cid.Cid, error) {
	if !tx.IsFinalized() {
		return cid.Undef, ErrNotFinalized
	}
	b, err := EncodeTransaction(tx)
	if err != nil {
		return cid.Undef, err
	}
	return a.CAS.Put(b)
}

// StoreEncoded archives an already encoded transaction after Check.
func (a *Archive) StoreEncoded(b []byte) (cid.Cid, error) {
	if _, err := Check(b); err != nil {
		return cid.Undef, err
	}
	return a.CAS.Put(b)
}

// Load returns the transaction stored under id.
func (a *Archive) Load(id cid.Cid) (transaction.Transaction, error) {
	b, err := a.CAS.Get(id)
	if err != nil {
		return transaction.Transaction{}, err
	}
	tx, err := Check(b)
	if err != nil {
		return transaction.Transaction{}, fmt.Errorf("storage: archived object %s: %w", id, err)
	}
	return tx, nil
}

// Has reports whether id is archived.
func (a *Archive) Has(id cid.Cid) bool { return a.CAS.Has(id) }
