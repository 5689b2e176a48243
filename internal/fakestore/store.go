// Package fakestore is an in-memory model.ChainDataStore, used by the
// process packages' tests so they don't need a real leveldb database on
// disk to exercise store-transaction semantics.
package fakestore

import (
	"sync"

	"github.com/lightrelay/plcs/domain/consensus/model"
	"github.com/lightrelay/plcs/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// Store is an in-memory model.ChainDataStore. A single mutex guards Begin's
// snapshot of the entries and Commit's write-back; it does not serialize
// transactions, and a Commit replaces the store's entries wholesale, so it
// is not meant for concurrent attempts.
type Store struct {
	mu      sync.Mutex
	entries map[externalapi.DomainHash]*externalapi.ChainData
	head    *externalapi.DomainHash
}

// New returns a new, empty Store.
func New() *Store {
	return &Store{entries: make(map[externalapi.DomainHash]*externalapi.ChainData)}
}

// Begin opens a transaction. Changes are staged in the transaction's own
// copy and only applied back to the store on Commit.
func (s *Store) Begin() (model.StoreTx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make(map[externalapi.DomainHash]*externalapi.ChainData, len(s.entries))
	for k, v := range s.entries {
		entries[k] = v
	}
	return &storeTx{store: s, entries: entries, head: s.head}, nil
}

type storeTx struct {
	store   *Store
	entries map[externalapi.DomainHash]*externalapi.ChainData
	head    *externalapi.DomainHash
	closed  bool
}

func (tx *storeTx) GetChainData(hash *externalapi.DomainHash) (*externalapi.ChainData, error) {
	data, ok := tx.entries[*hash]
	if !ok {
		return nil, errors.Wrapf(model.ErrChainDataNotFound, "hash %s", hash)
	}
	// entries is shallow-copied from the store on Begin, so the pointer
	// itself is still shared with whatever's live until this transaction
	// commits. Hand back a copy so a caller mutating OnMainChain in place
	// (as rebranchTo does) can't leak that write into the store early.
	clone := *data
	return &clone, nil
}

func (tx *storeTx) PutChainData(hash *externalapi.DomainHash, data *externalapi.ChainData) error {
	tx.entries[*hash] = data
	return nil
}

func (tx *storeTx) HeadHash() (*externalapi.DomainHash, bool, error) {
	if tx.head == nil {
		return nil, false, nil
	}
	return tx.head, true, nil
}

func (tx *storeTx) SetHead(hash *externalapi.DomainHash) error {
	tx.head = hash
	return nil
}

func (tx *storeTx) Truncate() error {
	tx.entries = make(map[externalapi.DomainHash]*externalapi.ChainData)
	tx.head = nil
	return nil
}

func (tx *storeTx) Commit() error {
	if tx.closed {
		return nil
	}
	tx.closed = true
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	tx.store.entries = tx.entries
	tx.store.head = tx.head
	return nil
}

func (tx *storeTx) Abort() error {
	tx.closed = true
	return nil
}
