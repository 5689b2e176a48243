package model

import (
	"github.com/lightrelay/plcs/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// ErrChainDataNotFound is the sentinel a StoreTx's GetChainData wraps its
// underlying not-found error with, so callers can test for it without
// depending on whatever storage engine backs the store.
var ErrChainDataNotFound = errors.New("chain data not found")

// IsNotFoundError reports whether err is, or wraps, ErrChainDataNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrChainDataNotFound)
}

// ChainDataStore is the domain-level store the synchronizer uses to record
// every block it has accepted (main-chain or side-branch) and to track the
// current head.
type ChainDataStore interface {
	Begin() (StoreTx, error)
}

// StoreTx is a single attempt's view of the chain data store: every write
// made through it is invisible to other readers until Commit, and
// Abort discards all of them.
type StoreTx interface {
	// GetChainData returns the stored entry for hash, or an error
	// satisfying IsNotFoundError if hash is unknown.
	GetChainData(hash *externalapi.DomainHash) (*externalapi.ChainData, error)

	// PutChainData inserts or overwrites the entry for hash.
	PutChainData(hash *externalapi.DomainHash, data *externalapi.ChainData) error

	// HeadHash returns the current main-chain head, or ok=false if none
	// has been set yet.
	HeadHash() (hash *externalapi.DomainHash, ok bool, err error)

	// SetHead records hash as the current main-chain head. hash must
	// already have been written via PutChainData.
	SetHead(hash *externalapi.DomainHash) error

	// Truncate discards every previously stored entry and the current
	// head, leaving the store empty. Used when a newly accepted proof
	// supersedes everything this attempt had stored so far.
	Truncate() error

	// Commit makes every write performed through this transaction
	// visible to the underlying store, atomically.
	Commit() error

	// Abort discards every write performed through this transaction. It
	// is always safe to call, including after Commit (a no-op then).
	Abort() error
}
