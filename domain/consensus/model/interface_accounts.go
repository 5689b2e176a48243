package model

import (
	"github.com/lightrelay/plcs/domain/consensus/model/externalapi"
)

// Accounts is the account-state collaborator PLCS treats as an opaque
// external system: how account balances/contracts/state are represented and
// committed to a root hash is entirely its concern. PLCS only ever opens a
// transaction against it and reverts blocks through that transaction.
type Accounts interface {
	// Transaction opens a new accounts transaction scoped to a single
	// sync attempt's PROVE_BLOCKS phase.
	Transaction() (AccountsTx, error)

	// NewPartialTree starts a fresh, empty partial accounts tree to
	// stream a snapshot into, pinned at the given root.
	NewPartialTree(root *externalapi.DomainHash) (PartialAccountsTree, error)
}

// AccountsTx is a single sync attempt's accounts-state transaction. Every
// RevertBlock call is only visible to subsequent calls on the same
// transaction until Commit.
type AccountsTx interface {
	// RevertBlock reverts the account-state effects of block, moving the
	// transaction's view backward to the state as of block's parent.
	RevertBlock(block externalapi.Block) error

	// Commit makes this transaction's reverted state the accounts
	// system's live state.
	Commit() error

	// Abort discards this transaction's changes. Always safe to call.
	Abort() error
}

// PartialAccountsTree accumulates an accounts-tree snapshot streamed as an
// ordered sequence of chunks, each extending the tree's currently missing
// prefix.
type PartialAccountsTree interface {
	// PushChunk accepts the next chunk. It rejects (ErrIncorrectProof)
	// any chunk that does not extend MissingPrefix, or that fails to
	// verify against the pinned root.
	PushChunk(chunk []byte) (externalapi.ChunkResult, error)

	// MissingPrefix identifies what the tree still needs, in whatever
	// terms the accounts collaborator uses to key snapshot chunks.
	MissingPrefix() string

	// Commit finalizes a complete tree, making it available as the
	// accounts system's state as of the proof head.
	Commit() error

	// Abort discards the partial tree. Always safe to call.
	Abort() error
}
