package model

import (
	"github.com/lightrelay/plcs/domain/consensus/model/externalapi"
)

// AccountsSnapshotSink accepts a peer-streamed accounts-tree snapshot one
// chunk at a time and, once complete, hands off to a fresh accounts
// transaction for the reverse block applier to revert blocks through.
type AccountsSnapshotSink interface {
	// PushChunk feeds the next chunk into tree.
	PushChunk(tree PartialAccountsTree, chunk []byte) (externalapi.ChunkResult, error)

	// FinalizeSnapshot commits tree (which must be complete) and opens
	// a fresh accounts transaction against the resulting state.
	FinalizeSnapshot(tree PartialAccountsTree, accounts Accounts) (AccountsTx, error)
}
