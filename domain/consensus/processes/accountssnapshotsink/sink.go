// Package accountssnapshotsink implements model.AccountsSnapshotSink:
// accepting a peer-streamed accounts-tree snapshot one chunk at a time and,
// once complete, handing off to a fresh accounts transaction.
package accountssnapshotsink

import (
	"github.com/lightrelay/plcs/domain/consensus/model"
	"github.com/lightrelay/plcs/domain/consensus/model/externalapi"
)

// Sink is the reference model.AccountsSnapshotSink. It holds no state of
// its own; the partial tree and accounts collaborator it's handed carry
// everything.
type Sink struct{}

// New returns a new Sink.
func New() *Sink {
	return &Sink{}
}

// PushChunk feeds chunk into tree.
func (s *Sink) PushChunk(tree model.PartialAccountsTree, chunk []byte) (externalapi.ChunkResult, error) {
	result, err := tree.PushChunk(chunk)
	if err != nil {
		log.Debugf("rejected accounts snapshot chunk: %s", err)
	}
	return result, err
}

// FinalizeSnapshot commits tree and opens a fresh accounts transaction
// against the resulting live state.
func (s *Sink) FinalizeSnapshot(tree model.PartialAccountsTree, accounts model.Accounts) (model.AccountsTx, error) {
	if err := tree.Commit(); err != nil {
		return nil, err
	}
	log.Infof("accounts snapshot finalized")
	return accounts.Transaction()
}
