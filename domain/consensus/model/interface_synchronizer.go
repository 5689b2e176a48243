package model

import (
	"github.com/lightrelay/plcs/domain/consensus/model/externalapi"
)

// Synchronizer is the public contract a caller (typically a sync protocol
// flow driven by a peer connection) drives through the four-phase state
// machine: PROVE_CHAIN -> PROVE_ACCOUNTS_TREE -> PROVE_BLOCKS -> COMPLETE,
// with ABORTED reachable from any phase.
type Synchronizer interface {
	// PushProof is legal only in PROVE_CHAIN. It returns true if proof
	// verified (whether or not it was better than whatever this attempt
	// already held); a worse-but-valid proof causes an implicit abort.
	PushProof(proof *externalapi.ChainProof) (bool, error)

	// PushAccountsTreeChunk is legal only in PROVE_ACCOUNTS_TREE.
	PushAccountsTreeChunk(chunk []byte) (externalapi.ChunkResult, error)

	// PushBlock is legal in PROVE_BLOCKS (reverse application) and in
	// COMPLETE (normal forward application); any other phase yields
	// ERR_ORPHAN.
	PushBlock(block externalapi.Block) (externalapi.PushBlockResult, error)

	// Commit is legal only in COMPLETE. It makes every write this
	// attempt made visible to the underlying store.
	Commit() (bool, error)

	// Abort discards the attempt and releases every resource it holds.
	// It is legal in any phase and idempotent.
	Abort()

	// Phase returns the current phase.
	Phase() externalapi.SyncPhase

	// MissingAccountsPrefix returns what the partial accounts tree still
	// needs, or "" outside PROVE_ACCOUNTS_TREE.
	MissingAccountsPrefix() string

	// ProofHeadHeight returns the height of the current proof head: the
	// accepted proof's head, then, during PROVE_BLOCKS, each older block
	// the backward walk has reached. It is 0 if no proof has been accepted
	// yet.
	ProofHeadHeight() uint64

	// NeedsMoreBlocks reports whether PROVE_BLOCKS still needs more
	// backward-applied blocks before the verified window reaches the
	// policy's required depth. Outside PROVE_BLOCKS it is always false.
	NeedsMoreBlocks() bool

	// GetBlockLocators returns an exponentially-spaced sample of
	// main-chain hashes walking backward from the current head. The walk
	// ends at genesis, or at the oldest stored block whose predecessor is
	// not stored.
	GetBlockLocators() ([]*externalapi.DomainHash, error)

	// Subscribe registers handler to be called synchronously whenever
	// event fires. Recognized events: "head-changed", whose payload is the
	// new head (a *externalapi.ChainData after PushProof, the pushed
	// externalapi.Block after a forward PushBlock), and
	// "accounts-tree-complete", "complete", "committed" and "aborted",
	// which are all emitted with a nil payload.
	Subscribe(event string, handler func(payload interface{}))
}
