package model

import (
	"github.com/lightrelay/plcs/domain/consensus/model/externalapi"
)

// ReverseBlockApplier walks full blocks backward from the proof head,
// reverting their account-state effects one at a time and shrinking the
// not-yet-verified window until it is narrow enough to trust.
type ReverseBlockApplier interface {
	// PushBlock accepts the next full block. Depending on block's hash it
	// is either the proof head itself being upgraded to a full block
	// (head-path) or proofHead's immediate predecessor (backward-path);
	// anything else is an orphan. On success it returns the new proof
	// head (unchanged for the head-path, block itself for the backward
	// path); on ERR_ORPHAN/ERR_INVALID the returned head equals
	// proofHead and no state changed.
	PushBlock(storeTx StoreTx, accountsTx AccountsTx, proofHead *externalapi.ChainData, block externalapi.Block) (newProofHead *externalapi.ChainData, result externalapi.PushBlockResult, err error)

	// NeedsMoreBlocks reports whether the verified window
	// [proofHead.Block.Height(), headHeight] is still narrower than the
	// policy's required verification depth.
	NeedsMoreBlocks(headHeight uint64, proofHead *externalapi.ChainData, numBlocksVerification uint64) bool
}
