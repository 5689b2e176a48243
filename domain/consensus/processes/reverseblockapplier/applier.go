// Package reverseblockapplier implements model.ReverseBlockApplier: walking
// full blocks backward from a proof head, reverting their account-state
// effects and shrinking the not-yet-verified window one block at a time.
// It is deliberately stateless: the caller (the synchronizer) owns the
// mutable proof head and decides when the window is narrow enough.
package reverseblockapplier

import (
	"github.com/lightrelay/plcs/domain/consensus/model"
	"github.com/lightrelay/plcs/domain/consensus/model/externalapi"
	"github.com/lightrelay/plcs/domain/consensus/ruleerrors"
	"github.com/lightrelay/plcs/domain/consensus/utils/interlink"
	"github.com/pkg/errors"
)

// Applier is the reference model.ReverseBlockApplier.
type Applier struct {
	blockUtils model.BlockUtils
}

// New returns a new Applier.
func New(blockUtils model.BlockUtils) *Applier {
	return &Applier{blockUtils: blockUtils}
}

// PushBlock dispatches block as either the proof head being upgraded to a
// full block (head-path) or proofHead's immediate predecessor being
// introduced (backward-path).
func (a *Applier) PushBlock(storeTx model.StoreTx, accountsTx model.AccountsTx, proofHead *externalapi.ChainData, block externalapi.Block) (*externalapi.ChainData, externalapi.PushBlockResult, error) {
	switch {
	case block.Hash().Equal(proofHead.Block.Hash()):
		return a.pushHead(storeTx, accountsTx, proofHead, block)
	case proofHead.Block.PrevHash() != nil && block.Hash().Equal(proofHead.Block.PrevHash()):
		return a.pushBackward(storeTx, accountsTx, proofHead, block)
	default:
		return proofHead, externalapi.PushBlockErrOrphan, ruleerrors.ErrOrphanBlock
	}
}

// pushHead supplies the current proof head's full body, reverting its
// account-state effects. The proof head's identity and totals don't
// change; only its body becomes known and the accounts state shrinks by
// one block.
func (a *Applier) pushHead(storeTx model.StoreTx, accountsTx model.AccountsTx, proofHead *externalapi.ChainData, block externalapi.Block) (*externalapi.ChainData, externalapi.PushBlockResult, error) {
	if !block.IsFull() {
		return proofHead, externalapi.PushBlockErrInvalid, errors.Wrap(ruleerrors.ErrBlockVerificationFailed, "proof head block has no body")
	}
	if err := block.Verify(); err != nil {
		return proofHead, externalapi.PushBlockErrInvalid, errors.Wrap(ruleerrors.ErrBlockVerificationFailed, err.Error())
	}
	if !block.Header().Equal(proofHead.Block.Header()) {
		return proofHead, externalapi.PushBlockErrInvalid, errors.New("full block header does not match the already-verified proof head header")
	}

	if err := accountsTx.RevertBlock(block); err != nil {
		return proofHead, externalapi.PushBlockErrInvalid, errors.Wrap(ruleerrors.ErrAccountStateRevertFailed, err.Error())
	}

	newData := &externalapi.ChainData{Block: block, Totals: proofHead.Totals, OnMainChain: proofHead.OnMainChain}
	if err := storeTx.PutChainData(block.Hash(), newData); err != nil {
		return proofHead, externalapi.PushBlockErrInvalid, err
	}
	log.Debugf("reverted account state for block %s at height %d", block.Hash(), block.Height())
	return newData, externalapi.PushBlockOKExtended, nil
}

// pushBackward introduces proofHead's immediate predecessor, checked
// against proofHead's already-trusted interlink and retarget expectation,
// reverts its account-state effects, and advances the proof head pointer to
// it.
func (a *Applier) pushBackward(storeTx model.StoreTx, accountsTx model.AccountsTx, proofHead *externalapi.ChainData, block externalapi.Block) (*externalapi.ChainData, externalapi.PushBlockResult, error) {
	if err := a.validateBackward(block, proofHead); err != nil {
		return proofHead, externalapi.PushBlockErrInvalid, err
	}

	if err := accountsTx.RevertBlock(block); err != nil {
		return proofHead, externalapi.PushBlockErrInvalid, errors.Wrap(ruleerrors.ErrAccountStateRevertFailed, err.Error())
	}

	headDifficulty, _ := proofHead.Totals.TotalDifficulty()
	headWork, _ := proofHead.Totals.TotalWork()
	newTotals := externalapi.NewExtendableTotals(
		headDifficulty-proofHead.Block.Difficulty(),
		headWork-a.blockUtils.RealDifficulty(proofHead.Block.Hash()),
	)

	newData := &externalapi.ChainData{Block: block, Totals: newTotals, OnMainChain: proofHead.OnMainChain}
	if err := storeTx.PutChainData(block.Hash(), newData); err != nil {
		return proofHead, externalapi.PushBlockErrInvalid, err
	}
	return newData, externalapi.PushBlockOKExtended, nil
}

func (a *Applier) validateBackward(block externalapi.Block, proofHead *externalapi.ChainData) error {
	if !block.IsFull() {
		return errors.Wrap(ruleerrors.ErrBlockVerificationFailed, "block has no body")
	}
	if !proofHead.Block.IsImmediateSuccessorOf(block) {
		return ruleerrors.ErrNotImmediateSuccessor
	}
	if err := block.Verify(); err != nil {
		return errors.Wrap(ruleerrors.ErrBlockVerificationFailed, err.Error())
	}

	expectedInterlink := interlink.Next(a.blockUtils, block.Hash(), block.Interlink())
	if !a.blockUtils.HashInterlink(expectedInterlink).Equal(proofHead.Block.Header().InterlinkHash) {
		return ruleerrors.ErrInterlinkMismatch
	}

	if expectedBits, ok, err := a.blockUtils.NextRequiredBits(block); err != nil {
		return err
	} else if ok && expectedBits != proofHead.Block.NBits() {
		return ruleerrors.NewErrBadRetarget(expectedBits, proofHead.Block.NBits())
	}
	return nil
}

// NeedsMoreBlocks reports whether the verified window is still narrower
// than the policy's required depth. Once proofHead reaches genesis there
// is nothing further to verify, regardless of width.
func (a *Applier) NeedsMoreBlocks(headHeight uint64, proofHead *externalapi.ChainData, numBlocksVerification uint64) bool {
	if proofHead.Block.Height() == 0 {
		return false
	}
	width := headHeight - proofHead.Block.Height()
	return width < numBlocksVerification
}
