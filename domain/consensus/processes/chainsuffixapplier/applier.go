// Package chainsuffixapplier implements model.ChainSuffixApplier: adopting
// a verified chain proof into the store, and pushing individual light
// (header-only or full) blocks along the normal forward path afterward.
package chainsuffixapplier

import (
	"github.com/lightrelay/plcs/domain/consensus/model"
	"github.com/lightrelay/plcs/domain/consensus/model/externalapi"
	"github.com/lightrelay/plcs/domain/consensus/ruleerrors"
	"github.com/lightrelay/plcs/domain/consensus/utils/interlink"
	"github.com/lightrelay/plcs/infrastructure/logger"
	"github.com/pkg/errors"
)

// Applier is the reference model.ChainSuffixApplier.
type Applier struct {
	blockUtils model.BlockUtils
}

// New returns a new Applier.
func New(blockUtils model.BlockUtils) *Applier {
	return &Applier{blockUtils: blockUtils}
}

// ApplyProof truncates storeTx and rebuilds it from proof: the prefix head
// becomes the new extendable anchor, the rest of the sparse prefix is kept
// only for lowest-common-ancestor lookups, and the reconstructed suffix
// extends the chain forward from there. The truncation is unconditional:
// entries already in storeTx are never reused, even when the proof's prefix
// head is among them as an extendable entry.
func (a *Applier) ApplyProof(storeTx model.StoreTx, proof *externalapi.ChainProof, reconstructedSuffix []externalapi.Block) (*externalapi.ChainData, error) {
	onEnd := logger.LogAndMeasureExecutionTime(log, "Applier.ApplyProof")
	defer onEnd()

	if err := storeTx.Truncate(); err != nil {
		return nil, err
	}

	startIdx := 0
	head := proof.PrefixHead()
	if head != nil {
		if err := a.seedAnchor(storeTx, head); err != nil {
			return nil, err
		}
		for _, b := range proof.Prefix[:len(proof.Prefix)-1] {
			if err := storeTx.PutChainData(b.Hash(), &externalapi.ChainData{
				Block:       b,
				Totals:      externalapi.NewLookupOnlyTotals(),
				OnMainChain: true,
			}); err != nil {
				return nil, err
			}
		}
	} else {
		if len(reconstructedSuffix) == 0 {
			return nil, ruleerrors.ErrEmptyProof
		}
		if err := a.seedAnchor(storeTx, reconstructedSuffix[0]); err != nil {
			return nil, err
		}
		startIdx = 1
	}

	for i := startIdx; i < len(reconstructedSuffix); i++ {
		result, err := a.PushLightBlock(storeTx, reconstructedSuffix[i])
		if err != nil {
			return nil, err
		}
		if result != externalapi.PushBlockOKExtended {
			return nil, errors.Errorf("unexpected result %s while applying a freshly accepted proof's suffix", result)
		}
	}

	headHash, ok, err := storeTx.HeadHash()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("no head recorded after applying proof")
	}
	return storeTx.GetChainData(headHash)
}

// seedAnchor installs block as the extendable main-chain head, with fresh
// totals of its own, un-chained from whatever came before it.
func (a *Applier) seedAnchor(storeTx model.StoreTx, block externalapi.Block) error {
	data := &externalapi.ChainData{
		Block:       block,
		Totals:      externalapi.NewExtendableTotals(block.Difficulty(), a.blockUtils.RealDifficulty(block.Hash())),
		OnMainChain: true,
	}
	if err := storeTx.PutChainData(block.Hash(), data); err != nil {
		return err
	}
	return storeTx.SetHead(block.Hash())
}

// PushLightBlock pushes a single block along the normal forward path.
func (a *Applier) PushLightBlock(storeTx model.StoreTx, block externalapi.Block) (externalapi.PushBlockResult, error) {
	if _, err := storeTx.GetChainData(block.Hash()); err == nil {
		return externalapi.PushBlockOKKnown, nil
	} else if !model.IsNotFoundError(err) {
		return externalapi.PushBlockErrInvalid, err
	}

	parentData, err := storeTx.GetChainData(block.PrevHash())
	if err != nil {
		if model.IsNotFoundError(err) {
			return externalapi.PushBlockErrOrphan, ruleerrors.NewErrMissingParent(block.PrevHash())
		}
		return externalapi.PushBlockErrInvalid, err
	}
	if !parentData.Totals.IsExtendable() {
		return externalapi.PushBlockErrOrphan, errors.Wrap(ruleerrors.ErrOrphanBlock, "parent is a lookup-only prefix entry")
	}

	if err := a.validateAgainstParent(block, parentData); err != nil {
		return externalapi.PushBlockErrInvalid, err
	}

	parentDifficulty, _ := parentData.Totals.TotalDifficulty()
	parentWork, _ := parentData.Totals.TotalWork()
	newData := &externalapi.ChainData{
		Block: block,
		Totals: externalapi.NewExtendableTotals(
			parentDifficulty+block.Difficulty(),
			parentWork+a.blockUtils.RealDifficulty(block.Hash()),
		),
	}

	currentHead, haveHead, err := storeTx.HeadHash()
	if err != nil {
		return externalapi.PushBlockErrInvalid, err
	}

	if !haveHead || block.PrevHash().Equal(currentHead) {
		newData.OnMainChain = true
		if err := storeTx.PutChainData(block.Hash(), newData); err != nil {
			return externalapi.PushBlockErrInvalid, err
		}
		if err := storeTx.SetHead(block.Hash()); err != nil {
			return externalapi.PushBlockErrInvalid, err
		}
		return externalapi.PushBlockOKExtended, nil
	}

	if err := storeTx.PutChainData(block.Hash(), newData); err != nil {
		return externalapi.PushBlockErrInvalid, err
	}

	currentHeadData, err := storeTx.GetChainData(currentHead)
	if err != nil {
		return externalapi.PushBlockErrInvalid, err
	}
	currentHeadDifficulty, _ := currentHeadData.Totals.TotalDifficulty()
	newDifficulty, _ := newData.Totals.TotalDifficulty()
	if newDifficulty <= currentHeadDifficulty {
		return externalapi.PushBlockOKForked, nil
	}

	if err := a.rebranchTo(storeTx, currentHead, block.Hash()); err != nil {
		return externalapi.PushBlockErrInvalid, err
	}
	return externalapi.PushBlockOKRebranched, nil
}

func (a *Applier) validateAgainstParent(block externalapi.Block, parentData *externalapi.ChainData) error {
	if err := block.Verify(); err != nil {
		return errors.Wrap(ruleerrors.ErrBlockVerificationFailed, err.Error())
	}
	if !block.IsImmediateSuccessorOf(parentData.Block) {
		return ruleerrors.ErrNotImmediateSuccessor
	}

	if expectedBits, ok, err := a.blockUtils.NextRequiredBits(parentData.Block); err != nil {
		return err
	} else if ok && expectedBits != block.NBits() {
		return ruleerrors.NewErrBadRetarget(expectedBits, block.NBits())
	}

	expectedInterlink := interlink.Next(a.blockUtils, parentData.Block.Hash(), parentData.Block.Interlink())
	if !a.blockUtils.HashInterlink(expectedInterlink).Equal(block.Header().InterlinkHash) {
		return ruleerrors.ErrInterlinkMismatch
	}
	return nil
}

// rebranchTo switches the main chain from oldHead to newTip: it walks both
// chains backward to their common ancestor, unmarking the old path and
// marking the new one. The old chain is walked back until it reaches a
// block whose predecessor is not stored (genesis, or the anchor seeded
// from a sparse proof prefix).
func (a *Applier) rebranchTo(storeTx model.StoreTx, oldHead, newTip *externalapi.DomainHash) error {
	oldChain := make(map[externalapi.DomainHash]bool)
	for cur := oldHead; cur != nil; {
		oldChain[*cur] = true
		data, err := storeTx.GetChainData(cur)
		if err != nil {
			if model.IsNotFoundError(err) {
				break
			}
			return err
		}
		cur = data.Block.PrevHash()
	}

	var newPath []*externalapi.DomainHash
	var forkPoint *externalapi.DomainHash
	for cur := newTip; cur != nil; {
		if oldChain[*cur] {
			forkPoint = cur
			break
		}
		newPath = append(newPath, cur)
		data, err := storeTx.GetChainData(cur)
		if err != nil {
			return err
		}
		cur = data.Block.PrevHash()
	}

	for cur := oldHead; cur != nil && !cur.Equal(forkPoint); {
		data, err := storeTx.GetChainData(cur)
		if err != nil {
			return err
		}
		data.OnMainChain = false
		if err := storeTx.PutChainData(cur, data); err != nil {
			return err
		}
		cur = data.Block.PrevHash()
	}

	for _, hash := range newPath {
		data, err := storeTx.GetChainData(hash)
		if err != nil {
			return err
		}
		data.OnMainChain = true
		if err := storeTx.PutChainData(hash, data); err != nil {
			return err
		}
	}

	return storeTx.SetHead(newTip)
}
