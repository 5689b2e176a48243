// Package proofevaluator implements model.ProofEvaluator: checking a chain
// proof's internal consistency and scoring it against whatever proof the
// synchronizer currently holds.
package proofevaluator

import (
	"github.com/lightrelay/plcs/domain/consensus/model"
	"github.com/lightrelay/plcs/domain/consensus/model/externalapi"
	"github.com/lightrelay/plcs/domain/consensus/ruleerrors"
	"github.com/lightrelay/plcs/domain/consensus/utils/blockview"
	"github.com/lightrelay/plcs/domain/consensus/utils/interlink"
	"github.com/lightrelay/plcs/infrastructure/logger"
	"github.com/lightrelay/plcs/util/math"
)

// Evaluator is the reference model.ProofEvaluator.
type Evaluator struct {
	blockUtils model.BlockUtils
	policy     externalapi.Policy
}

// New returns a new Evaluator.
func New(blockUtils model.BlockUtils, policy externalapi.Policy) *Evaluator {
	return &Evaluator{blockUtils: blockUtils, policy: policy}
}

// Verify checks proof's internal consistency and, on success, returns the
// dense suffix reconstructed as header-only blockview blocks.
func (e *Evaluator) Verify(proof *externalapi.ChainProof) (bool, []externalapi.Block, error) {
	onEnd := logger.LogAndMeasureExecutionTime(log, "Evaluator.Verify")
	defer onEnd()

	if len(proof.Prefix) == 0 && len(proof.Suffix) == 0 {
		return false, nil, ruleerrors.ErrEmptyProof
	}

	if err := e.verifySuffixLength(proof); err != nil {
		return false, nil, err
	}

	if err := e.verifyPrefix(proof.Prefix); err != nil {
		return false, nil, err
	}

	reconstructed, err := e.reconstructSuffix(proof)
	if err != nil {
		return false, nil, err
	}

	log.Debugf("verified chain proof: %d prefix blocks, %d suffix headers, head height %d",
		len(proof.Prefix), len(proof.Suffix), proof.HeadHeight())
	return true, reconstructed, nil
}

// verifySuffixLength enforces that the suffix is either exactly K headers
// long, or - for a chain shorter than K - covers every block above the
// genesis anchor.
func (e *Evaluator) verifySuffixLength(proof *externalapi.ChainProof) error {
	headHeight := proof.HeadHeight()
	required := math.MinUint64(uint64(e.policy.K), headHeight)
	if uint64(len(proof.Suffix)) != required {
		return ruleerrors.ErrProofSuffixLengthMismatch
	}
	return nil
}

// verifyPrefix checks that the sparse prefix is strictly ascending in
// height and that every prefix block verifies on its own terms.
func (e *Evaluator) verifyPrefix(prefix []externalapi.Block) error {
	for i, block := range prefix {
		if err := block.Verify(); err != nil {
			return ruleerrors.ErrProofPrefixInvalid
		}
		if i > 0 && block.Height() <= prefix[i-1].Height() {
			return ruleerrors.ErrProofPrefixNotAscending
		}
	}
	return nil
}

// reconstructSuffix walks the dense suffix, rebuilding each header's
// interlink from its predecessor and checking it against the header's own
// declared InterlinkHash.
func (e *Evaluator) reconstructSuffix(proof *externalapi.ChainProof) ([]externalapi.Block, error) {
	var prevHash *externalapi.DomainHash
	var prevInterlink externalapi.DomainInterlink
	var prevHeight uint64
	havePrev := false

	if head := proof.PrefixHead(); head != nil {
		prevHash = head.Hash()
		prevInterlink = head.Interlink()
		prevHeight = head.Height()
		havePrev = true
	}

	reconstructed := make([]externalapi.Block, 0, len(proof.Suffix))
	for _, header := range proof.Suffix {
		var thisInterlink externalapi.DomainInterlink

		if havePrev {
			if header.ParentHash == nil || !header.ParentHash.Equal(prevHash) || header.Height != prevHeight+1 {
				return nil, ruleerrors.ErrNotImmediateSuccessor
			}
			thisInterlink = interlink.Next(e.blockUtils, prevHash, prevInterlink)
			if !e.blockUtils.HashInterlink(thisInterlink).Equal(header.InterlinkHash) {
				return nil, ruleerrors.ErrInterlinkMismatch
			}
		}

		reconstructed = append(reconstructed, blockview.New(header, thisInterlink))
		prevHash, prevInterlink, prevHeight, havePrev = header.Hash, thisInterlink, header.Height, true
	}
	return reconstructed, nil
}
