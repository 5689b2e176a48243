// Package synchronizer implements model.Synchronizer: the four-phase sync
// state machine that drives the proof evaluator, chain suffix applier,
// reverse block applier and accounts snapshot sink through a single
// bootstrap attempt against an untrusted peer.
package synchronizer

import (
	"sync"

	"github.com/google/uuid"
	"github.com/lightrelay/plcs/domain/consensus/model"
	"github.com/lightrelay/plcs/domain/consensus/model/externalapi"
	"github.com/lightrelay/plcs/domain/consensus/ruleerrors"
	"github.com/pkg/errors"
)

// Synchronizer is the reference model.Synchronizer. A single instance
// represents a single bootstrap attempt: once it reaches PhaseAborted, or
// its underlying store transaction has been committed, it is done.
type Synchronizer struct {
	mu sync.Mutex

	// id tags every log line this attempt produces, so a log stream
	// interleaved across several concurrent attempts against different
	// peers can still be told apart.
	id uuid.UUID

	policy     externalapi.Policy
	blockUtils model.BlockUtils
	store      model.ChainDataStore
	accounts   model.Accounts

	evaluator      model.ProofEvaluator
	suffixApplier  model.ChainSuffixApplier
	reverseApplier model.ReverseBlockApplier
	snapshotSink   model.AccountsSnapshotSink

	events *eventBus

	phase     externalapi.SyncPhase
	committed bool

	storeTx      model.StoreTx
	currentProof *externalapi.ChainProof
	proofHead    *externalapi.ChainData
	headHeight   uint64

	partialTree model.PartialAccountsTree
	accountsTx  model.AccountsTx
}

// New returns a new Synchronizer in PhaseProveChain, wired to the given
// collaborators and processes. It rejects a policy with a zero-valued
// tuning constant, since every component divides or indexes by M and K.
func New(
	policy externalapi.Policy,
	blockUtils model.BlockUtils,
	store model.ChainDataStore,
	accounts model.Accounts,
	evaluator model.ProofEvaluator,
	suffixApplier model.ChainSuffixApplier,
	reverseApplier model.ReverseBlockApplier,
	snapshotSink model.AccountsSnapshotSink,
) (*Synchronizer, error) {
	if err := validatePolicy(policy); err != nil {
		return nil, err
	}
	return &Synchronizer{
		id:             uuid.New(),
		policy:         policy,
		blockUtils:     blockUtils,
		store:          store,
		accounts:       accounts,
		evaluator:      evaluator,
		suffixApplier:  suffixApplier,
		reverseApplier: reverseApplier,
		snapshotSink:   snapshotSink,
		events:         newEventBus(),
		phase:          externalapi.PhaseProveChain,
	}, nil
}

func validatePolicy(policy externalapi.Policy) error {
	if policy.M == 0 {
		return errors.New("invalid policy: M must be non-zero")
	}
	if policy.K == 0 {
		return errors.New("invalid policy: K must be non-zero")
	}
	if policy.NumBlocksVerification == 0 {
		return errors.New("invalid policy: NumBlocksVerification must be non-zero")
	}
	return nil
}

// PushProof is legal only in PhaseProveChain.
func (s *Synchronizer) PushProof(proof *externalapi.ChainProof) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != externalapi.PhaseProveChain {
		return false, ruleerrors.ErrWrongPhase
	}

	ok, reconstructedSuffix, err := s.evaluator.Verify(proof)
	if err != nil || !ok {
		return false, err
	}

	better, err := s.evaluator.IsBetterProof(proof, s.currentProof)
	if err != nil {
		s.abortLocked()
		return false, err
	}
	if !better {
		log.Debugf("[%s] rejecting a verified but non-improving chain proof", s.id)
		s.abortLocked()
		return true, nil
	}

	if s.storeTx == nil {
		s.storeTx, err = s.store.Begin()
		if err != nil {
			s.abortLocked()
			return false, err
		}
	}

	head, err := s.suffixApplier.ApplyProof(s.storeTx, proof, reconstructedSuffix)
	if err != nil {
		s.abortLocked()
		return false, err
	}

	tree, err := s.accounts.NewPartialTree(head.Block.Hash())
	if err != nil {
		s.abortLocked()
		return false, err
	}
	s.partialTree = tree

	s.currentProof = proof
	s.proofHead = head
	s.headHeight = proof.HeadHeight()
	s.phase = externalapi.PhaseProveAccountsTree
	log.Infof("[%s] accepted chain proof, head height %d, moving to PROVE_ACCOUNTS_TREE", s.id, s.headHeight)
	s.events.emit("head-changed", head)
	return true, nil
}

// PushAccountsTreeChunk is legal only in PhaseProveAccountsTree.
func (s *Synchronizer) PushAccountsTreeChunk(chunk []byte) (externalapi.ChunkResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != externalapi.PhaseProveAccountsTree {
		return externalapi.ChunkErrIncorrectProof, ruleerrors.ErrWrongPhase
	}

	if s.partialTree == nil {
		tree, err := s.accounts.NewPartialTree(s.proofHead.Block.Hash())
		if err != nil {
			s.abortLocked()
			return externalapi.ChunkErrIncorrectProof, err
		}
		s.partialTree = tree
	}

	result, err := s.snapshotSink.PushChunk(s.partialTree, chunk)
	if err != nil {
		return result, err
	}
	if result != externalapi.ChunkOKComplete {
		return result, nil
	}

	accountsTx, err := s.snapshotSink.FinalizeSnapshot(s.partialTree, s.accounts)
	if err != nil {
		s.abortLocked()
		return result, err
	}
	s.accountsTx = accountsTx
	s.phase = externalapi.PhaseProveBlocks
	log.Infof("[%s] accounts snapshot complete, moving to PROVE_BLOCKS", s.id)
	s.events.emit("accounts-tree-complete", nil)
	return result, nil
}

// PushBlock is legal in PhaseProveBlocks (reverse application) and
// PhaseComplete (normal forward application).
func (s *Synchronizer) PushBlock(block externalapi.Block) (externalapi.PushBlockResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case externalapi.PhaseProveBlocks:
		return s.pushBlockReverse(block)
	case externalapi.PhaseComplete:
		return s.pushBlockForward(block)
	default:
		return externalapi.PushBlockErrOrphan, ruleerrors.ErrWrongPhase
	}
}

func (s *Synchronizer) pushBlockReverse(block externalapi.Block) (externalapi.PushBlockResult, error) {
	newHead, result, err := s.reverseApplier.PushBlock(s.storeTx, s.accountsTx, s.proofHead, block)
	if err != nil {
		return result, err
	}
	s.proofHead = newHead

	if !s.reverseApplier.NeedsMoreBlocks(s.headHeight, s.proofHead, s.policy.NumBlocksVerification) {
		s.completeLocked()
	}
	return result, nil
}

func (s *Synchronizer) pushBlockForward(block externalapi.Block) (externalapi.PushBlockResult, error) {
	tx, err := s.store.Begin()
	if err != nil {
		return externalapi.PushBlockErrInvalid, err
	}

	result, err := s.suffixApplier.PushLightBlock(tx, block)
	if err != nil {
		tx.Abort()
		return result, err
	}
	if err := tx.Commit(); err != nil {
		return result, err
	}

	if result == externalapi.PushBlockOKExtended || result == externalapi.PushBlockOKRebranched {
		s.events.emit("head-changed", block)
	}
	return result, nil
}

// completeLocked transitions into PhaseComplete. The accounts transaction
// only existed to confirm the backward walk never hit an inconsistency; it
// is discarded, not committed, so the account system's live state stays
// whatever the snapshot itself installed.
func (s *Synchronizer) completeLocked() {
	if s.accountsTx != nil {
		s.accountsTx.Abort()
		s.accountsTx = nil
	}
	s.phase = externalapi.PhaseComplete
	log.Infof("[%s] verified window reached required depth, moving to COMPLETE", s.id)
	s.events.emit("complete", nil)
}

// Commit is legal only in PhaseComplete. It is idempotent.
func (s *Synchronizer) Commit() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != externalapi.PhaseComplete {
		return false, ruleerrors.ErrWrongPhase
	}
	if s.committed {
		return true, nil
	}
	if err := s.storeTx.Commit(); err != nil {
		return false, err
	}
	s.committed = true
	s.events.emit("committed", nil)
	return true, nil
}

// Abort discards the attempt. Legal in any phase, idempotent.
func (s *Synchronizer) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.abortLocked()
}

func (s *Synchronizer) abortLocked() {
	if s.phase == externalapi.PhaseAborted {
		return
	}
	if s.storeTx != nil {
		s.storeTx.Abort()
	}
	if s.accountsTx != nil {
		s.accountsTx.Abort()
	}
	if s.partialTree != nil {
		s.partialTree.Abort()
	}
	s.phase = externalapi.PhaseAborted
	log.Warnf("[%s] sync attempt aborted", s.id)
	s.events.emit("aborted", nil)
}

// Phase returns the current phase.
func (s *Synchronizer) Phase() externalapi.SyncPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// MissingAccountsPrefix returns what the partial accounts tree still
// needs, or "" outside PhaseProveAccountsTree.
func (s *Synchronizer) MissingAccountsPrefix() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != externalapi.PhaseProveAccountsTree || s.partialTree == nil {
		return ""
	}
	return s.partialTree.MissingPrefix()
}

// ProofHeadHeight returns the height of the current proof head: the
// accepted proof's head, then, during PhaseProveBlocks, each older block
// the backward walk has reached. It is 0 if no proof has been accepted yet.
func (s *Synchronizer) ProofHeadHeight() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.proofHead == nil {
		return 0
	}
	return s.proofHead.Block.Height()
}

// NeedsMoreBlocks reports whether PhaseProveBlocks still needs more
// backward-applied blocks before the verified window reaches the policy's
// required depth. Outside PhaseProveBlocks there is nothing left to verify.
func (s *Synchronizer) NeedsMoreBlocks() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != externalapi.PhaseProveBlocks || s.proofHead == nil {
		return false
	}
	return s.reverseApplier.NeedsMoreBlocks(s.headHeight, s.proofHead, s.policy.NumBlocksVerification)
}

// GetBlockLocators returns an exponentially-spaced sample of main-chain
// hashes, walking backward from the current head - the same shape a peer
// uses to find the highest hash it and we agree on. The walk ends at
// genesis, or at the oldest stored block whose predecessor is not stored
// (after PushProof, the anchor seeded from the proof's sparse prefix).
func (s *Synchronizer) GetBlockLocators() ([]*externalapi.DomainHash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.storeTx == nil {
		return nil, nil
	}
	headHash, ok, err := s.storeTx.HeadHash()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var locators []*externalapi.DomainHash
	currentHash := headHash
	step := uint64(1)
	for {
		locators = append(locators, currentHash)

		data, err := s.storeTx.GetChainData(currentHash)
		if err != nil {
			return nil, err
		}
		if data.Block.Height() == 0 {
			break
		}

		prevHash := currentHash
		for i := uint64(0); i < step; i++ {
			prevData, err := s.storeTx.GetChainData(prevHash)
			if err != nil {
				return nil, err
			}
			if prevData.Block.Height() == 0 {
				break
			}
			parentHash := prevData.Block.PrevHash()
			if _, err := s.storeTx.GetChainData(parentHash); err != nil {
				if model.IsNotFoundError(err) {
					break
				}
				return nil, err
			}
			prevHash = parentHash
		}
		if prevHash.Equal(currentHash) {
			break
		}
		currentHash = prevHash
		step *= 2
	}
	return locators, nil
}

// Subscribe registers handler to be called synchronously, under the
// synchronizer's own lock, whenever event fires. Handlers must not call
// back into the synchronizer.
func (s *Synchronizer) Subscribe(event string, handler func(payload interface{})) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events.subscribe(event, handler)
}
