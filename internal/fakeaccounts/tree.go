package fakeaccounts

import (
	"fmt"
	"hash"

	"github.com/lightrelay/plcs/domain/consensus/model/externalapi"
	"github.com/lightrelay/plcs/domain/consensus/ruleerrors"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// partialAccountsTree is a reference model.PartialAccountsTree. Chunks are
// laid out as [1 byte final flag][4 bytes index, unused beyond ordering
// checks][payload]; payload bytes across the whole sequence are hashed
// together and checked against root once the final chunk arrives.
type partialAccountsTree struct {
	accounts      *Accounts
	root          *externalapi.DomainHash
	hasher        hash.Hash
	expectedIndex uint32
	complete      bool
	closed        bool
}

func newPartialAccountsTree(accounts *Accounts, root *externalapi.DomainHash) *partialAccountsTree {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	return &partialAccountsTree{accounts: accounts, root: root, hasher: h}
}

// PushChunk accepts the next chunk. See the type doc for the wire format.
func (t *partialAccountsTree) PushChunk(chunk []byte) (externalapi.ChunkResult, error) {
	if t.complete {
		return externalapi.ChunkErrIncorrectProof, errors.New("partial accounts tree is already complete")
	}
	if len(chunk) < 5 {
		return externalapi.ChunkErrIncorrectProof, errors.Wrap(ruleerrors.ErrChunkVerificationFailed, "chunk shorter than header")
	}

	final := chunk[0] != 0
	index := uint32(chunk[1])<<24 | uint32(chunk[2])<<16 | uint32(chunk[3])<<8 | uint32(chunk[4])
	if index != t.expectedIndex {
		return externalapi.ChunkErrIncorrectProof, errors.Wrapf(ruleerrors.ErrChunkOutOfOrder,
			"expected chunk index %d, got %d", t.expectedIndex, index)
	}

	t.hasher.Write(chunk[5:])
	t.expectedIndex++

	if !final {
		return externalapi.ChunkOKUnfinished, nil
	}

	sum := t.hasher.Sum(nil)
	var arr [externalapi.DomainHashSize]byte
	copy(arr[:], sum)
	computedRoot := externalapi.NewDomainHashFromByteArray(&arr)
	if !computedRoot.Equal(t.root) {
		return externalapi.ChunkErrIncorrectProof, errors.Wrapf(ruleerrors.ErrChunkVerificationFailed,
			"accounts tree root mismatch: pinned %s, computed %s", t.root, computedRoot)
	}

	t.complete = true
	return externalapi.ChunkOKComplete, nil
}

// MissingPrefix reports the next expected chunk index, or "" once complete.
func (t *partialAccountsTree) MissingPrefix() string {
	if t.complete {
		return ""
	}
	return fmt.Sprintf("%d", t.expectedIndex)
}

// Commit installs root as the accounts system's live state root. Only
// legal once the tree is complete.
func (t *partialAccountsTree) Commit() error {
	if t.closed {
		return nil
	}
	if !t.complete {
		return errors.New("cannot commit an incomplete partial accounts tree")
	}
	t.closed = true
	t.accounts.setStateRoot(t.root)
	return nil
}

// Abort discards this partial tree's accumulated state.
func (t *partialAccountsTree) Abort() error {
	t.closed = true
	return nil
}
