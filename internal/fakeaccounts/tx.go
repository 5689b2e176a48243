package fakeaccounts

import (
	"github.com/lightrelay/plcs/domain/consensus/model/externalapi"
	"github.com/lightrelay/plcs/domain/consensus/ruleerrors"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// accountsTx is a reference model.AccountsTx: current is this transaction's
// view of the state root, moved backward one block at a time by
// RevertBlock. nil means no expectation has been established yet - true
// only before the first RevertBlock call, which is trusted as the walk's
// starting point.
type accountsTx struct {
	accounts *Accounts
	current  *externalapi.DomainHash
	closed   bool
}

// RevertBlock requires block to carry a body (only a full block declares
// enough to revert). block's body declares the state root as of
// immediately before block was applied; RevertBlock checks that re-deriving
// the post-block root from that declared pre-state and block's own hash
// reproduces tx.current before accepting it, then moves tx.current back to
// the declared pre-state. This has no relation to any real account
// arithmetic; it exists only to give the reverse block applier something
// concrete and tamper-detecting to walk backward through.
func (tx *accountsTx) RevertBlock(block externalapi.Block) error {
	if tx.closed {
		return errors.New("accounts transaction already closed")
	}
	body := block.Body()
	if body == nil {
		return errors.Wrap(ruleerrors.ErrAccountStateRevertFailed, "block has no body to revert")
	}

	if tx.current != nil {
		expectedPostState := DeriveAccountsRoot(body.AccountsRoot, block.Hash())
		if !expectedPostState.Equal(tx.current) {
			return errors.Wrap(ruleerrors.ErrAccountStateRevertFailed, "accounts hash inconsistency")
		}
	}
	tx.current = body.AccountsRoot
	return nil
}

// DeriveAccountsRoot folds prevRoot (the state as of immediately before a
// block) and that block's own hash into the state root as of immediately
// after it. Exported so testfixtures can build chains whose declared
// account roots this package's own consistency check will accept.
func DeriveAccountsRoot(prevRoot, blockHash *externalapi.DomainHash) *externalapi.DomainHash {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	if prevRoot != nil {
		h.Write(prevRoot.ByteSlice())
	}
	h.Write(blockHash.ByteSlice())
	sum := h.Sum(nil)
	var arr [externalapi.DomainHashSize]byte
	copy(arr[:], sum)
	return externalapi.NewDomainHashFromByteArray(&arr)
}

// Commit installs this transaction's final state root as the live one.
func (tx *accountsTx) Commit() error {
	if tx.closed {
		return nil
	}
	tx.closed = true
	tx.accounts.setStateRoot(tx.current)
	return nil
}

// Abort discards every RevertBlock call made on this transaction.
func (tx *accountsTx) Abort() error {
	tx.closed = true
	return nil
}
