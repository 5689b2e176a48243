// Package fakeaccounts is a reference implementation of the account-state
// collaborator PLCS treats as opaque: real balances, contracts or whatever
// else an account actually holds are none of PLCS's business, so this
// stand-in tracks nothing but a single evolving state root and lets the
// reverse block applier and accounts snapshot sink exercise the contract
// against something real.
package fakeaccounts

import (
	"sync"

	"github.com/lightrelay/plcs/domain/consensus/model"
	"github.com/lightrelay/plcs/domain/consensus/model/externalapi"
)

// Accounts is a reference model.Accounts.
type Accounts struct {
	mu        sync.Mutex
	stateRoot *externalapi.DomainHash
}

// New returns an empty Accounts, with no state root set.
func New() *Accounts {
	return &Accounts{}
}

// StateRoot returns the account system's current live state root, or nil
// if nothing has ever been committed.
func (a *Accounts) StateRoot() *externalapi.DomainHash {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stateRoot
}

// Transaction opens a new transaction with no established expectation yet:
// its first RevertBlock call is trusted as the walk's starting point,
// matching stateRoot here being an opaque snapshot-tree placeholder rather
// than a value RevertBlock's own hash chain could check itself against.
func (a *Accounts) Transaction() (model.AccountsTx, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return &accountsTx{accounts: a}, nil
}

// NewPartialTree starts a fresh partial tree pinned at root, tied back to
// a so a successful Commit can install root as the live state.
func (a *Accounts) NewPartialTree(root *externalapi.DomainHash) (model.PartialAccountsTree, error) {
	return newPartialAccountsTree(a, root), nil
}

func (a *Accounts) setStateRoot(root *externalapi.DomainHash) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stateRoot = root
}
