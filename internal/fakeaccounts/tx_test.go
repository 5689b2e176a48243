package fakeaccounts

import (
	"testing"

	"github.com/lightrelay/plcs/domain/consensus/model/externalapi"
	"github.com/lightrelay/plcs/internal/fakeblockutils"
)

func TestAccountsTxRevertRequiresBody(t *testing.T) {
	accounts := New()
	tx, err := accounts.Transaction()
	if err != nil {
		t.Fatalf("Transaction: %+v", err)
	}

	bld := fakeblockutils.NewBuilder()
	genesis := bld.Genesis(0x1effffff, 1)

	if err := tx.RevertBlock(genesis); err == nil {
		t.Fatalf("expected RevertBlock to fail on a bodyless block")
	}
}

func TestAccountsTxCommitInstallsState(t *testing.T) {
	accounts := New()
	tx, err := accounts.Transaction()
	if err != nil {
		t.Fatalf("Transaction: %+v", err)
	}

	bld := fakeblockutils.NewBuilder()
	genesis := bld.Genesis(0x1effffff, 1)
	body := &externalapi.DomainBlockBody{AccountsRoot: genesis.Hash()}
	child, err := bld.ChildWithBody(genesis, 1, 1000, body)
	if err != nil {
		t.Fatalf("ChildWithBody: %+v", err)
	}

	if err := tx.RevertBlock(child); err != nil {
		t.Fatalf("RevertBlock: %+v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %+v", err)
	}
	if accounts.StateRoot() == nil {
		t.Fatalf("expected a state root to be installed after commit")
	}
}

func TestAccountsTxRevertDetectsHashMismatch(t *testing.T) {
	accounts := New()
	tx, err := accounts.Transaction()
	if err != nil {
		t.Fatalf("Transaction: %+v", err)
	}

	bld := fakeblockutils.NewBuilder()
	genesis := bld.Genesis(0x1effffff, 1)

	midPreState := DeriveAccountsRoot(nil, genesis.Hash())
	mid, err := bld.ChildWithBody(genesis, 1, 1000, &externalapi.DomainBlockBody{AccountsRoot: midPreState})
	if err != nil {
		t.Fatalf("ChildWithBody (mid): %+v", err)
	}

	headPreState := DeriveAccountsRoot(midPreState, mid.Hash())
	head, err := bld.ChildWithBody(mid, 2, 2000, &externalapi.DomainBlockBody{AccountsRoot: headPreState})
	if err != nil {
		t.Fatalf("ChildWithBody (head): %+v", err)
	}

	if err := tx.RevertBlock(head); err != nil {
		t.Fatalf("RevertBlock (head, trusted starting point): %+v", err)
	}
	if err := tx.RevertBlock(mid); err != nil {
		t.Fatalf("RevertBlock (mid, untampered): %+v", err)
	}

	// mid's body is mutated in place after the fact; same block hash (the
	// header never covers the body), different declared accounts root.
	tamperedTx, err := accounts.Transaction()
	if err != nil {
		t.Fatalf("Transaction: %+v", err)
	}
	if err := tamperedTx.RevertBlock(head); err != nil {
		t.Fatalf("RevertBlock (head): %+v", err)
	}
	mid.Body().AccountsRoot = genesis.Hash()
	if err := tamperedTx.RevertBlock(mid); err == nil {
		t.Fatalf("expected RevertBlock to reject mid once its declared accounts root was tampered with")
	}
}
