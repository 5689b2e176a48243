package reverseblockapplier

import (
	"testing"

	"github.com/lightrelay/plcs/domain/consensus/model/externalapi"
	"github.com/lightrelay/plcs/internal/fakeaccounts"
	"github.com/lightrelay/plcs/internal/fakeblockutils"
	"github.com/lightrelay/plcs/internal/fakestore"
	"github.com/lightrelay/plcs/internal/testfixtures"
)

func TestPushBlockWalksBackwardAndRevertsAccounts(t *testing.T) {
	blockUtils := fakeblockutils.New()
	chain := testfixtures.ChainWithBodies(10)

	store := fakestore.New()
	storeTx, err := store.Begin()
	if err != nil {
		t.Fatalf("Begin: %+v", err)
	}

	accounts := fakeaccounts.New()
	accountsTx, err := accounts.Transaction()
	if err != nil {
		t.Fatalf("Transaction: %+v", err)
	}

	tip := chain[len(chain)-1]
	proofHead := &externalapi.ChainData{
		Block:  tip,
		Totals: externalapi.NewExtendableTotals(tip.Difficulty(), blockUtils.RealDifficulty(tip.Hash())),
	}

	applier := New(blockUtils)

	newHead, result, err := applier.PushBlock(storeTx, accountsTx, proofHead, tip)
	if err != nil {
		t.Fatalf("PushBlock (head-path): %+v", err)
	}
	if result != externalapi.PushBlockOKExtended {
		t.Fatalf("got %s, want OK_EXTENDED", result)
	}
	proofHead = newHead

	parent := chain[len(chain)-2]
	newHead, result, err = applier.PushBlock(storeTx, accountsTx, proofHead, parent)
	if err != nil {
		t.Fatalf("PushBlock (backward-path): %+v", err)
	}
	if result != externalapi.PushBlockOKExtended {
		t.Fatalf("got %s, want OK_EXTENDED", result)
	}
	if !newHead.Block.Hash().Equal(parent.Hash()) {
		t.Fatalf("proof head did not advance to the pushed parent")
	}
}

func TestPushBlockRejectsTamperedAccountsRoot(t *testing.T) {
	blockUtils := fakeblockutils.New()
	chain := testfixtures.ChainWithBodies(10)

	store := fakestore.New()
	storeTx, err := store.Begin()
	if err != nil {
		t.Fatalf("Begin: %+v", err)
	}
	accounts := fakeaccounts.New()
	accountsTx, err := accounts.Transaction()
	if err != nil {
		t.Fatalf("Transaction: %+v", err)
	}

	tip := chain[len(chain)-1]
	proofHead := &externalapi.ChainData{
		Block:  tip,
		Totals: externalapi.NewExtendableTotals(tip.Difficulty(), blockUtils.RealDifficulty(tip.Hash())),
	}

	applier := New(blockUtils)
	newHead, result, err := applier.PushBlock(storeTx, accountsTx, proofHead, tip)
	if err != nil || result != externalapi.PushBlockOKExtended {
		t.Fatalf("PushBlock (head-path): got (%s, %v)", result, err)
	}
	proofHead = newHead

	parent := chain[len(chain)-2]
	genuineRoot := parent.Body().AccountsRoot
	parent.Body().AccountsRoot = tip.Hash()

	_, result, err = applier.PushBlock(storeTx, accountsTx, proofHead, parent)
	if err == nil || result != externalapi.PushBlockErrInvalid {
		t.Fatalf("got (%s, %v), want (ERR_INVALID, non-nil) for a tampered accounts root", result, err)
	}
	if !proofHead.Block.Hash().Equal(tip.Hash()) {
		t.Fatalf("proofHead should be unchanged after a rejected block")
	}

	parent.Body().AccountsRoot = genuineRoot
	newHead, result, err = applier.PushBlock(storeTx, accountsTx, proofHead, parent)
	if err != nil || result != externalapi.PushBlockOKExtended {
		t.Fatalf("correct parent after a rejected tampered one: got (%s, %v)", result, err)
	}
	if !newHead.Block.Hash().Equal(parent.Hash()) {
		t.Fatalf("proofHead did not advance to the correctly-retried parent")
	}
}

func TestPushBlockRejectsOrphan(t *testing.T) {
	blockUtils := fakeblockutils.New()
	chain := testfixtures.ChainWithBodies(10)

	store := fakestore.New()
	storeTx, err := store.Begin()
	if err != nil {
		t.Fatalf("Begin: %+v", err)
	}
	accounts := fakeaccounts.New()
	accountsTx, err := accounts.Transaction()
	if err != nil {
		t.Fatalf("Transaction: %+v", err)
	}

	tip := chain[len(chain)-1]
	proofHead := &externalapi.ChainData{Block: tip, Totals: externalapi.NewExtendableTotals(tip.Difficulty(), 1)}

	applier := New(blockUtils)
	unrelated := chain[3]
	_, result, err := applier.PushBlock(storeTx, accountsTx, proofHead, unrelated)
	if err == nil || result != externalapi.PushBlockErrOrphan {
		t.Fatalf("got (%s, %v), want (ERR_ORPHAN, non-nil)", result, err)
	}
}

func TestNeedsMoreBlocks(t *testing.T) {
	blockUtils := fakeblockutils.New()
	applier := New(blockUtils)
	chain := testfixtures.Chain(10)

	proofHead := &externalapi.ChainData{Block: chain[5]}
	if !applier.NeedsMoreBlocks(9, proofHead, 10) {
		t.Fatalf("expected more blocks to be needed: window is only 4 wide")
	}
	if applier.NeedsMoreBlocks(9, proofHead, 3) {
		t.Fatalf("expected no more blocks to be needed: window is already 4 wide")
	}

	genesisHead := &externalapi.ChainData{Block: chain[0]}
	if applier.NeedsMoreBlocks(9, genesisHead, 100) {
		t.Fatalf("expected no more blocks to be needed once proof head reaches genesis")
	}
}
