package chainsuffixapplier

import (
	"testing"

	"github.com/lightrelay/plcs/domain/consensus/model/externalapi"
	"github.com/lightrelay/plcs/domain/consensus/processes/proofevaluator"
	"github.com/lightrelay/plcs/internal/fakeblockutils"
	"github.com/lightrelay/plcs/internal/fakestore"
	"github.com/lightrelay/plcs/internal/testfixtures"
)

func TestApplyProofThenPushLightBlockExtends(t *testing.T) {
	blockUtils := fakeblockutils.New()
	chain := testfixtures.Chain(20)
	proof := testfixtures.Proof(chain, 5)

	evaluator := proofevaluator.New(blockUtils, externalapi.Policy{M: 1, K: 5})
	ok, reconstructedSuffix, err := evaluator.Verify(proof)
	if err != nil || !ok {
		t.Fatalf("Verify: ok=%v err=%+v", ok, err)
	}

	store := fakestore.New()
	storeTx, err := store.Begin()
	if err != nil {
		t.Fatalf("Begin: %+v", err)
	}

	applier := New(blockUtils)
	head, err := applier.ApplyProof(storeTx, proof, reconstructedSuffix)
	if err != nil {
		t.Fatalf("ApplyProof: %+v", err)
	}
	if !head.Block.Hash().Equal(chain[len(chain)-1].Hash()) {
		t.Fatalf("head after ApplyProof does not match chain tip")
	}

	bld := fakeblockutils.NewBuilder()
	next, err := bld.Child(chain[len(chain)-1], 1000, 999000)
	if err != nil {
		t.Fatalf("Child: %+v", err)
	}

	result, err := applier.PushLightBlock(storeTx, next)
	if err != nil {
		t.Fatalf("PushLightBlock: %+v", err)
	}
	if result != externalapi.PushBlockOKExtended {
		t.Fatalf("got %s, want OK_EXTENDED", result)
	}

	headHash, ok, err := storeTx.HeadHash()
	if err != nil || !ok {
		t.Fatalf("HeadHash: ok=%v err=%+v", ok, err)
	}
	if !headHash.Equal(next.Hash()) {
		t.Fatalf("head not advanced to the newly pushed block")
	}
}

func TestPushLightBlockRejectsOrphan(t *testing.T) {
	blockUtils := fakeblockutils.New()
	chain := testfixtures.Chain(5)

	store := fakestore.New()
	storeTx, err := store.Begin()
	if err != nil {
		t.Fatalf("Begin: %+v", err)
	}

	applier := New(blockUtils)
	bld := fakeblockutils.NewBuilder()
	orphan, err := bld.Child(chain[2], 1, 1)
	if err != nil {
		t.Fatalf("Child: %+v", err)
	}

	result, err := applier.PushLightBlock(storeTx, orphan)
	if err == nil || result != externalapi.PushBlockErrOrphan {
		t.Fatalf("got (%s, %v), want (ERR_ORPHAN, non-nil)", result, err)
	}
}

func TestPushLightBlockKnownIsIdempotent(t *testing.T) {
	blockUtils := fakeblockutils.New()
	chain := testfixtures.Chain(10)
	proof := testfixtures.Proof(chain, 3)

	evaluator := proofevaluator.New(blockUtils, externalapi.Policy{M: 1, K: 3})
	_, reconstructedSuffix, err := evaluator.Verify(proof)
	if err != nil {
		t.Fatalf("Verify: %+v", err)
	}

	store := fakestore.New()
	storeTx, err := store.Begin()
	if err != nil {
		t.Fatalf("Begin: %+v", err)
	}

	applier := New(blockUtils)
	if _, err := applier.ApplyProof(storeTx, proof, reconstructedSuffix); err != nil {
		t.Fatalf("ApplyProof: %+v", err)
	}

	result, err := applier.PushLightBlock(storeTx, reconstructedSuffix[len(reconstructedSuffix)-1])
	if err != nil {
		t.Fatalf("PushLightBlock: %+v", err)
	}
	if result != externalapi.PushBlockOKKnown {
		t.Fatalf("got %s, want OK_KNOWN", result)
	}
}
