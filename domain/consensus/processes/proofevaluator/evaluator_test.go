package proofevaluator

import (
	"testing"

	"github.com/lightrelay/plcs/domain/consensus/model/externalapi"
	"github.com/lightrelay/plcs/domain/consensus/ruleerrors"
	"github.com/lightrelay/plcs/internal/fakeblockutils"
	"github.com/lightrelay/plcs/internal/testfixtures"
)

func TestVerifyAcceptsValidProof(t *testing.T) {
	chain := testfixtures.Chain(30)
	proof := testfixtures.Proof(chain, 10)

	e := New(fakeblockutils.New(), externalapi.Policy{M: 1, K: 10})
	ok, suffix, err := e.Verify(proof)
	if err != nil {
		t.Fatalf("Verify: %+v", err)
	}
	if !ok {
		t.Fatalf("expected a valid proof to verify")
	}
	if len(suffix) != 10 {
		t.Fatalf("got %d reconstructed suffix blocks, want 10", len(suffix))
	}
	if !suffix[len(suffix)-1].Hash().Equal(chain[len(chain)-1].Hash()) {
		t.Fatalf("reconstructed suffix tip does not match chain tip")
	}
}

func TestVerifyRejectsTamperedInterlink(t *testing.T) {
	chain := testfixtures.Chain(30)
	proof := testfixtures.Proof(chain, 10)

	proof.Suffix[5].InterlinkHash = proof.Suffix[4].InterlinkHash

	e := New(fakeblockutils.New(), externalapi.Policy{M: 1, K: 10})
	ok, _, err := e.Verify(proof)
	if ok || err != ruleerrors.ErrInterlinkMismatch {
		t.Fatalf("got (%v, %v), want (false, ErrInterlinkMismatch)", ok, err)
	}
}

func TestVerifyRejectsWrongSuffixLength(t *testing.T) {
	chain := testfixtures.Chain(30)
	proof := testfixtures.Proof(chain, 10)
	proof.Suffix = proof.Suffix[:5]

	e := New(fakeblockutils.New(), externalapi.Policy{M: 1, K: 10})
	ok, _, err := e.Verify(proof)
	if ok || err != ruleerrors.ErrProofSuffixLengthMismatch {
		t.Fatalf("got (%v, %v), want (false, ErrProofSuffixLengthMismatch)", ok, err)
	}
}

func TestIsBetterProofPrefersLongerSuffix(t *testing.T) {
	chain := testfixtures.Chain(40)
	shortProof := testfixtures.Proof(chain[:25], 10)
	longProof := testfixtures.Proof(chain, 10)

	e := New(fakeblockutils.New(), externalapi.Policy{M: 1, K: 10})

	better, err := e.IsBetterProof(longProof, shortProof)
	if err != nil {
		t.Fatalf("IsBetterProof: %+v", err)
	}
	if !better {
		t.Fatalf("expected the longer proof to be better")
	}
}

func TestIsBetterProofNilCurrentAlwaysLoses(t *testing.T) {
	chain := testfixtures.Chain(15)
	proof := testfixtures.Proof(chain, 5)

	e := New(fakeblockutils.New(), externalapi.Policy{M: 1, K: 5})
	better, err := e.IsBetterProof(proof, nil)
	if err != nil {
		t.Fatalf("IsBetterProof: %+v", err)
	}
	if !better {
		t.Fatalf("expected any proof to beat a nil current proof")
	}
}

