package fakeaccounts

import (
	"hash"
	"testing"

	"github.com/lightrelay/plcs/domain/consensus/model/externalapi"
	"golang.org/x/crypto/blake2b"
)

func chunk(final bool, index uint32, payload []byte) []byte {
	buf := make([]byte, 5+len(payload))
	if final {
		buf[0] = 1
	}
	buf[1] = byte(index >> 24)
	buf[2] = byte(index >> 16)
	buf[3] = byte(index >> 8)
	buf[4] = byte(index)
	copy(buf[5:], payload)
	return buf
}

func rootFor(payloads ...[]byte) *externalapi.DomainHash {
	var h hash.Hash
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	for _, p := range payloads {
		h.Write(p)
	}
	var arr [externalapi.DomainHashSize]byte
	copy(arr[:], h.Sum(nil))
	return externalapi.NewDomainHashFromByteArray(&arr)
}

func TestPartialAccountsTreeHappyPath(t *testing.T) {
	accounts := New()
	root := rootFor([]byte("one"), []byte("two"))
	tree, err := accounts.NewPartialTree(root)
	if err != nil {
		t.Fatalf("NewPartialTree: %+v", err)
	}

	result, err := tree.PushChunk(chunk(false, 0, []byte("one")))
	if err != nil {
		t.Fatalf("PushChunk(0): %+v", err)
	}
	if result != externalapi.ChunkOKUnfinished {
		t.Fatalf("got %s, want OK_UNFINISHED", result)
	}
	if tree.MissingPrefix() != "1" {
		t.Fatalf("got missing prefix %q, want %q", tree.MissingPrefix(), "1")
	}

	result, err = tree.PushChunk(chunk(true, 1, []byte("two")))
	if err != nil {
		t.Fatalf("PushChunk(1): %+v", err)
	}
	if result != externalapi.ChunkOKComplete {
		t.Fatalf("got %s, want OK_COMPLETE", result)
	}

	if err := tree.Commit(); err != nil {
		t.Fatalf("Commit: %+v", err)
	}
	if !accounts.StateRoot().Equal(root) {
		t.Fatalf("state root not installed after commit")
	}
}

func TestPartialAccountsTreeRejectsOutOfOrder(t *testing.T) {
	accounts := New()
	tree, err := accounts.NewPartialTree(rootFor([]byte("x")))
	if err != nil {
		t.Fatalf("NewPartialTree: %+v", err)
	}

	result, err := tree.PushChunk(chunk(false, 1, []byte("x")))
	if err == nil {
		t.Fatalf("expected an error for an out-of-order chunk")
	}
	if result != externalapi.ChunkErrIncorrectProof {
		t.Fatalf("got %s, want ERR_INCORRECT_PROOF", result)
	}
}

func TestPartialAccountsTreeRejectsBadRoot(t *testing.T) {
	accounts := New()
	tree, err := accounts.NewPartialTree(rootFor([]byte("expected")))
	if err != nil {
		t.Fatalf("NewPartialTree: %+v", err)
	}

	result, err := tree.PushChunk(chunk(true, 0, []byte("actual")))
	if err == nil {
		t.Fatalf("expected a root mismatch error")
	}
	if result != externalapi.ChunkErrIncorrectProof {
		t.Fatalf("got %s, want ERR_INCORRECT_PROOF", result)
	}
}
