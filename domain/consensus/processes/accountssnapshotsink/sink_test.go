package accountssnapshotsink

import (
	"hash"
	"testing"

	"github.com/lightrelay/plcs/domain/consensus/model/externalapi"
	"github.com/lightrelay/plcs/internal/fakeaccounts"
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

func TestSinkPushChunkAndFinalize(t *testing.T) {
	accounts := fakeaccounts.New()
	root := rootFor([]byte("a"), []byte("b"))
	tree, err := accounts.NewPartialTree(root)
	if err != nil {
		t.Fatalf("NewPartialTree: %+v", err)
	}

	sink := New()

	result, err := sink.PushChunk(tree, chunk(false, 0, []byte("a")))
	if err != nil {
		t.Fatalf("PushChunk(0): %+v", err)
	}
	if result != externalapi.ChunkOKUnfinished {
		t.Fatalf("got %s, want OK_UNFINISHED", result)
	}

	result, err = sink.PushChunk(tree, chunk(true, 1, []byte("b")))
	if err != nil {
		t.Fatalf("PushChunk(1): %+v", err)
	}
	if result != externalapi.ChunkOKComplete {
		t.Fatalf("got %s, want OK_COMPLETE", result)
	}

	accountsTx, err := sink.FinalizeSnapshot(tree, accounts)
	if err != nil {
		t.Fatalf("FinalizeSnapshot: %+v", err)
	}
	if accountsTx == nil {
		t.Fatalf("expected a non-nil accounts transaction")
	}
	if !accounts.StateRoot().Equal(root) {
		t.Fatalf("expected the accounts system's live state root to be installed")
	}
}
