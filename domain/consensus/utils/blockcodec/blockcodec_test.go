package blockcodec

import (
	"testing"

	"github.com/lightrelay/plcs/domain/consensus/model/externalapi"
	"github.com/lightrelay/plcs/domain/consensus/utils/blockview"
)

func hashFromByte(b byte) *externalapi.DomainHash {
	var arr [externalapi.DomainHashSize]byte
	arr[0] = b
	return externalapi.NewDomainHashFromByteArray(&arr)
}

func TestEncodeDecodeHeaderOnly(t *testing.T) {
	header := &externalapi.DomainBlockHeader{
		Hash:                hashFromByte(1),
		ParentHash:          hashFromByte(2),
		InterlinkHash:       hashFromByte(3),
		Height:              7,
		Bits:                0x1d00ffff,
		Difficulty:          1234,
		TimeInMilliseconds:  555,
		Nonce:               99,
	}
	interlink := externalapi.DomainInterlink{hashFromByte(4), hashFromByte(5)}
	block := blockview.New(header, interlink)

	c := New()
	encoded, err := c.EncodeBlock(block)
	if err != nil {
		t.Fatalf("EncodeBlock: %+v", err)
	}

	decoded, err := c.DecodeBlock(encoded)
	if err != nil {
		t.Fatalf("DecodeBlock: %+v", err)
	}

	if !decoded.Hash().Equal(header.Hash) {
		t.Fatalf("hash mismatch: got %s, want %s", decoded.Hash(), header.Hash)
	}
	if decoded.IsFull() {
		t.Fatalf("expected decoded block to be header-only")
	}
	if decoded.Height() != header.Height {
		t.Fatalf("height mismatch: got %d, want %d", decoded.Height(), header.Height)
	}
	if !decoded.Interlink().Equal(interlink) {
		t.Fatalf("interlink mismatch")
	}
}

func TestEncodeDecodeFull(t *testing.T) {
	header := &externalapi.DomainBlockHeader{
		Hash:       hashFromByte(10),
		ParentHash: hashFromByte(11),
		Height:     3,
	}
	body := &externalapi.DomainBlockBody{
		AccountsRoot: hashFromByte(12),
		Payload:      []byte("some payload bytes"),
	}
	block := blockview.NewFull(header, nil, body)

	c := New()
	encoded, err := c.EncodeBlock(block)
	if err != nil {
		t.Fatalf("EncodeBlock: %+v", err)
	}

	decoded, err := c.DecodeBlock(encoded)
	if err != nil {
		t.Fatalf("DecodeBlock: %+v", err)
	}

	if !decoded.IsFull() {
		t.Fatalf("expected decoded block to be full")
	}
	if string(decoded.Body().Payload) != string(body.Payload) {
		t.Fatalf("payload mismatch: got %q, want %q", decoded.Body().Payload, body.Payload)
	}
	if !decoded.Body().AccountsRoot.Equal(body.AccountsRoot) {
		t.Fatalf("accounts root mismatch")
	}
}
