package fakeblockutils

import (
	"github.com/lightrelay/plcs/domain/consensus/model/externalapi"
	"github.com/lightrelay/plcs/domain/consensus/utils/interlink"
	"github.com/pkg/errors"
)

// Block is a concrete, independently-hashed externalapi.Block: unlike
// blockview's reconstructed views, a Block was built bottom-up from its
// parent and genuinely knows how to produce its own successor's interlink.
type Block struct {
	header    *externalapi.DomainBlockHeader
	interlink externalapi.DomainInterlink
	body      *externalapi.DomainBlockBody
}

func (b *Block) Hash() *externalapi.DomainHash          { return b.header.Hash }
func (b *Block) Header() *externalapi.DomainBlockHeader { return b.header }
func (b *Block) Interlink() externalapi.DomainInterlink { return b.interlink }
func (b *Block) Difficulty() uint64                     { return b.header.Difficulty }
func (b *Block) PrevHash() *externalapi.DomainHash       { return b.header.ParentHash }
func (b *Block) Height() uint64                          { return b.header.Height }
func (b *Block) NBits() uint32                           { return b.header.Bits }
func (b *Block) IsFull() bool                            { return b.body != nil }
func (b *Block) Body() *externalapi.DomainBlockBody      { return b.body }

// Verify recomputes hash and interlink hash from this block's own fields
// and checks them against what the header declares.
func (b *Block) Verify() error {
	wantHash := computeHash(b.header, b.interlink)
	if !wantHash.Equal(b.header.Hash) {
		return errors.Errorf("block hash mismatch: header declares %s, computed %s", b.header.Hash, wantHash)
	}
	if len(b.interlink) > 0 || b.header.InterlinkHash != nil {
		wantInterlinkHash := hashInterlink(b.interlink)
		if !wantInterlinkHash.Equal(b.header.InterlinkHash) {
			return errors.Errorf("interlink hash mismatch: header declares %s, computed %s", b.header.InterlinkHash, wantInterlinkHash)
		}
	}
	return nil
}

func (b *Block) IsImmediateSuccessorOf(other externalapi.Block) bool {
	return b.header.ParentHash.Equal(other.Hash()) && b.header.Height == other.Height()+1
}

// GetNextInterlink builds the interlink a block extending b must declare.
func (b *Block) GetNextInterlink() (externalapi.DomainInterlink, error) {
	return interlink.Next(New(), b.header.Hash, b.interlink), nil
}
