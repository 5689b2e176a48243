// Package blockview provides a minimal externalapi.Block implementation for
// blocks that only carry data, not independent hashing/interlink-building
// behavior: blocks reconstructed from a header and a re-derived interlink
// (the proof evaluator's job when checking a chain proof's dense suffix),
// and blocks decoded back out of the chain data store. A view block is only
// ever read from (hash, parent, height, difficulty, interlink, body); it is
// never asked to produce its own successor's interlink, since it was never
// built from a full, independently-hashed block by the base chain.
package blockview

import (
	"github.com/lightrelay/plcs/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

type view struct {
	header    *externalapi.DomainBlockHeader
	interlink externalapi.DomainInterlink
	body      *externalapi.DomainBlockBody
}

// New wraps header and interlink as a header-only externalapi.Block.
func New(header *externalapi.DomainBlockHeader, interlink externalapi.DomainInterlink) externalapi.Block {
	return &view{header: header, interlink: interlink}
}

// NewFull wraps header, interlink and body as a full externalapi.Block.
func NewFull(header *externalapi.DomainBlockHeader, interlink externalapi.DomainInterlink, body *externalapi.DomainBlockBody) externalapi.Block {
	return &view{header: header, interlink: interlink, body: body}
}

func (v *view) Hash() *externalapi.DomainHash          { return v.header.Hash }
func (v *view) Header() *externalapi.DomainBlockHeader { return v.header }
func (v *view) Interlink() externalapi.DomainInterlink { return v.interlink }
func (v *view) Difficulty() uint64                     { return v.header.Difficulty }
func (v *view) PrevHash() *externalapi.DomainHash       { return v.header.ParentHash }
func (v *view) Height() uint64                          { return v.header.Height }
func (v *view) NBits() uint32                           { return v.header.Bits }
func (v *view) IsFull() bool                            { return v.body != nil }
func (v *view) Body() *externalapi.DomainBlockBody      { return v.body }

// Verify is a no-op: a view block's only claim to validity is whatever was
// already checked when it was reconstructed or stored.
func (v *view) Verify() error { return nil }

func (v *view) IsImmediateSuccessorOf(other externalapi.Block) bool {
	return v.header.ParentHash.Equal(other.Hash()) && v.header.Height == other.Height()+1
}

// GetNextInterlink is not supported on a view block: the base chain's
// concrete block type is the only thing ever asked to build a successor's
// interlink from a full block's own state.
func (v *view) GetNextInterlink() (externalapi.DomainInterlink, error) {
	return nil, errors.New("GetNextInterlink is not supported on a reconstructed or stored block view")
}
