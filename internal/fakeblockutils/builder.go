package fakeblockutils

import "github.com/lightrelay/plcs/domain/consensus/model/externalapi"

// Builder constructs a valid, self-consistent chain of Blocks, one call per
// block, so tests can build proofs and suffixes without hand-computing
// hashes and interlinks themselves.
type Builder struct {
	utils *Utils
}

// NewBuilder returns a new Builder.
func NewBuilder() *Builder {
	return &Builder{utils: New()}
}

// Genesis returns height-0 block with no parent and an empty interlink.
func (bld *Builder) Genesis(bits uint32, difficulty uint64) *Block {
	header := &externalapi.DomainBlockHeader{
		ParentHash:    nil,
		InterlinkHash: hashInterlink(nil),
		Height:        0,
		Bits:          bits,
		Difficulty:    difficulty,
	}
	block := &Block{header: header, interlink: nil}
	header.Hash = computeHash(header, nil)
	return block
}

// Child builds the block extending prev with the given nonce and
// timestamp, computing its interlink and hash from prev's own state.
func (bld *Builder) Child(prev *Block, nonce uint64, timeInMilliseconds int64) (*Block, error) {
	interlink, err := prev.GetNextInterlink()
	if err != nil {
		return nil, err
	}
	bits, _, err := bld.utils.NextRequiredBits(prev)
	if err != nil {
		return nil, err
	}

	header := &externalapi.DomainBlockHeader{
		ParentHash:          prev.Hash(),
		InterlinkHash:       hashInterlink(interlink),
		Height:              prev.Height() + 1,
		Bits:                bits,
		Difficulty:          prev.Difficulty(),
		TimeInMilliseconds:  timeInMilliseconds,
		Nonce:               nonce,
	}
	header.Hash = computeHash(header, interlink)

	return &Block{header: header, interlink: interlink}, nil
}

// ChildWithBody is Child, additionally attaching body to the result, so
// callers can exercise the full (reverse block applier) path.
func (bld *Builder) ChildWithBody(prev *Block, nonce uint64, timeInMilliseconds int64, body *externalapi.DomainBlockBody) (*Block, error) {
	child, err := bld.Child(prev, nonce, timeInMilliseconds)
	if err != nil {
		return nil, err
	}
	child.body = body
	return child, nil
}
