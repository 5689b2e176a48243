package externalapi

// ChainTotals records a chain entry's accumulated totals. A block on the
// dense suffix (or reconstructed from it) carries real, extendable totals;
// a block kept purely for lowest-common-ancestor lookups on the sparse
// prefix carries a lookup-only sentinel instead, since its true totals were
// never computed and must never be extended from.
//
// This replaces the source design's encoding of "lookup-only" as
// totalDifficulty == -1 with a proper tagged variant, so callers can't
// accidentally do arithmetic on a sentinel.
type ChainTotals struct {
	extendable      bool
	totalDifficulty uint64
	totalWork       uint64
}

// NewExtendableTotals returns totals that may be extended by further blocks.
func NewExtendableTotals(totalDifficulty, totalWork uint64) ChainTotals {
	return ChainTotals{extendable: true, totalDifficulty: totalDifficulty, totalWork: totalWork}
}

// NewLookupOnlyTotals returns a sentinel standing in for a prefix block whose
// totals were never computed and may only be used for ancestor lookups.
func NewLookupOnlyTotals() ChainTotals {
	return ChainTotals{extendable: false}
}

// IsExtendable reports whether this entry's totals are real and may be
// extended by appending further blocks.
func (t ChainTotals) IsExtendable() bool {
	return t.extendable
}

// TotalDifficulty returns the accumulated difficulty and true, or (0, false)
// if this entry is lookup-only.
func (t ChainTotals) TotalDifficulty() (uint64, bool) {
	if !t.extendable {
		return 0, false
	}
	return t.totalDifficulty, true
}

// TotalWork returns the accumulated real work and true, or (0, false) if
// this entry is lookup-only.
func (t ChainTotals) TotalWork() (uint64, bool) {
	if !t.extendable {
		return 0, false
	}
	return t.totalWork, true
}

// ChainData is what the store keeps per known block: the block itself, its
// running totals (or the lookup-only sentinel), and whether it currently
// sits on the main chain.
type ChainData struct {
	Block       Block
	Totals      ChainTotals
	OnMainChain bool
}

// Block is the contract PLCS relies on for every chain entry it handles,
// whether supplied whole by a peer or reconstructed from a header. Building
// and deep-verifying a block's content (body, interlink construction,
// difficulty retargeting) is the base chain's job; PLCS only ever reads
// these accessors and calls Verify/IsImmediateSuccessorOf/GetNextInterlink
// as black boxes.
type Block interface {
	Hash() *DomainHash
	Header() *DomainBlockHeader
	Interlink() DomainInterlink
	Difficulty() uint64
	PrevHash() *DomainHash
	Height() uint64
	NBits() uint32
	IsFull() bool
	Body() *DomainBlockBody
	Verify() error
	IsImmediateSuccessorOf(other Block) bool
	GetNextInterlink() (DomainInterlink, error)
}
