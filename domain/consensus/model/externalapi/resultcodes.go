package externalapi

// PushBlockResult is the outcome of pushing a single block, whether along
// the forward (light-block / post-sync) path or the reverse path.
type PushBlockResult int

const (
	// PushBlockOKKnown means the block was already known; no state changed.
	PushBlockOKKnown PushBlockResult = iota
	// PushBlockOKExtended means the block extended the current main chain
	// head (forward), or extended the verified window (backward).
	PushBlockOKExtended
	// PushBlockOKRebranched means the block caused the main chain to
	// switch to a different branch.
	PushBlockOKRebranched
	// PushBlockOKForked means the block was accepted onto a side branch
	// without affecting the main chain.
	PushBlockOKForked
	// PushBlockErrOrphan means the block's parent is unknown or is a
	// lookup-only entry; it cannot be placed yet.
	PushBlockErrOrphan
	// PushBlockErrInvalid means the block failed one of its validation
	// checks and was rejected.
	PushBlockErrInvalid
)

// String renders the result for log lines.
func (r PushBlockResult) String() string {
	switch r {
	case PushBlockOKKnown:
		return "OK_KNOWN"
	case PushBlockOKExtended:
		return "OK_EXTENDED"
	case PushBlockOKRebranched:
		return "OK_REBRANCHED"
	case PushBlockOKForked:
		return "OK_FORKED"
	case PushBlockErrOrphan:
		return "ERR_ORPHAN"
	case PushBlockErrInvalid:
		return "ERR_INVALID"
	default:
		return "UNKNOWN"
	}
}

// ChunkResult is the outcome of pushing one accounts-tree snapshot chunk.
type ChunkResult int

const (
	// ChunkOKUnfinished means the chunk was accepted but the tree isn't
	// complete yet.
	ChunkOKUnfinished ChunkResult = iota
	// ChunkOKComplete means this chunk completed the accounts tree.
	ChunkOKComplete
	// ChunkErrIncorrectProof means the chunk didn't extend the tree's
	// expected missing prefix, or otherwise failed to verify.
	ChunkErrIncorrectProof
)

// String renders the result for log lines.
func (r ChunkResult) String() string {
	switch r {
	case ChunkOKUnfinished:
		return "OK_UNFINISHED"
	case ChunkOKComplete:
		return "OK_COMPLETE"
	case ChunkErrIncorrectProof:
		return "ERR_INCORRECT_PROOF"
	default:
		return "UNKNOWN"
	}
}
