package externalapi

// DomainInterlink is a block's back-pointer structure: one entry per proof
// level, pointing at the most recent ancestor that qualified for that level.
// What "qualifying" means (target depth of a block's hash) is a base-chain
// concern; this package only ever compares, hashes and clones interlinks.
type DomainInterlink []*DomainHash

// Clone returns a shallow clone of the interlink.
func (link DomainInterlink) Clone() DomainInterlink {
	return DomainInterlink(CloneHashes(link))
}

// Equal returns whether link equals other, element-wise.
func (link DomainInterlink) Equal(other DomainInterlink) bool {
	return HashesEqual(link, other)
}

// DomainBlockHeader is the header-only projection of a block: enough to
// place it in the chain and to reconstruct/verify its interlink, without
// carrying a body.
type DomainBlockHeader struct {
	// Hash is this header's own hash, as computed upstream by the base
	// chain's hash function (out of scope for this package).
	Hash *DomainHash
	// ParentHash is the immediate predecessor on the chain this header
	// claims to extend.
	ParentHash *DomainHash
	// InterlinkHash is the declared hash of this block's interlink, to be
	// checked against an interlink reconstructed from the predecessor.
	InterlinkHash *DomainHash
	Height        uint64
	Bits          uint32
	// Difficulty is this block's own proof-of-work contribution, as
	// attached by the base chain when the header was parsed. Difficulty
	// retargeting itself is out of scope here.
	Difficulty         uint64
	TimeInMilliseconds int64
	Nonce              uint64
}

// Clone returns a clone of header.
func (header *DomainBlockHeader) Clone() *DomainBlockHeader {
	if header == nil {
		return nil
	}
	return &DomainBlockHeader{
		Hash:               header.Hash,
		ParentHash:         header.ParentHash,
		InterlinkHash:      header.InterlinkHash,
		Height:             header.Height,
		Bits:               header.Bits,
		Difficulty:         header.Difficulty,
		TimeInMilliseconds: header.TimeInMilliseconds,
		Nonce:              header.Nonce,
	}
}

// If this doesn't compile, it means the type definition has been changed, so
// it's an indication to update Equal and Clone accordingly.
var _ = &DomainBlockHeader{nil, nil, nil, 0, 0, 0, 0, 0}

// Equal returns whether header equals other.
func (header *DomainBlockHeader) Equal(other *DomainBlockHeader) bool {
	if header == nil || other == nil {
		return header == other
	}

	if !header.Hash.Equal(other.Hash) {
		return false
	}
	if !header.ParentHash.Equal(other.ParentHash) {
		return false
	}
	if !header.InterlinkHash.Equal(other.InterlinkHash) {
		return false
	}
	if header.Height != other.Height {
		return false
	}
	if header.Bits != other.Bits {
		return false
	}
	if header.Difficulty != other.Difficulty {
		return false
	}
	if header.TimeInMilliseconds != other.TimeInMilliseconds {
		return false
	}
	if header.Nonce != other.Nonce {
		return false
	}
	return true
}

// DomainBlockBody carries whatever a full block needs beyond its header for
// account-state application. The accounts-tree content itself (Merkle
// structure, per-account entries) lives behind the Accounts collaborator;
// here we only keep what the reverse block applier needs to identify and
// revert a block's effects.
type DomainBlockBody struct {
	AccountsRoot *DomainHash
	Payload      []byte
}

// Clone returns a clone of body.
func (body *DomainBlockBody) Clone() *DomainBlockBody {
	if body == nil {
		return nil
	}
	payloadClone := make([]byte, len(body.Payload))
	copy(payloadClone, body.Payload)
	return &DomainBlockBody{
		AccountsRoot: body.AccountsRoot,
		Payload:      payloadClone,
	}
}
