package fakeblockutils

import (
	"math/bits"

	"github.com/lightrelay/plcs/domain/consensus/model/externalapi"
)

// maxDepth caps TargetDepth/RealDifficulty so 1<<depth never overflows a
// uint64 and so a proof's depth histogram stays a sane size regardless of
// how lucky a hash gets.
const maxDepth = 60

// Utils is a reference model.BlockUtils: proof-of-work depth is simply the
// number of leading zero bits in a block's hash, difficulty retargeting is
// a constant-difficulty policy (every block must declare its parent's
// bits), and interlink hashing reuses the same hash function as blocks
// themselves.
type Utils struct{}

// New returns a new Utils.
func New() *Utils {
	return &Utils{}
}

// TargetDepth returns the number of leading zero bits in hash, capped at
// maxDepth.
func (u *Utils) TargetDepth(hash *externalapi.DomainHash) int {
	depth := 0
	for _, b := range hash.ByteSlice() {
		if b == 0 {
			depth += 8
			continue
		}
		depth += bits.LeadingZeros8(b)
		break
	}
	if depth > maxDepth {
		depth = maxDepth
	}
	return depth
}

// RealDifficulty returns 1 << TargetDepth(hash), the work a hash of this
// depth represents.
func (u *Utils) RealDifficulty(hash *externalapi.DomainHash) uint64 {
	return uint64(1) << uint(u.TargetDepth(hash))
}

// NextRequiredBits implements a constant-difficulty reference policy: every
// block must declare exactly its parent's bits. A nil prev (a block with no
// known predecessor yet) can't be checked, so ok is false.
func (u *Utils) NextRequiredBits(prev externalapi.Block) (bits uint32, ok bool, err error) {
	if prev == nil {
		return 0, false, nil
	}
	return prev.NBits(), true, nil
}

// HashInterlink hashes link the same way a block built on top of it would
// be expected to declare in its InterlinkHash field.
func (u *Utils) HashInterlink(link externalapi.DomainInterlink) *externalapi.DomainHash {
	return hashInterlink(link)
}
