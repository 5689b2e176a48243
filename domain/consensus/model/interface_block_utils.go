package model

import (
	"github.com/lightrelay/plcs/domain/consensus/model/externalapi"
)

// BlockUtils is the other opaque external collaborator: hashing, proof-of-
// work depth, difficulty retargeting and interlink hashing are all the base
// chain's concern. PLCS depends only on this narrow contract.
type BlockUtils interface {
	// TargetDepth returns how many proof levels hash's proof of work
	// qualifies for: level 0 always qualifies, level d requires
	// proportionally more work. Used by the proof evaluator's scoring
	// histogram.
	TargetDepth(hash *externalapi.DomainHash) int

	// RealDifficulty returns the actual work a block with this hash
	// represents, used for total-work accounting (as opposed to the
	// header's declared, retargeted Difficulty field).
	RealDifficulty(hash *externalapi.DomainHash) uint64

	// NextRequiredBits returns the difficulty bits a block extending prev
	// must declare. ok is false if there isn't enough retarget history
	// yet to say, in which case the caller skips the check.
	NextRequiredBits(prev externalapi.Block) (bits uint32, ok bool, err error)

	// HashInterlink returns the hash a block declares as its
	// InterlinkHash when its interlink is exactly link.
	HashInterlink(link externalapi.DomainInterlink) *externalapi.DomainHash
}
