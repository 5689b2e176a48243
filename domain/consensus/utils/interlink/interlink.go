// Package interlink computes the interlink a block extending a given
// predecessor must declare. It is pure function of a BlockUtils collaborator
// (which alone knows proof-of-work depth) and the predecessor's own hash
// and interlink, so it works identically whether the predecessor is a real,
// independently-hashed block or a header-only view reconstructed by the
// proof evaluator.
package interlink

import (
	"github.com/lightrelay/plcs/domain/consensus/model"
	"github.com/lightrelay/plcs/domain/consensus/model/externalapi"
)

// Next returns the interlink a block extending a predecessor with hash
// prevHash and interlink prevInterlink must declare: prevHash replaces
// every level up to and including its own target depth, and every level
// above that carries over unchanged.
func Next(blockUtils model.BlockUtils, prevHash *externalapi.DomainHash, prevInterlink externalapi.DomainInterlink) externalapi.DomainInterlink {
	depth := blockUtils.TargetDepth(prevHash)

	next := make(externalapi.DomainInterlink, depth+1)
	for i := 0; i <= depth; i++ {
		next[i] = prevHash
	}
	for i := depth + 1; i < len(prevInterlink); i++ {
		next = append(next, prevInterlink[i])
	}
	return next
}
