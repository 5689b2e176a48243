package proofevaluator

import (
	"github.com/lightrelay/plcs/domain/consensus/model/externalapi"
)

// IsBetterProof reports whether newProof should replace currentProof. It
// first finds the highest block height both proofs agree on (their lowest
// common ancestor on the superchain), then rescores each proof using only
// its prefix blocks at or above that point. On equal scores the new proof
// wins when its suffix difficulty is at least the current proof's.
func (e *Evaluator) IsBetterProof(newProof, currentProof *externalapi.ChainProof) (bool, error) {
	if currentProof == nil {
		return true, nil
	}

	lcaHeight := lowestCommonAncestorHeight(newProof, currentProof)

	newScore := e.score(newProof, lcaHeight)
	currentScore := e.score(currentProof, lcaHeight)
	if newScore != currentScore {
		return newScore > currentScore, nil
	}
	return newProof.SuffixTotalDifficulty() >= currentProof.SuffixTotalDifficulty(), nil
}

// score computes the NiPoPoW "best level" score of the prefix blocks at or
// above minHeight. It walks proof-of-work depths from the deepest one
// present downward, keeping a running count of those blocks with depth >= d,
// and stops at the first depth d where that count reaches the policy's M,
// returning 2^d times the count. If the count never reaches M, the score
// falls back to a plain count of those prefix blocks. The
// dense suffix is never sampled by the sparse interlink structure the way
// prefix blocks are, so it's excluded: mixing it in would skew the depth
// histogram with blocks that were never selected for it.
func (e *Evaluator) score(proof *externalapi.ChainProof, minHeight uint64) uint64 {
	counts := make(map[int]int)
	maxDepth := 0
	total := 0

	for _, block := range proof.Prefix {
		if block.Height() < minHeight {
			continue
		}
		depth := e.blockUtils.TargetDepth(block.Hash())
		counts[depth]++
		total++
		if depth > maxDepth {
			maxDepth = depth
		}
	}

	sum := 0
	for d := maxDepth; d >= 0; d-- {
		sum += counts[d]
		if sum >= e.policy.M {
			return uint64(sum) << uint(d)
		}
	}
	return uint64(total)
}

// lowestCommonAncestorHeight returns the height of the highest prefix block
// that appears, by hash, in both proofs' prefixes. 0 (genesis) if nothing
// else matches.
func lowestCommonAncestorHeight(a, b *externalapi.ChainProof) uint64 {
	seen := make(map[externalapi.DomainHash]uint64)
	walk(b, func(hash *externalapi.DomainHash, height uint64) {
		seen[*hash] = height
	})

	var lca uint64
	walk(a, func(hash *externalapi.DomainHash, height uint64) {
		if otherHeight, ok := seen[*hash]; ok && otherHeight == height && height > lca {
			lca = height
		}
	})
	return lca
}

func walk(proof *externalapi.ChainProof, fn func(hash *externalapi.DomainHash, height uint64)) {
	for _, block := range proof.Prefix {
		fn(block.Hash(), block.Height())
	}
}
