// Package testfixtures builds small, deterministic synthetic chains and
// chain proofs for the process packages' tests, so each test doesn't have
// to hand-roll valid headers and interlinks itself.
package testfixtures

import (
	"github.com/lightrelay/plcs/domain/consensus/model/externalapi"
	"github.com/lightrelay/plcs/internal/fakeaccounts"
	"github.com/lightrelay/plcs/internal/fakeblockutils"
)

// Chain builds a length-n chain starting from a fresh genesis (height 0
// through height n-1), all sharing one constant-difficulty policy.
func Chain(n int) []*fakeblockutils.Block {
	bld := fakeblockutils.NewBuilder()
	blocks := make([]*fakeblockutils.Block, n)
	blocks[0] = bld.Genesis(0x1effffff, 1)
	for i := 1; i < n; i++ {
		child, err := bld.Child(blocks[i-1], uint64(i), int64(i)*1000)
		if err != nil {
			panic(err)
		}
		blocks[i] = child
	}
	return blocks
}

// ChainWithBodies is Chain, additionally attaching a deterministic body to
// every block past genesis, so the chain can also be walked by the reverse
// block applier. Each body declares the accounts root as of immediately
// before that block, chained forward with fakeaccounts.DeriveAccountsRoot
// so a real reverse walk can check each one against the last.
func ChainWithBodies(n int) []*fakeblockutils.Block {
	bld := fakeblockutils.NewBuilder()
	blocks := make([]*fakeblockutils.Block, n)
	blocks[0] = bld.Genesis(0x1effffff, 1)
	var root *externalapi.DomainHash
	for i := 1; i < n; i++ {
		body := &externalapi.DomainBlockBody{AccountsRoot: root}
		child, err := bld.ChildWithBody(blocks[i-1], uint64(i), int64(i)*1000, body)
		if err != nil {
			panic(err)
		}
		blocks[i] = child
		root = fakeaccounts.DeriveAccountsRoot(root, child.Hash())
	}
	return blocks
}

// APIBlocks widens a []*fakeblockutils.Block into []externalapi.Block.
func APIBlocks(blocks []*fakeblockutils.Block) []externalapi.Block {
	out := make([]externalapi.Block, len(blocks))
	for i, b := range blocks {
		out[i] = b
	}
	return out
}

// Headers extracts every block's header, in order.
func Headers(blocks []*fakeblockutils.Block) []*externalapi.DomainBlockHeader {
	out := make([]*externalapi.DomainBlockHeader, len(blocks))
	for i, b := range blocks {
		out[i] = b.Header()
	}
	return out
}

// Proof builds a ChainProof out of chain: every block up to and including
// height len(chain)-1-suffixLen goes into a sparse prefix sampled by
// doubling steps (so it's short but still internally self-consistent), and
// copies of the last suffixLen blocks' headers become the dense suffix, so
// tampering with a proof's suffix leaves chain itself untouched.
func Proof(chain []*fakeblockutils.Block, suffixLen int) *externalapi.ChainProof {
	if suffixLen > len(chain) {
		suffixLen = len(chain)
	}
	prefixEnd := len(chain) - suffixLen

	var prefix []externalapi.Block
	if prefixEnd > 0 {
		step := 1
		for i := 0; i < prefixEnd; i += step {
			prefix = append(prefix, chain[i])
			if step < prefixEnd/4+1 {
				step *= 2
			}
		}
		if prefix[len(prefix)-1].Height() != chain[prefixEnd-1].Height() {
			prefix = append(prefix, chain[prefixEnd-1])
		}
	}

	suffix := make([]*externalapi.DomainBlockHeader, 0, suffixLen)
	for i := prefixEnd; i < len(chain); i++ {
		suffix = append(suffix, chain[i].Header().Clone())
	}

	return &externalapi.ChainProof{Prefix: prefix, Suffix: suffix}
}
