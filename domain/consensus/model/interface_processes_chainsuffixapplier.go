package model

import (
	"github.com/lightrelay/plcs/domain/consensus/model/externalapi"
)

// ChainSuffixApplier adopts a verified chain proof into the store: it
// truncates whatever the attempt had accumulated so far, seeds the prefix
// head as the extendable anchor entry, records the rest of the sparse
// prefix as lookup-only, and extends the chain forward with the
// reconstructed dense suffix.
type ChainSuffixApplier interface {
	// ApplyProof adopts proof into storeTx and returns the resulting
	// main-chain head's chain data.
	ApplyProof(storeTx StoreTx, proof *externalapi.ChainProof, reconstructedSuffix []externalapi.Block) (*externalapi.ChainData, error)

	// PushLightBlock pushes a single header-only (or full) block along
	// the normal forward path: extend, rebranch, fork, or reject as
	// orphan/known.
	PushLightBlock(storeTx StoreTx, block externalapi.Block) (externalapi.PushBlockResult, error)
}
