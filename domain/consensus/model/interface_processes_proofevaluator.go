package model

import (
	"github.com/lightrelay/plcs/domain/consensus/model/externalapi"
)

// ProofEvaluator checks a peer-supplied chain proof for internal consistency
// and scores it against whatever proof the synchronizer currently holds.
type ProofEvaluator interface {
	// Verify checks proof's internal consistency: suffix length, prefix
	// self-verification, and suffix reconstruction against the
	// predecessor's interlink. On success it returns the reconstructed
	// suffix blocks (header+interlink, no body).
	Verify(proof *externalapi.ChainProof) (ok bool, reconstructedSuffix []externalapi.Block, err error)

	// IsBetterProof reports whether newProof should replace currentProof.
	// currentProof may be nil, in which case newProof always wins.
	IsBetterProof(newProof, currentProof *externalapi.ChainProof) (bool, error)
}
