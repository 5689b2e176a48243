package model

import "github.com/lightrelay/plcs/domain/consensus/model/externalapi"

// BlockCodec serializes and deserializes whatever concrete externalapi.Block
// implementation the embedding application uses, so the chain data store can
// persist blocks without knowing their concrete type.
type BlockCodec interface {
	EncodeBlock(block externalapi.Block) ([]byte, error)
	DecodeBlock(data []byte) (externalapi.Block, error)
}
