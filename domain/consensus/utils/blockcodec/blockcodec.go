// Package blockcodec implements model.BlockCodec generically over the
// externalapi.Block interface's own accessors, rather than over one
// concrete struct: it can round-trip a header-only block reconstructed by
// the proof evaluator exactly as well as a full, peer-supplied one, since
// both are read and rebuilt purely through Header()/Interlink()/Body().
package blockcodec

import (
	"encoding/binary"

	"github.com/lightrelay/plcs/domain/consensus/model/externalapi"
	"github.com/lightrelay/plcs/domain/consensus/utils/blockview"
	"github.com/pkg/errors"
)

// Codec is a model.BlockCodec that serializes any externalapi.Block
// implementation via its interface accessors, and decodes back into a
// blockview block.
type Codec struct{}

// New returns a new Codec.
func New() *Codec {
	return &Codec{}
}

// EncodeBlock lays out: header fields, interlink (count-prefixed hash
// list), then an optional body (presence flag, account root, length-
// prefixed payload).
func (c *Codec) EncodeBlock(block externalapi.Block) ([]byte, error) {
	if block == nil {
		return nil, errors.New("cannot encode a nil block")
	}
	header := block.Header()
	if header == nil {
		return nil, errors.New("cannot encode a block with a nil header")
	}

	buf := make([]byte, 0, 256)
	buf = appendHash(buf, header.Hash)
	buf = appendHash(buf, header.ParentHash)
	buf = appendHash(buf, header.InterlinkHash)
	buf = appendUint64(buf, header.Height)
	buf = appendUint32(buf, header.Bits)
	buf = appendUint64(buf, header.Difficulty)
	buf = appendInt64(buf, header.TimeInMilliseconds)
	buf = appendUint64(buf, header.Nonce)

	interlink := block.Interlink()
	buf = appendUint32(buf, uint32(len(interlink)))
	for _, hash := range interlink {
		buf = appendHash(buf, hash)
	}

	body := block.Body()
	if body == nil {
		buf = append(buf, 0)
		return buf, nil
	}
	buf = append(buf, 1)
	buf = appendHash(buf, body.AccountsRoot)
	buf = appendUint32(buf, uint32(len(body.Payload)))
	buf = append(buf, body.Payload...)
	return buf, nil
}

// DecodeBlock reverses EncodeBlock, reconstructing a blockview block.
func (c *Codec) DecodeBlock(data []byte) (externalapi.Block, error) {
	r := &reader{buf: data}

	header := &externalapi.DomainBlockHeader{}
	var err error
	if header.Hash, err = r.readHash(); err != nil {
		return nil, err
	}
	if header.ParentHash, err = r.readHash(); err != nil {
		return nil, err
	}
	if header.InterlinkHash, err = r.readHash(); err != nil {
		return nil, err
	}
	if header.Height, err = r.readUint64(); err != nil {
		return nil, err
	}
	if header.Bits, err = r.readUint32(); err != nil {
		return nil, err
	}
	if header.Difficulty, err = r.readUint64(); err != nil {
		return nil, err
	}
	if header.TimeInMilliseconds, err = r.readInt64(); err != nil {
		return nil, err
	}
	if header.Nonce, err = r.readUint64(); err != nil {
		return nil, err
	}

	interlinkLen, err := r.readUint32()
	if err != nil {
		return nil, err
	}
	interlink := make(externalapi.DomainInterlink, interlinkLen)
	for i := range interlink {
		if interlink[i], err = r.readHash(); err != nil {
			return nil, err
		}
	}

	hasBody, err := r.readByte()
	if err != nil {
		return nil, err
	}
	if hasBody == 0 {
		return blockview.New(header, interlink), nil
	}

	body := &externalapi.DomainBlockBody{}
	if body.AccountsRoot, err = r.readHash(); err != nil {
		return nil, err
	}
	payloadLen, err := r.readUint32()
	if err != nil {
		return nil, err
	}
	if body.Payload, err = r.readBytes(int(payloadLen)); err != nil {
		return nil, err
	}

	return blockview.NewFull(header, interlink, body), nil
}

func appendHash(buf []byte, hash *externalapi.DomainHash) []byte {
	if hash == nil {
		return append(buf, 0)
	}
	buf = append(buf, 1)
	return append(buf, hash.ByteSlice()...)
}

func appendUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendUint64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendInt64(buf []byte, v int64) []byte {
	return appendUint64(buf, uint64(v))
}

type reader struct {
	buf []byte
	pos int
}

func (r *reader) readByte() (byte, error) {
	if r.pos+1 > len(r.buf) {
		return 0, errors.New("unexpected end of block data")
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) readBytes(n int) ([]byte, error) {
	if r.pos+n > len(r.buf) {
		return nil, errors.New("unexpected end of block data")
	}
	out := make([]byte, n)
	copy(out, r.buf[r.pos:r.pos+n])
	r.pos += n
	return out, nil
}

func (r *reader) readHash() (*externalapi.DomainHash, error) {
	present, err := r.readByte()
	if err != nil {
		return nil, err
	}
	if present == 0 {
		return nil, nil
	}
	raw, err := r.readBytes(externalapi.DomainHashSize)
	if err != nil {
		return nil, err
	}
	return externalapi.NewDomainHashFromByteSlice(raw)
}

func (r *reader) readUint32() (uint32, error) {
	raw, err := r.readBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(raw), nil
}

func (r *reader) readUint64() (uint64, error) {
	raw, err := r.readBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(raw), nil
}

func (r *reader) readInt64() (int64, error) {
	v, err := r.readUint64()
	return int64(v), err
}
