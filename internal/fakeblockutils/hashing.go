// Package fakeblockutils is a reference implementation of the two external
// collaborators PLCS treats as opaque: block hashing/proof-of-work depth
// (model.BlockUtils) and a concrete, independently-hashed externalapi.Block.
// Nothing in the core packages imports this package; it exists so tests and
// local experimentation have a real, if simplistic, base chain to run
// against instead of hand-wired mocks for every case.
package fakeblockutils

import (
	"encoding/binary"

	"github.com/lightrelay/plcs/domain/consensus/model/externalapi"
	"golang.org/x/crypto/blake2b"
)

// computeHash derives a block's hash from its header fields and interlink.
// A real base chain would hash the full serialized block; this is close
// enough to exercise every PLCS code path that depends on hashes being
// unique, stable and dependent on parent/height/nonce/interlink.
func computeHash(header *externalapi.DomainBlockHeader, interlink externalapi.DomainInterlink) *externalapi.DomainHash {
	h, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 only fails for an oversized key, and we never pass one.
		panic(err)
	}

	if header.ParentHash != nil {
		h.Write(header.ParentHash.ByteSlice())
	}
	if header.InterlinkHash != nil {
		h.Write(header.InterlinkHash.ByteSlice())
	}
	writeUint64(h, header.Height)
	writeUint32(h, header.Bits)
	writeUint64(h, header.Difficulty)
	writeInt64(h, header.TimeInMilliseconds)
	writeUint64(h, header.Nonce)
	for _, link := range interlink {
		h.Write(link.ByteSlice())
	}

	sum := h.Sum(nil)
	var arr [externalapi.DomainHashSize]byte
	copy(arr[:], sum)
	return externalapi.NewDomainHashFromByteArray(&arr)
}

// hashInterlink hashes an interlink's hash list, independent of any
// particular block's other header fields, matching what HashInterlink must
// compute so a successor's declared InterlinkHash can be checked against it.
func hashInterlink(link externalapi.DomainInterlink) *externalapi.DomainHash {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	writeUint32(h, uint32(len(link)))
	for _, hash := range link {
		h.Write(hash.ByteSlice())
	}
	sum := h.Sum(nil)
	var arr [externalapi.DomainHashSize]byte
	copy(arr[:], sum)
	return externalapi.NewDomainHashFromByteArray(&arr)
}

type byteWriter interface {
	Write(p []byte) (int, error)
}

func writeUint32(w byteWriter, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	w.Write(buf[:])
}

func writeUint64(w byteWriter, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	w.Write(buf[:])
}

func writeInt64(w byteWriter, v int64) {
	writeUint64(w, uint64(v))
}
