package externalapi

import (
	"encoding/hex"

	"github.com/pkg/errors"
)

// DomainHashSize is the size, in bytes, of a DomainHash.
const DomainHashSize = 32

// DomainHash is a 32-byte hash as exchanged throughout the synchronizer.
// What it is a hash of, and how it was computed, is a concern of the base
// chain this package is built against, not of PLCS itself.
type DomainHash struct {
	hashArray [DomainHashSize]byte
}

// NewDomainHashFromByteArray returns a new DomainHash wrapping the given array.
func NewDomainHashFromByteArray(hashBytes *[DomainHashSize]byte) *DomainHash {
	return &DomainHash{hashArray: *hashBytes}
}

// NewDomainHashFromByteSlice returns a new DomainHash built from a byte slice
// of exactly DomainHashSize bytes.
func NewDomainHashFromByteSlice(hashBytes []byte) (*DomainHash, error) {
	if len(hashBytes) != DomainHashSize {
		return nil, errors.Errorf("invalid hash size. want: %d, got: %d",
			DomainHashSize, len(hashBytes))
	}
	domainHash := DomainHash{}
	copy(domainHash.hashArray[:], hashBytes)
	return &domainHash, nil
}

// NewDomainHashFromString parses a hex-encoded hash.
func NewDomainHashFromString(hashString string) (*DomainHash, error) {
	expectedLength := DomainHashSize * 2
	if len(hashString) != expectedLength {
		return nil, errors.Errorf("hash string length is %d, should be %d",
			len(hashString), expectedLength)
	}

	hashBytes, err := hex.DecodeString(hashString)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return NewDomainHashFromByteSlice(hashBytes)
}

// String returns the hash as a hex-encoded string.
func (hash DomainHash) String() string {
	return hex.EncodeToString(hash.hashArray[:])
}

// ByteArray returns a clone of the underlying bytes as an array.
func (hash *DomainHash) ByteArray() *[DomainHashSize]byte {
	arrayClone := hash.hashArray
	return &arrayClone
}

// ByteSlice returns a clone of the underlying bytes as a slice.
func (hash *DomainHash) ByteSlice() []byte {
	return hash.ByteArray()[:]
}

// If this doesn't compile, it means the type definition has been changed, so
// it's an indication to update Equal and Clone accordingly.
var _ DomainHash = DomainHash{hashArray: [DomainHashSize]byte{}}

// Equal returns whether hash equals other. Two nil hashes are equal; a nil
// hash equals nothing else.
func (hash *DomainHash) Equal(other *DomainHash) bool {
	if hash == nil || other == nil {
		return hash == other
	}
	return hash.hashArray == other.hashArray
}

// IsZero reports whether hash is the all-zero value.
func (hash *DomainHash) IsZero() bool {
	return hash.hashArray == [DomainHashSize]byte{}
}

// CloneHashes returns a shallow clone of the given hash slice.
func CloneHashes(hashes []*DomainHash) []*DomainHash {
	clone := make([]*DomainHash, len(hashes))
	copy(clone, hashes)
	return clone
}

// HashesEqual returns whether the given hash slices are equal element-wise.
func HashesEqual(a, b []*DomainHash) bool {
	if len(a) != len(b) {
		return false
	}
	for i, hash := range a {
		if !hash.Equal(b[i]) {
			return false
		}
	}
	return true
}
