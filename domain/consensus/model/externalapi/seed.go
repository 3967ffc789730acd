package externalapi

import (
	"encoding/hex"

	"github.com/pkg/errors"
)

// DomainSeedSize of array used to store seeds.
const DomainSeedSize = 32

// DomainSeed is the value that parameterizes the proof-of-work function
// for an epoch. For epoch 0 it is a fixed genesis constant; for any later
// epoch it is the hash of the block at the epoch's seed source height.
type DomainSeed struct {
	seedArray [DomainSeedSize]byte
}

// NewDomainSeedFromByteArray constructs a new DomainSeed out of a byte array
func NewDomainSeedFromByteArray(seedBytes *[DomainSeedSize]byte) *DomainSeed {
	return &DomainSeed{
		seedArray: *seedBytes,
	}
}

// NewDomainSeedFromByteSlice constructs a new DomainSeed out of a byte slice.
// Returns an error if the length of the byte slice is not exactly `DomainSeedSize`
func NewDomainSeedFromByteSlice(seedBytes []byte) (*DomainSeed, error) {
	if len(seedBytes) != DomainSeedSize {
		return nil, errors.Errorf("invalid seed size. Want: %d, got: %d",
			DomainSeedSize, len(seedBytes))
	}
	domainSeed := DomainSeed{
		seedArray: [DomainSeedSize]byte{},
	}
	copy(domainSeed.seedArray[:], seedBytes)
	return &domainSeed, nil
}

// NewDomainSeedFromHash constructs a new DomainSeed out of the bytes of the
// given block hash.
func NewDomainSeedFromHash(hash *DomainHash) *DomainSeed {
	return NewDomainSeedFromByteArray(hash.ByteArray())
}

// String returns the seed as a hexadecimal string.
func (seed DomainSeed) String() string {
	return hex.EncodeToString(seed.seedArray[:])
}

// ByteArray returns the bytes in this seed represented as a byte array.
// The seed bytes are cloned, therefore it is safe to modify the resulting array.
func (seed *DomainSeed) ByteArray() *[DomainSeedSize]byte {
	arrayClone := seed.seedArray
	return &arrayClone
}

// ByteSlice returns the bytes in this seed represented as a byte slice.
// The seed bytes are cloned, therefore it is safe to modify the resulting slice.
func (seed *DomainSeed) ByteSlice() []byte {
	return seed.ByteArray()[:]
}

// If this doesn't compile, it means the type definition has been changed, so it's
// an indication to update Equal accordingly.
var _ DomainSeed = DomainSeed{seedArray: [DomainSeedSize]byte{}}

// Equal returns whether seed equals to other
func (seed *DomainSeed) Equal(other *DomainSeed) bool {
	if seed == nil || other == nil {
		return seed == other
	}

	return seed.seedArray == other.seedArray
}

// CloneSeeds returns a clone of the given seeds slice.
// Note: since DomainSeed is a read-only type, the clone is shallow
func CloneSeeds(seeds []*DomainSeed) []*DomainSeed {
	clone := make([]*DomainSeed, len(seeds))
	copy(clone, seeds)
	return clone
}
