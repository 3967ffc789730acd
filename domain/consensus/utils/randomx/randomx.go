// Package randomx implements the epoch-seeded proof-of-work primitive.
//
// A Dataset is a large table of pseudorandom items derived entirely from
// a 32-byte seed. The proof-of-work hash of an input is computed by
// repeatedly folding dataset items, selected by the running digest, into
// the digest. Verifying a block therefore requires the dataset of the
// block's epoch to be materialized in memory.
package randomx

import (
	"encoding/binary"

	"github.com/junomoneta/junod/domain/consensus/model/externalapi"
	"github.com/junomoneta/junod/domain/consensus/utils/hashes"
	"github.com/pkg/errors"
)

const (
	// ItemCount is the number of items in a dataset.
	ItemCount = 1 << 16

	// ItemSize is the size of a single dataset item in bytes.
	ItemSize = 32

	// mixRounds is the number of dataset items folded into the digest
	// per proof-of-work hash.
	mixRounds = 8

	// cancelCheckInterval is the number of items built between
	// cancellation checks.
	cancelCheckInterval = 1024
)

// ErrBuildCancelled signifies that a dataset build was cancelled before
// completion.
var ErrBuildCancelled = errors.New("dataset build was cancelled")

// Dataset is an immutable proof-of-work dataset derived from a single
// seed. It is safe for concurrent use.
type Dataset struct {
	seed  *externalapi.DomainSeed
	items []byte
}

// BuildDataset derives the full dataset for the given seed. The build is
// aborted with ErrBuildCancelled if the cancel channel is closed; a nil
// cancel channel disables cancellation.
func BuildDataset(seed *externalapi.DomainSeed, cancel <-chan struct{}) (*Dataset, error) {
	items := make([]byte, ItemCount*ItemSize)
	seedBytes := seed.ByteSlice()

	var indexBytes [8]byte
	for i := uint64(0); i < ItemCount; i++ {
		if i%cancelCheckInterval == 0 && cancel != nil {
			select {
			case <-cancel:
				return nil, errors.WithStack(ErrBuildCancelled)
			default:
			}
		}

		writer := hashes.NewDatasetItemHashWriter()
		writer.InfallibleWrite(seedBytes)
		binary.LittleEndian.PutUint64(indexBytes[:], i)
		writer.InfallibleWrite(indexBytes[:])
		copy(items[i*ItemSize:(i+1)*ItemSize], writer.Finalize().ByteSlice())
	}

	return &Dataset{seed: seed, items: items}, nil
}

// Seed returns the seed this dataset was derived from
func (d *Dataset) Seed() *externalapi.DomainSeed {
	return d.seed
}

// item returns the i'th dataset item. The returned slice aliases the
// dataset and must not be modified.
func (d *Dataset) item(i uint32) []byte {
	offset := uint64(i) * ItemSize
	return d.items[offset : offset+ItemSize]
}

// PoWHash computes the proof-of-work hash of the given input against
// this dataset.
func (d *Dataset) PoWHash(input []byte) *externalapi.DomainHash {
	writer := hashes.NewPoWHashWriter()
	writer.InfallibleWrite(input)
	mix := writer.Finalize()

	for round := 0; round < mixRounds; round++ {
		mixBytes := mix.ByteSlice()
		index := binary.LittleEndian.Uint32(mixBytes[round*4:]) % ItemCount

		writer := hashes.NewPoWHashWriter()
		writer.InfallibleWrite(mixBytes)
		writer.InfallibleWrite(d.item(index))
		mix = writer.Finalize()
	}

	return mix
}
