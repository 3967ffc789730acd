// Package epochmanager maps block heights to proof-of-work epochs and
// resolves epoch seeds against a chain of headers.
//
// The chain is divided into fixed-length epochs. An epoch's seed is the
// hash of the block at the epoch's seed source height, which trails the
// epoch's first block by the seed lag. The lag guarantees that when the
// epoch activates, its seed source block is already buried lag-deep in
// the chain, giving every node time to build the epoch's dataset ahead
// of activation.
//
// Epoch 0 is special: it starts at genesis, before any block exists to
// seed it, so it uses a network-constant seed and absorbs the first lag
// blocks of what would otherwise be epoch 1. Epoch e > 0 therefore
// covers heights [e*epochLength+seedLag, (e+1)*epochLength+seedLag) and
// is seeded by the block at height e*epochLength.
package epochmanager

import (
	"github.com/junomoneta/junod/domain/consensus/model"
	"github.com/junomoneta/junod/domain/consensus/model/externalapi"
)

type epochManager struct {
	genesisSeed *externalapi.DomainSeed
	epochLength uint64
	seedLag     uint64
}

// New instantiates a new EpochManager
func New(genesisSeed *externalapi.DomainSeed, epochLength uint64, seedLag uint64) model.EpochManager {
	return &epochManager{
		genesisSeed: genesisSeed,
		epochLength: epochLength,
		seedLag:     seedLag,
	}
}

// EpochIndex returns the index of the epoch the given height belongs to
func (em *epochManager) EpochIndex(height uint64) uint64 {
	if height < em.seedLag {
		return 0
	}
	return (height - em.seedLag) / em.epochLength
}

// EpochStartHeight returns the first height of the given epoch
func (em *epochManager) EpochStartHeight(epochIndex uint64) uint64 {
	if epochIndex == 0 {
		return 0
	}
	return epochIndex*em.epochLength + em.seedLag
}

// SeedSourceHeight returns the height of the block whose hash seeds the
// given epoch. Epoch 0 is seeded by a network constant rather than a
// block, so it has no seed source height
func (em *epochManager) SeedSourceHeight(epochIndex uint64) (height uint64, exists bool) {
	if epochIndex == 0 {
		return 0, false
	}
	return epochIndex * em.epochLength, true
}

// SeedByHeight resolves the seed for the epoch the given height belongs
// to, against the given chain view
func (em *epochManager) SeedByHeight(chainView model.ChainView, height uint64) (*externalapi.DomainSeed, error) {
	return em.epochSeed(chainView, em.EpochIndex(height))
}

// NextEpochSeed resolves the seed of the epoch following the one the
// given height belongs to, if its seed source block is already in the
// given chain view
func (em *epochManager) NextEpochSeed(chainView model.ChainView, height uint64) (*externalapi.DomainSeed, bool, error) {
	nextEpochIndex := em.EpochIndex(height) + 1
	seedSourceHeight, _ := em.SeedSourceHeight(nextEpochIndex)
	if seedSourceHeight > chainView.TipHeight() {
		return nil, false, nil
	}

	seed, err := em.epochSeed(chainView, nextEpochIndex)
	if err != nil {
		return nil, false, err
	}
	return seed, true, nil
}

func (em *epochManager) epochSeed(chainView model.ChainView, epochIndex uint64) (*externalapi.DomainSeed, error) {
	seedSourceHeight, exists := em.SeedSourceHeight(epochIndex)
	if !exists {
		return em.genesisSeed, nil
	}

	seedSourceHash, err := chainView.BlockHashByHeight(seedSourceHeight)
	if err != nil {
		return nil, err
	}
	return externalapi.NewDomainSeedFromHash(seedSourceHash), nil
}
