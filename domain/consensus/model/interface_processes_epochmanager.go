package model

import "github.com/junomoneta/junod/domain/consensus/model/externalapi"

// EpochManager maps block heights to epochs and resolves each epoch's
// seed against a chain view.
type EpochManager interface {
	// EpochIndex returns the index of the epoch the given height
	// belongs to
	EpochIndex(height uint64) uint64

	// EpochStartHeight returns the first height of the given epoch
	EpochStartHeight(epochIndex uint64) uint64

	// SeedSourceHeight returns the height of the block whose hash seeds
	// the given epoch. Epoch 0 has no seed source block; the boolean
	// return is false in that case
	SeedSourceHeight(epochIndex uint64) (height uint64, exists bool)

	// SeedByHeight resolves the seed for the epoch the given height
	// belongs to, against the given chain view. Returns
	// ErrBlockNotInChainView if the seed source block is above the
	// view's tip
	SeedByHeight(chainView ChainView, height uint64) (*externalapi.DomainSeed, error)

	// NextEpochSeed resolves the seed of the epoch after the one the
	// given height belongs to, if its seed source block is already in
	// the given chain view. The boolean return is false if the source
	// block is not yet known
	NextEpochSeed(chainView ChainView, height uint64) (*externalapi.DomainSeed, bool, error)
}
