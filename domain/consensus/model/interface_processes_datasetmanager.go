package model

import "github.com/junomoneta/junod/domain/consensus/model/externalapi"

// ValidationDataset is a read-only proof-of-work dataset derived from a
// single seed. Implementations are safe for concurrent use. A dataset
// acquired from the DatasetManager must be released exactly once.
type ValidationDataset interface {
	// Seed returns the seed this dataset was derived from
	Seed() *externalapi.DomainSeed

	// PoWHash runs the proof-of-work function over the given input
	PoWHash(input []byte) *externalapi.DomainHash

	// Release returns the dataset to the manager. The dataset must not
	// be used after Release returns
	Release()
}

// DatasetManager builds, caches and evicts validation datasets keyed by
// seed. All methods are safe for concurrent use.
type DatasetManager interface {
	// Dataset returns a ready dataset for the given seed, building it
	// if necessary. Concurrent calls for the same seed share a single
	// build. Blocks until the build completes or fails; returns
	// ErrDatasetBuildFailed or ErrDatasetBuildCancelled on failure.
	// The caller must Release the returned dataset
	Dataset(seed *externalapi.DomainSeed) (ValidationDataset, error)

	// Prebuild starts building a dataset for the given seed in the
	// background if one is not already cached or building
	Prebuild(seed *externalapi.DomainSeed)

	// EvictExcept marks every cached dataset whose seed is not in the
	// given set for eviction. Marked datasets are freed once their last
	// holder releases them
	EvictExcept(seeds []*externalapi.DomainSeed)

	// Close cancels in-flight builds and waits for them to finish
	Close()
}
