// Package datasetmanager builds, caches and evicts validation datasets.
//
// Datasets are keyed by seed. At any moment the manager holds at most a
// handful of datasets: the active epoch's, possibly the previous epoch's
// while in-flight validations drain, and the next epoch's prebuilt one.
// A dataset marked for eviction is not freed until the last acquired
// reference to it is released, so validations that are already holding
// it are never invalidated by a reorg.
package datasetmanager

import (
	"sync"

	"github.com/junomoneta/junod/domain/consensus/model"
	"github.com/junomoneta/junod/domain/consensus/model/externalapi"
	"github.com/junomoneta/junod/domain/consensus/utils/randomx"
	"github.com/pkg/errors"
)

type datasetEntry struct {
	dataset *randomx.Dataset

	// refCount is the number of acquired, not yet released references.
	refCount int

	building  bool
	buildDone chan struct{}
	buildErr  error
	cancel    chan struct{}
	cancelled bool

	// evicted marks the entry dead: it is freed once refCount drops to
	// zero. EvictExcept and renewed demand revive an entry by clearing
	// this flag.
	evicted bool
}

type datasetManager struct {
	mtx     sync.Mutex
	entries map[externalapi.DomainSeed]*datasetEntry
	closed  bool

	buildsWaitGroup sync.WaitGroup
}

// New instantiates a new DatasetManager
func New() model.DatasetManager {
	return &datasetManager{
		entries: make(map[externalapi.DomainSeed]*datasetEntry),
	}
}

// Dataset returns a ready dataset for the given seed, building it if
// necessary. Concurrent calls for the same seed share a single build.
func (dm *datasetManager) Dataset(seed *externalapi.DomainSeed) (model.ValidationDataset, error) {
	dm.mtx.Lock()
	if dm.closed {
		dm.mtx.Unlock()
		return nil, errors.Wrap(model.ErrDatasetBuildCancelled, "dataset manager is closed")
	}

	entry, ok := dm.entries[*seed]
	if !ok {
		entry = dm.startBuild(seed)
	}

	if entry.building {
		buildDone := entry.buildDone
		dm.mtx.Unlock()
		<-buildDone
		dm.mtx.Lock()
	}

	if entry.buildErr != nil {
		err := entry.buildErr
		dm.mtx.Unlock()
		return nil, err
	}

	entry.refCount++
	// Renewed demand revives an entry a chain change marked dead, so
	// the dataset is not freed and rebuilt while still wanted.
	entry.evicted = false
	dm.mtx.Unlock()

	return &validationDataset{manager: dm, seed: seed, entry: entry}, nil
}

// Prebuild starts building a dataset for the given seed in the
// background if one is not already cached or building.
func (dm *datasetManager) Prebuild(seed *externalapi.DomainSeed) {
	dm.mtx.Lock()
	defer dm.mtx.Unlock()

	if dm.closed {
		return
	}
	if _, ok := dm.entries[*seed]; ok {
		return
	}
	dm.startBuild(seed)
}

// startBuild registers a building entry for the given seed and spawns
// the build goroutine. Must be called with the mutex held.
func (dm *datasetManager) startBuild(seed *externalapi.DomainSeed) *datasetEntry {
	entry := &datasetEntry{
		building:  true,
		buildDone: make(chan struct{}),
		cancel:    make(chan struct{}),
	}
	dm.entries[*seed] = entry

	log.Debugf("Starting dataset build for seed %s", seed)
	dm.buildsWaitGroup.Add(1)
	spawn("datasetManager.build", func() {
		dm.build(seed, entry)
	})
	return entry
}

func (dm *datasetManager) build(seed *externalapi.DomainSeed, entry *datasetEntry) {
	defer dm.buildsWaitGroup.Done()

	dataset, err := randomx.BuildDataset(seed, entry.cancel)

	dm.mtx.Lock()
	defer dm.mtx.Unlock()

	entry.building = false
	if err != nil {
		if errors.Is(err, randomx.ErrBuildCancelled) {
			entry.buildErr = errors.Wrapf(model.ErrDatasetBuildCancelled, "seed %s", seed)
			log.Debugf("Dataset build for seed %s was cancelled", seed)
		} else {
			entry.buildErr = errors.Wrapf(model.ErrDatasetBuildFailed, "seed %s: %s", seed, err)
			log.Warnf("Dataset build for seed %s failed: %s", seed, err)
		}
		// Clear the slot so a later request may retry the build.
		dm.deleteEntry(seed, entry)
	} else {
		entry.dataset = dataset
		log.Debugf("Dataset build for seed %s is done", seed)
	}
	close(entry.buildDone)
}

// EvictExcept marks every cached dataset whose seed is not in the given
// set for eviction, and revives marked entries whose seed is back in
// the set. Marked datasets are freed once their last holder releases
// them.
func (dm *datasetManager) EvictExcept(seeds []*externalapi.DomainSeed) {
	dm.mtx.Lock()
	defer dm.mtx.Unlock()

	keep := make(map[externalapi.DomainSeed]struct{}, len(seeds))
	for _, seed := range seeds {
		keep[*seed] = struct{}{}
	}

	for seed, entry := range dm.entries {
		if _, ok := keep[seed]; ok {
			entry.evicted = false
			continue
		}

		entry.evicted = true
		if entry.building {
			dm.cancelBuild(entry)
			continue
		}
		if entry.refCount == 0 {
			seed := seed
			dm.deleteEntry(&seed, entry)
			log.Debugf("Evicted dataset for seed %s", &seed)
		}
	}
}

// Close cancels in-flight builds and waits for them to finish. Datasets
// still held by in-flight validations remain usable until released.
func (dm *datasetManager) Close() {
	dm.mtx.Lock()
	dm.closed = true
	for _, entry := range dm.entries {
		if entry.building {
			dm.cancelBuild(entry)
		}
	}
	dm.mtx.Unlock()

	dm.buildsWaitGroup.Wait()
}

// release returns a reference for the given entry. Must not be called
// with the mutex held.
func (dm *datasetManager) release(seed *externalapi.DomainSeed, entry *datasetEntry) {
	dm.mtx.Lock()
	defer dm.mtx.Unlock()

	if entry.refCount <= 0 {
		panic(errors.Errorf("dataset for seed %s was released more times than it was acquired", seed))
	}
	entry.refCount--
	if entry.refCount == 0 && entry.evicted {
		dm.deleteEntry(seed, entry)
		log.Debugf("Evicted dataset for seed %s after its last holder released it", seed)
	}
}

// deleteEntry removes the given entry from the cache, taking care not to
// remove a newer entry that has already replaced it under the same seed.
// Must be called with the mutex held.
func (dm *datasetManager) deleteEntry(seed *externalapi.DomainSeed, entry *datasetEntry) {
	if current, ok := dm.entries[*seed]; ok && current == entry {
		delete(dm.entries, *seed)
	}
}

// cancelBuild closes the entry's cancel channel exactly once. Must be
// called with the mutex held.
func (dm *datasetManager) cancelBuild(entry *datasetEntry) {
	if !entry.cancelled {
		entry.cancelled = true
		close(entry.cancel)
	}
}

// validationDataset is an acquired reference to a cached dataset.
type validationDataset struct {
	manager  *datasetManager
	seed     *externalapi.DomainSeed
	entry    *datasetEntry
	released bool
}

// Seed returns the seed this dataset was derived from
func (vd *validationDataset) Seed() *externalapi.DomainSeed {
	return vd.seed
}

// PoWHash runs the proof-of-work function over the given input
func (vd *validationDataset) PoWHash(input []byte) *externalapi.DomainHash {
	return vd.entry.dataset.PoWHash(input)
}

// Release returns the dataset to the manager
func (vd *validationDataset) Release() {
	if vd.released {
		panic(errors.Errorf("dataset for seed %s was released twice", vd.seed))
	}
	vd.released = true
	vd.manager.release(vd.seed, vd.entry)
}
