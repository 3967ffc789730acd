package datasetmanager

import (
	"sync"
	"testing"

	"github.com/junomoneta/junod/domain/consensus/model"
	"github.com/junomoneta/junod/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

func seedForTest(firstByte byte) *externalapi.DomainSeed {
	var seedBytes [externalapi.DomainSeedSize]byte
	seedBytes[0] = firstByte
	return externalapi.NewDomainSeedFromByteArray(&seedBytes)
}

func TestDatasetAcquireAndRelease(t *testing.T) {
	dm := New()
	defer dm.Close()

	seed := seedForTest(0x01)
	dataset, err := dm.Dataset(seed)
	if err != nil {
		t.Fatalf("Dataset: %+v", err)
	}
	if !dataset.Seed().Equal(seed) {
		t.Fatalf("Dataset: got a dataset for seed %s, want %s", dataset.Seed(), seed)
	}

	hash := dataset.PoWHash([]byte("input"))
	if hash == nil {
		t.Fatalf("PoWHash returned nil")
	}
	dataset.Release()
}

func TestConcurrentRequestsShareOneBuild(t *testing.T) {
	dm := New()
	defer dm.Close()

	seed := seedForTest(0x01)

	const requests = 16
	datasets := make([]model.ValidationDataset, requests)
	errs := make([]error, requests)

	var wg sync.WaitGroup
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			datasets[i], errs[i] = dm.Dataset(seed)
		}(i)
	}
	wg.Wait()

	for i := 0; i < requests; i++ {
		if errs[i] != nil {
			t.Fatalf("Dataset #%d: %+v", i, errs[i])
		}
	}

	// All requests must have been served from the same underlying build:
	// the PoW function is deterministic per dataset, so equal outputs
	// over equal inputs confirm equal datasets.
	want := datasets[0].PoWHash([]byte("input"))
	for i := 1; i < requests; i++ {
		if !datasets[i].PoWHash([]byte("input")).Equal(want) {
			t.Fatalf("Dataset #%d diverged from dataset #0", i)
		}
	}

	for i := 0; i < requests; i++ {
		datasets[i].Release()
	}
}

func TestEvictExceptFreesOnlyUnheldDatasets(t *testing.T) {
	dm := New()
	defer dm.Close()

	heldSeed := seedForTest(0x01)
	freeSeed := seedForTest(0x02)

	held, err := dm.Dataset(heldSeed)
	if err != nil {
		t.Fatalf("Dataset: %+v", err)
	}
	free, err := dm.Dataset(freeSeed)
	if err != nil {
		t.Fatalf("Dataset: %+v", err)
	}
	free.Release()

	// Evict everything. The held dataset must survive until released.
	dm.EvictExcept(nil)

	if hash := held.PoWHash([]byte("input")); hash == nil {
		t.Fatalf("held dataset became unusable after EvictExcept")
	}
	held.Release()
}

func TestEvictExceptKeepsActiveSeeds(t *testing.T) {
	dm := New()
	defer dm.Close()

	activeSeed := seedForTest(0x01)
	staleSeed := seedForTest(0x02)

	active, err := dm.Dataset(activeSeed)
	if err != nil {
		t.Fatalf("Dataset: %+v", err)
	}
	active.Release()
	stale, err := dm.Dataset(staleSeed)
	if err != nil {
		t.Fatalf("Dataset: %+v", err)
	}
	stale.Release()

	dm.EvictExcept([]*externalapi.DomainSeed{activeSeed})

	// The active seed's dataset survived eviction, so re-acquiring it
	// must not trigger a rebuild. This is observable only indirectly:
	// the request returns a working dataset either way.
	reacquired, err := dm.Dataset(activeSeed)
	if err != nil {
		t.Fatalf("Dataset: %+v", err)
	}
	reacquired.Release()
}

func TestDatasetAfterCloseFails(t *testing.T) {
	dm := New()
	dm.Close()

	_, err := dm.Dataset(seedForTest(0x01))
	if !errors.Is(err, model.ErrDatasetBuildCancelled) {
		t.Fatalf("expected ErrDatasetBuildCancelled, got: %+v", err)
	}
}

func TestPrebuildThenAcquire(t *testing.T) {
	dm := New()
	defer dm.Close()

	seed := seedForTest(0x01)
	dm.Prebuild(seed)

	// Acquiring joins the prebuild rather than starting a new one, and
	// blocks until it is done.
	dataset, err := dm.Dataset(seed)
	if err != nil {
		t.Fatalf("Dataset: %+v", err)
	}
	dataset.Release()
}

func TestCancelledBuildSurfacesErrorAndAllowsRetry(t *testing.T) {
	dm := New().(*datasetManager)
	defer dm.Close()

	seed := seedForTest(0x01)

	// Start a build and cancel it in the same critical section. The
	// build cannot record its result until the mutex is free, so it is
	// guaranteed to observe the cancellation at one of its checks.
	dm.mtx.Lock()
	entry := dm.startBuild(seed)
	dm.cancelBuild(entry)
	dm.mtx.Unlock()

	// Join the build the way Dataset's waiters do: wait for it to
	// resolve, then read its outcome.
	<-entry.buildDone
	if !errors.Is(entry.buildErr, model.ErrDatasetBuildCancelled) {
		t.Fatalf("expected ErrDatasetBuildCancelled, got: %+v", entry.buildErr)
	}

	// The slot was cleared, so the seed is not poisoned.
	dm.mtx.Lock()
	_, stillCached := dm.entries[*seed]
	dm.mtx.Unlock()
	if stillCached {
		t.Fatalf("a cancelled build left its slot occupied")
	}

	// The next demand for the seed rebuilds and succeeds.
	dataset, err := dm.Dataset(seed)
	if err != nil {
		t.Fatalf("Dataset after a cancelled build: %+v", err)
	}
	dataset.Release()
}

func TestReorgEvictsAbandonedSeed(t *testing.T) {
	dm := New().(*datasetManager)
	defer dm.Close()

	abandonedSeed := seedForTest(0x01)
	newChainSeed := seedForTest(0x02)

	// A validator on the soon-abandoned branch holds its epoch's
	// dataset when the reorg re-aligns the cache with the new chain.
	held, err := dm.Dataset(abandonedSeed)
	if err != nil {
		t.Fatalf("Dataset: %+v", err)
	}
	newDataset, err := dm.Dataset(newChainSeed)
	if err != nil {
		t.Fatalf("Dataset: %+v", err)
	}
	newDataset.Release()

	dm.EvictExcept([]*externalapi.DomainSeed{newChainSeed})

	// The abandoned seed's dataset survives while the in-flight
	// validation still holds it.
	dm.mtx.Lock()
	_, abandonedCached := dm.entries[*abandonedSeed]
	dm.mtx.Unlock()
	if !abandonedCached {
		t.Fatalf("an eviction freed a dataset that is still held")
	}

	held.Release()

	dm.mtx.Lock()
	_, abandonedCached = dm.entries[*abandonedSeed]
	_, newCached := dm.entries[*newChainSeed]
	dm.mtx.Unlock()
	if abandonedCached {
		t.Fatalf("the abandoned branch's dataset was not evicted after its last release")
	}
	if !newCached {
		t.Fatalf("the new chain's dataset was evicted")
	}
}

func TestDemandRevivesEvictedDataset(t *testing.T) {
	dm := New().(*datasetManager)
	defer dm.Close()

	seed := seedForTest(0x01)
	held, err := dm.Dataset(seed)
	if err != nil {
		t.Fatalf("Dataset: %+v", err)
	}

	// The eviction cannot free the held dataset, it only marks it dead.
	dm.EvictExcept(nil)

	// A new demand for the seed revives the entry, so releasing every
	// reference afterwards must not free it.
	reacquired, err := dm.Dataset(seed)
	if err != nil {
		t.Fatalf("Dataset: %+v", err)
	}
	held.Release()
	reacquired.Release()

	dm.mtx.Lock()
	_, cached := dm.entries[*seed]
	dm.mtx.Unlock()
	if !cached {
		t.Fatalf("a re-demanded dataset was freed on release")
	}
}

func TestDoubleReleasePanics(t *testing.T) {
	dm := New()
	defer dm.Close()

	dataset, err := dm.Dataset(seedForTest(0x01))
	if err != nil {
		t.Fatalf("Dataset: %+v", err)
	}
	dataset.Release()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic on double release")
		}
	}()
	dataset.Release()
}
