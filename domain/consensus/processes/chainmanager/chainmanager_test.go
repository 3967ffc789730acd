package chainmanager_test

import (
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/junomoneta/junod/domain/consensus/database"
	"github.com/junomoneta/junod/domain/consensus/datastructures/blockheaderstore"
	"github.com/junomoneta/junod/domain/consensus/datastructures/chainstore"
	"github.com/junomoneta/junod/domain/consensus/model"
	"github.com/junomoneta/junod/domain/consensus/model/externalapi"
	"github.com/junomoneta/junod/domain/consensus/processes/blockvalidator"
	"github.com/junomoneta/junod/domain/consensus/processes/chainmanager"
	"github.com/junomoneta/junod/domain/consensus/processes/datasetmanager"
	"github.com/junomoneta/junod/domain/consensus/processes/epochmanager"
	"github.com/junomoneta/junod/domain/consensus/ruleerrors"
	"github.com/junomoneta/junod/domain/consensus/utils/consensushashing"
	"github.com/junomoneta/junod/domain/consensus/utils/hashes"
	"github.com/junomoneta/junod/infrastructure/db/database/ldb"
	"github.com/junomoneta/junod/util/difficulty"
	"github.com/pkg/errors"
)

// Short epochs keep these tests fast while still crossing epoch
// boundaries.
const (
	testEpochLength = 20
	testSeedLag     = 5
)

var testPowMax = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 255), big.NewInt(1))
var testPowMaxBits = difficulty.BigToCompact(testPowMax)
var testGenesisSeed = externalapi.NewDomainSeedFromByteArray(&[externalapi.DomainSeedSize]byte{0x08})

var testGenesisHeader = &externalapi.DomainBlockHeader{
	Version:            1,
	ParentHash:         nil,
	Height:             0,
	TimeInMilliseconds: 1000,
	Bits:               testPowMaxBits,
	Nonce:              1,
}

type testContext struct {
	databaseContext model.DBManager
	epochManager    model.EpochManager
	datasetManager  model.DatasetManager
	chainManager    model.ChainManager
}

func setup(t *testing.T) *testContext {
	db, err := ldb.NewLevelDB(t.TempDir(), 8)
	if err != nil {
		t.Fatalf("NewLevelDB: %+v", err)
	}
	t.Cleanup(func() { db.Close() })

	return setupWithDatabase(t, database.New(db))
}

func setupWithDatabase(t *testing.T, databaseContext model.DBManager) *testContext {
	datasetManager := datasetmanager.New()
	t.Cleanup(datasetManager.Close)
	return setupWithDatasetManager(t, databaseContext, datasetManager)
}

func setupWithDatasetManager(t *testing.T, databaseContext model.DBManager,
	datasetManager model.DatasetManager) *testContext {

	headerStore, err := blockheaderstore.New(databaseContext, 200)
	if err != nil {
		t.Fatalf("blockheaderstore.New: %+v", err)
	}

	epochManager := epochmanager.New(testGenesisSeed, testEpochLength, testSeedLag)
	validator := blockvalidator.New(testPowMax, testPowMaxBits, false, epochManager, datasetManager)

	chainManager, err := chainmanager.New(databaseContext, headerStore, chainstore.New(200),
		epochManager, datasetManager, validator,
		consensushashing.HeaderHash(testGenesisHeader), testGenesisHeader)
	if err != nil {
		t.Fatalf("chainmanager.New: %+v", err)
	}

	return &testContext{
		databaseContext: databaseContext,
		epochManager:    epochManager,
		datasetManager:  datasetManager,
		chainManager:    chainManager,
	}
}

// branchView adapts a slice of headers, starting at genesis, to a chain
// view, so that test code can resolve seeds for side branches the chain
// manager does not consider active.
type branchView struct {
	headers []*externalapi.DomainBlockHeader
}

func (bv *branchView) TipHash() *externalapi.DomainHash {
	return consensushashing.HeaderHash(bv.headers[len(bv.headers)-1])
}

func (bv *branchView) TipHeight() uint64 {
	return uint64(len(bv.headers) - 1)
}

func (bv *branchView) BlockHashByHeight(height uint64) (*externalapi.DomainHash, error) {
	if height > bv.TipHeight() {
		return nil, errors.WithStack(model.ErrBlockNotInChainView)
	}
	return consensushashing.HeaderHash(bv.headers[height]), nil
}

func (bv *branchView) HeaderByHeight(height uint64) (*externalapi.DomainBlockHeader, error) {
	if height > bv.TipHeight() {
		return nil, errors.WithStack(model.ErrBlockNotInChainView)
	}
	return bv.headers[height].Clone(), nil
}

func merkleRootForTest(salt byte, height uint64) externalapi.DomainHash {
	var rootBytes [externalapi.DomainHashSize]byte
	rootBytes[0] = salt
	for i := 0; i < 8; i++ {
		rootBytes[1+i] = byte(height >> (8 * i))
	}
	return *externalapi.NewDomainHashFromByteArray(&rootBytes)
}

// mineHeader builds and solves a header extending the given branch. The
// salt differentiates otherwise identical competing blocks.
func mineHeader(t *testing.T, tc *testContext, branch []*externalapi.DomainBlockHeader,
	salt byte) *externalapi.DomainBlockHeader {

	view := &branchView{headers: branch}
	parent := branch[len(branch)-1]
	header := &externalapi.DomainBlockHeader{
		Version:            1,
		ParentHash:         consensushashing.HeaderHash(parent),
		Height:             parent.Height + 1,
		HashMerkleRoot:     merkleRootForTest(salt, parent.Height+1),
		TimeInMilliseconds: parent.TimeInMilliseconds + 1000,
		Bits:               testPowMaxBits,
	}

	seed, err := tc.epochManager.SeedByHeight(view, header.Height)
	if err != nil {
		t.Fatalf("SeedByHeight: %+v", err)
	}
	dataset, err := tc.datasetManager.Dataset(seed)
	if err != nil {
		t.Fatalf("Dataset: %+v", err)
	}
	defer dataset.Release()

	target := difficulty.CompactToBig(header.Bits)
	for {
		powHash := dataset.PoWHash(consensushashing.SerializeHeaderForPoW(header))
		if hashes.ToBig(powHash).Cmp(target) <= 0 {
			header.PoWHash = *powHash
			return header
		}
		header.Nonce++
	}
}

// extendBranch mines and inserts count blocks on top of the given
// branch, returning the extended branch.
func extendBranch(t *testing.T, tc *testContext, branch []*externalapi.DomainBlockHeader,
	salt byte, count int) []*externalapi.DomainBlockHeader {

	for i := 0; i < count; i++ {
		header := mineHeader(t, tc, branch, salt)
		_, err := tc.chainManager.AddHeader(header)
		if err != nil {
			t.Fatalf("AddHeader at height %d: %+v", header.Height, err)
		}
		branch = append(branch, header)
	}
	return branch
}

func genesisBranch() []*externalapi.DomainBlockHeader {
	return []*externalapi.DomainBlockHeader{testGenesisHeader}
}

func TestExtendChain(t *testing.T) {
	tc := setup(t)

	branch := genesisBranch()
	header := mineHeader(t, tc, branch, 0)
	result, err := tc.chainManager.AddHeader(header)
	if err != nil {
		t.Fatalf("AddHeader: %+v", err)
	}

	blockHash := consensushashing.HeaderHash(header)
	if len(result.ChainChanges.AddedChainBlockHashes) != 1 ||
		!result.ChainChanges.AddedChainBlockHashes[0].Equal(blockHash) {
		t.Fatalf("expected the new block to be the only added chain block")
	}
	if len(result.ChainChanges.RemovedChainBlockHashes) != 0 {
		t.Fatalf("expected no removed chain blocks")
	}

	if !tc.chainManager.ChainView().TipHash().Equal(blockHash) {
		t.Fatalf("the new block did not become the tip")
	}
}

func TestAddHeaderRejectsDuplicates(t *testing.T) {
	tc := setup(t)

	header := mineHeader(t, tc, genesisBranch(), 0)
	_, err := tc.chainManager.AddHeader(header)
	if err != nil {
		t.Fatalf("AddHeader: %+v", err)
	}

	_, err = tc.chainManager.AddHeader(header)
	if !errors.Is(err, ruleerrors.ErrDuplicateBlock) {
		t.Fatalf("expected ErrDuplicateBlock, got: %+v", err)
	}
}

func TestAddHeaderRejectsUnknownParent(t *testing.T) {
	tc := setup(t)

	branch := genesisBranch()
	orphanParent := mineHeader(t, tc, branch, 0)
	branch = append(branch, orphanParent)
	// orphanParent was never inserted, so its child has no known parent.
	orphan := mineHeader(t, tc, branch, 0)

	_, err := tc.chainManager.AddHeader(orphan)
	if !errors.Is(err, ruleerrors.ErrMissingParent) {
		t.Fatalf("expected ErrMissingParent, got: %+v", err)
	}
}

func TestKnownInvalidIsRejectedWithoutRevalidation(t *testing.T) {
	tc := setup(t)

	header := mineHeader(t, tc, genesisBranch(), 0)
	header.PoWHash = merkleRootForTest(0xff, 1)

	_, err := tc.chainManager.AddHeader(header)
	if !errors.Is(err, ruleerrors.ErrPoWHashMismatch) {
		t.Fatalf("expected ErrPoWHashMismatch, got: %+v", err)
	}

	_, err = tc.chainManager.AddHeader(header)
	if !errors.Is(err, ruleerrors.ErrKnownInvalid) {
		t.Fatalf("expected ErrKnownInvalid, got: %+v", err)
	}
}

func TestReorg(t *testing.T) {
	tc := setup(t)

	// Build the initially active chain, then a longer side branch from
	// a lower fork point.
	mainBranch := extendBranch(t, tc, genesisBranch(), 0, 5)
	forkPoint := mainBranch[:3:3]

	// The side branch has strictly less work than the main chain until
	// it reaches height 5, where equal work may already tie-break
	// towards it, and strictly more work from height 6 on.
	sideBranch := forkPoint
	reorged := false
	for i := 0; i < 5; i++ {
		header := mineHeader(t, tc, sideBranch, 1)
		result, err := tc.chainManager.AddHeader(header)
		if err != nil {
			t.Fatalf("AddHeader on side branch: %+v", err)
		}
		sideBranch = append(sideBranch, header)

		if !reorged && header.Height < 5 {
			if len(result.ChainChanges.AddedChainBlockHashes) != 0 {
				t.Fatalf("side branch at height %d should not have changed the chain", header.Height)
			}
			continue
		}

		if !reorged && len(result.ChainChanges.AddedChainBlockHashes) != 0 {
			reorged = true

			// The whole main chain above the fork point is removed,
			// ordered from the old tip down; the side branch above the
			// fork point is added, ordered up to the new tip.
			removed := result.ChainChanges.RemovedChainBlockHashes
			added := result.ChainChanges.AddedChainBlockHashes
			if len(removed) != 3 {
				t.Fatalf("expected 3 removed chain blocks, got %d", len(removed))
			}
			if !removed[0].Equal(consensushashing.HeaderHash(mainBranch[5])) {
				t.Fatalf("removed chain blocks are not ordered from the old tip down")
			}
			if len(added) != int(header.Height)-2 {
				t.Fatalf("expected %d added chain blocks, got %d", header.Height-2, len(added))
			}
			if !added[len(added)-1].Equal(consensushashing.HeaderHash(header)) {
				t.Fatalf("added chain blocks are not ordered up to the new tip")
			}
		}
	}
	if !reorged {
		t.Fatalf("the longer side branch never became active")
	}
	if !tc.chainManager.ChainView().TipHash().Equal(consensushashing.HeaderHash(sideBranch[len(sideBranch)-1])) {
		t.Fatalf("the side branch tip is not the active tip")
	}

	// The old main chain blocks above the fork point are off-chain now.
	info, err := tc.chainManager.GetBlockInfo(consensushashing.HeaderHash(mainBranch[4]))
	if err != nil {
		t.Fatalf("GetBlockInfo: %+v", err)
	}
	if !info.Exists || info.IsInActiveChain {
		t.Fatalf("an abandoned block is still reported as part of the active chain")
	}

	info, err = tc.chainManager.GetBlockInfo(consensushashing.HeaderHash(sideBranch[4]))
	if err != nil {
		t.Fatalf("GetBlockInfo: %+v", err)
	}
	if !info.Exists || !info.IsInActiveChain {
		t.Fatalf("a new active chain block is not reported as such")
	}
}

func TestEqualWorkTieBreaksTowardsLowerHash(t *testing.T) {
	tc := setup(t)

	branch := genesisBranch()
	first := mineHeader(t, tc, branch, 0)
	second := mineHeader(t, tc, branch, 1)

	_, err := tc.chainManager.AddHeader(first)
	if err != nil {
		t.Fatalf("AddHeader: %+v", err)
	}
	_, err = tc.chainManager.AddHeader(second)
	if err != nil {
		t.Fatalf("AddHeader: %+v", err)
	}

	firstHash := consensushashing.HeaderHash(first)
	secondHash := consensushashing.HeaderHash(second)
	expectedTip := firstHash
	if secondHash.Less(firstHash) {
		expectedTip = secondHash
	}

	if !tc.chainManager.ChainView().TipHash().Equal(expectedTip) {
		t.Fatalf("equal-work tie did not resolve towards the lower hash")
	}
}

// gatedDatasetManager delegates to a real dataset manager, but can be
// armed to park the next Dataset call until the gate is opened. It
// stands in for a manager whose dataset is still building.
type gatedDatasetManager struct {
	inner   model.DatasetManager
	mtx     sync.Mutex
	armed   bool
	entered chan struct{}
	gate    chan struct{}
}

func newGatedDatasetManager(inner model.DatasetManager) *gatedDatasetManager {
	return &gatedDatasetManager{
		inner:   inner,
		entered: make(chan struct{}),
		gate:    make(chan struct{}),
	}
}

func (gdm *gatedDatasetManager) arm() {
	gdm.mtx.Lock()
	gdm.armed = true
	gdm.mtx.Unlock()
}

func (gdm *gatedDatasetManager) Dataset(seed *externalapi.DomainSeed) (model.ValidationDataset, error) {
	gdm.mtx.Lock()
	parked := gdm.armed
	gdm.armed = false
	gdm.mtx.Unlock()

	if parked {
		close(gdm.entered)
		<-gdm.gate
	}
	return gdm.inner.Dataset(seed)
}

func (gdm *gatedDatasetManager) Prebuild(seed *externalapi.DomainSeed) {
	gdm.inner.Prebuild(seed)
}

func (gdm *gatedDatasetManager) EvictExcept(seeds []*externalapi.DomainSeed) {
	gdm.inner.EvictExcept(seeds)
}

func (gdm *gatedDatasetManager) Close() {
	gdm.inner.Close()
}

func TestChainStaysResponsiveDuringDatasetWait(t *testing.T) {
	db, err := ldb.NewLevelDB(t.TempDir(), 8)
	if err != nil {
		t.Fatalf("NewLevelDB: %+v", err)
	}
	t.Cleanup(func() { db.Close() })

	inner := datasetmanager.New()
	t.Cleanup(inner.Close)
	gated := newGatedDatasetManager(inner)
	tc := setupWithDatasetManager(t, database.New(db), gated)

	branch := extendBranch(t, tc, genesisBranch(), 0, 2)
	slow := mineHeader(t, tc, branch, 1)
	fast := mineHeader(t, tc, branch, 2)

	// The slow insert parks inside its dataset acquisition, as if its
	// epoch's dataset were still building.
	gated.arm()
	slowResult := make(chan error)
	go func() {
		_, err := tc.chainManager.AddHeader(slow)
		slowResult <- err
	}()
	<-gated.entered

	// Chain operations, including inserting a sibling whose seed's
	// dataset is ready, must not wait behind the parked insert.
	fastResult := make(chan error)
	go func() {
		_, err := tc.chainManager.AddHeader(fast)
		if err != nil {
			fastResult <- err
			return
		}
		tc.chainManager.ChainView()
		_, err = tc.chainManager.GetBlockInfo(consensushashing.HeaderHash(fast))
		fastResult <- err
	}()
	select {
	case err := <-fastResult:
		if err != nil {
			t.Fatalf("concurrent chain operations: %+v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("chain operations are blocked behind an unrelated dataset wait")
	}

	close(gated.gate)
	err = <-slowResult
	if err != nil {
		t.Fatalf("AddHeader after its dataset wait resolved: %+v", err)
	}

	for _, header := range []*externalapi.DomainBlockHeader{slow, fast} {
		info, err := tc.chainManager.GetBlockInfo(consensushashing.HeaderHash(header))
		if err != nil {
			t.Fatalf("GetBlockInfo: %+v", err)
		}
		if !info.Exists {
			t.Fatalf("block %s was not inserted", consensushashing.HeaderHash(header))
		}
	}
}

func TestChainAcrossEpochBoundary(t *testing.T) {
	tc := setup(t)

	// Mine through the first epoch transition. The first block of epoch
	// 1 is at testEpochLength+testSeedLag.
	branch := extendBranch(t, tc, genesisBranch(), 0, testEpochLength+testSeedLag+3)

	tipInfo, err := tc.chainManager.GetBlockInfo(consensushashing.HeaderHash(branch[len(branch)-1]))
	if err != nil {
		t.Fatalf("GetBlockInfo: %+v", err)
	}
	if tipInfo.EpochIndex != 1 {
		t.Fatalf("tip epoch index is %d, want 1", tipInfo.EpochIndex)
	}

	lastOfEpoch0, err := tc.chainManager.GetBlockInfo(consensushashing.HeaderHash(branch[testEpochLength+testSeedLag-1]))
	if err != nil {
		t.Fatalf("GetBlockInfo: %+v", err)
	}
	if lastOfEpoch0.EpochIndex != 0 {
		t.Fatalf("the block before the epoch boundary has epoch index %d, want 0", lastOfEpoch0.EpochIndex)
	}
}

func TestRestoreFromDatabase(t *testing.T) {
	db, err := ldb.NewLevelDB(t.TempDir(), 8)
	if err != nil {
		t.Fatalf("NewLevelDB: %+v", err)
	}
	t.Cleanup(func() { db.Close() })
	databaseContext := database.New(db)

	tc := setupWithDatabase(t, databaseContext)
	branch := extendBranch(t, tc, genesisBranch(), 0, 7)
	expectedTip := consensushashing.HeaderHash(branch[len(branch)-1])

	// A new chain manager over the same database must restore the same
	// active chain.
	restored := setupWithDatabase(t, databaseContext)
	view := restored.chainManager.ChainView()
	if view.TipHeight() != 7 {
		t.Fatalf("restored tip height is %d, want 7", view.TipHeight())
	}
	if !view.TipHash().Equal(expectedTip) {
		t.Fatalf("restored tip is %s, want %s", view.TipHash(), expectedTip)
	}
}
