// Package chainmanager maintains the block index and the active chain.
//
// Fork choice is by cumulative work: the chain whose tip has the most
// total work is active, with ties broken towards the lower tip hash. On
// every change of the active chain the manager re-aligns the dataset
// cache: it keeps the datasets the new tip needs, prebuilds the next
// epoch's dataset as soon as its seed source block is in the chain, and
// marks everything else for eviction.
//
// Only the active chain is persisted. Side branches live in the
// in-memory index and are abandoned on restart; their blocks re-enter
// the index if their chain later wins and is re-submitted.
package chainmanager

import (
	"sync"

	"github.com/junomoneta/junod/domain/consensus/model"
	"github.com/junomoneta/junod/domain/consensus/model/externalapi"
	"github.com/junomoneta/junod/domain/consensus/ruleerrors"
	"github.com/junomoneta/junod/domain/consensus/utils/consensushashing"
	"github.com/junomoneta/junod/util/difficulty"
	"github.com/pkg/errors"
)

type chainManager struct {
	mtx sync.RWMutex

	databaseContext  model.DBManager
	blockHeaderStore model.BlockHeaderStore
	chainStore       model.ChainStore

	epochManager   model.EpochManager
	datasetManager model.DatasetManager
	blockValidator model.BlockValidator

	genesisHash   *externalapi.DomainHash
	genesisHeader *externalapi.DomainBlockHeader

	index        map[externalapi.DomainHash]*blockNode
	knownInvalid map[externalapi.DomainHash]struct{}
	virtualTip   *blockNode
}

// New instantiates a new ChainManager. The active chain is restored from
// the database, or initialized to the genesis block on first run.
func New(databaseContext model.DBManager,
	blockHeaderStore model.BlockHeaderStore,
	chainStore model.ChainStore,

	epochManager model.EpochManager,
	datasetManager model.DatasetManager,
	blockValidator model.BlockValidator,

	genesisHash *externalapi.DomainHash,
	genesisHeader *externalapi.DomainBlockHeader) (model.ChainManager, error) {

	cm := &chainManager{
		databaseContext:  databaseContext,
		blockHeaderStore: blockHeaderStore,
		chainStore:       chainStore,

		epochManager:   epochManager,
		datasetManager: datasetManager,
		blockValidator: blockValidator,

		genesisHash:   genesisHash,
		genesisHeader: genesisHeader,

		index:        make(map[externalapi.DomainHash]*blockNode),
		knownInvalid: make(map[externalapi.DomainHash]struct{}),
	}

	err := cm.initialize()
	if err != nil {
		return nil, err
	}

	cm.maintainDatasets()
	return cm, nil
}

func (cm *chainManager) initialize() error {
	hasTip, err := cm.chainStore.HasTip(cm.databaseContext)
	if err != nil {
		return err
	}
	if !hasTip {
		return cm.initializeGenesis()
	}
	return cm.restoreChain()
}

func (cm *chainManager) initializeGenesis() error {
	log.Infof("Initializing a fresh chain with genesis block %s", cm.genesisHash)

	node := newBlockNode(cm.genesisHash, cm.genesisHeader.Clone(), nil,
		difficulty.CalcWork(cm.genesisHeader.Bits))
	cm.index[*cm.genesisHash] = node
	cm.virtualTip = node

	cm.blockHeaderStore.Stage(cm.genesisHash, cm.genesisHeader)
	cm.chainStore.StageChainBlock(0, cm.genesisHash)
	cm.chainStore.StageTip(cm.genesisHash)
	return cm.commit()
}

// restoreChain rebuilds the in-memory block index from the persisted
// active chain.
func (cm *chainManager) restoreChain() error {
	tipHash, err := cm.chainStore.Tip(cm.databaseContext)
	if err != nil {
		return err
	}
	tipHeader, err := cm.blockHeaderStore.BlockHeader(cm.databaseContext, tipHash)
	if err != nil {
		return err
	}

	var previous *blockNode
	for height := uint64(0); height <= tipHeader.Height; height++ {
		blockHash, err := cm.chainStore.BlockHashByHeight(cm.databaseContext, height)
		if err != nil {
			return err
		}
		header, err := cm.blockHeaderStore.BlockHeader(cm.databaseContext, blockHash)
		if err != nil {
			return err
		}

		node := newBlockNode(blockHash, header, previous, difficulty.CalcWork(header.Bits))
		cm.index[*blockHash] = node
		previous = node
	}

	if !previous.hash.Equal(tipHash) {
		return errors.Errorf("persisted chain ends at %s while the persisted tip is %s",
			previous.hash, tipHash)
	}
	cm.virtualTip = previous

	log.Infof("Restored the active chain up to block %s at height %d", tipHash, tipHeader.Height)
	return nil
}

// AddHeader validates the given header and inserts it into the block
// index, possibly extending or reorganizing the active chain.
func (cm *chainManager) AddHeader(header *externalapi.DomainBlockHeader) (*externalapi.BlockInsertionResult, error) {
	blockHash := consensushashing.HeaderHash(header)

	parent, err := cm.parentForNewHeader(blockHash, header)
	if err != nil {
		return nil, err
	}

	// Validation may synchronously wait for a dataset build, so it runs
	// without the lock. The chain view over the parent is a snapshot of
	// immutable nodes, so a concurrent chain change cannot leak another
	// branch's seeds into this validation.
	err = cm.blockValidator.ValidateHeaderInContext(newChainView(parent), header)
	if err != nil {
		var ruleErr ruleerrors.RuleError
		if errors.As(err, &ruleErr) {
			cm.mtx.Lock()
			cm.knownInvalid[*blockHash] = struct{}{}
			cm.mtx.Unlock()
		}
		return nil, err
	}

	cm.mtx.Lock()
	defer cm.mtx.Unlock()

	// The same block may have been inserted while it was validated
	// outside the lock.
	if _, ok := cm.index[*blockHash]; ok {
		return nil, errors.Wrapf(ruleerrors.ErrDuplicateBlock, "block %s already exists", blockHash)
	}

	node := newBlockNode(blockHash, header.Clone(), parent, difficulty.CalcWork(header.Bits))
	cm.index[*blockHash] = node
	cm.blockHeaderStore.Stage(blockHash, header)

	chainChanges := &externalapi.ChainChangeSet{}
	if cm.virtualTip.less(node) {
		chainChanges = cm.updateChain(node)
	}

	err = cm.commit()
	if err != nil {
		return nil, err
	}

	if len(chainChanges.AddedChainBlockHashes) > 0 {
		cm.maintainDatasets()
	}

	return &externalapi.BlockInsertionResult{ChainChanges: chainChanges}, nil
}

// parentForNewHeader checks that the given header may enter the index
// and returns its parent node.
func (cm *chainManager) parentForNewHeader(blockHash *externalapi.DomainHash,
	header *externalapi.DomainBlockHeader) (*blockNode, error) {

	cm.mtx.RLock()
	defer cm.mtx.RUnlock()

	if _, ok := cm.index[*blockHash]; ok {
		return nil, errors.Wrapf(ruleerrors.ErrDuplicateBlock, "block %s already exists", blockHash)
	}
	if _, ok := cm.knownInvalid[*blockHash]; ok {
		return nil, errors.Wrapf(ruleerrors.ErrKnownInvalid, "block %s is known to be invalid", blockHash)
	}
	if header.ParentHash == nil {
		return nil, errors.Wrapf(ruleerrors.ErrMissingParent, "only the genesis block may have no parent")
	}

	parent, ok := cm.index[*header.ParentHash]
	if !ok {
		return nil, errors.Wrapf(ruleerrors.ErrMissingParent, "parent block %s is unknown", header.ParentHash)
	}
	return parent, nil
}

// updateChain moves the active chain tip to newTip and stages the
// resulting chain store changes.
func (cm *chainManager) updateChain(newTip *blockNode) *externalapi.ChainChangeSet {
	oldTip := cm.virtualTip
	forkPoint := findForkPoint(oldTip, newTip)

	removed := make([]*externalapi.DomainHash, 0)
	for current := oldTip; current != forkPoint; current = current.parent {
		removed = append(removed, current.hash)
	}

	added := make([]*externalapi.DomainHash, newTip.height()-forkPoint.height())
	for current := newTip; current != forkPoint; current = current.parent {
		added[current.height()-forkPoint.height()-1] = current.hash
	}

	if len(removed) > 0 {
		cm.chainStore.StageChainTruncate(forkPoint.height() + 1)
		log.Infof("Chain reorganization at height %d: removed %d blocks, added %d blocks, new tip %s",
			forkPoint.height()+1, len(removed), len(added), newTip.hash)
	}
	for current := newTip; current != forkPoint; current = current.parent {
		cm.chainStore.StageChainBlock(current.height(), current.hash)
	}
	cm.chainStore.StageTip(newTip.hash)
	cm.virtualTip = newTip

	return &externalapi.ChainChangeSet{
		AddedChainBlockHashes:   added,
		RemovedChainBlockHashes: removed,
	}
}

// findForkPoint returns the highest common ancestor of a and b.
func findForkPoint(a, b *blockNode) *blockNode {
	for a != b {
		if a.height() > b.height() {
			a = a.parent
		} else {
			b = b.parent
		}
	}
	return a
}

func (cm *chainManager) commit() error {
	err := cm.commitAllStores()
	if err != nil {
		cm.blockHeaderStore.Discard()
		cm.chainStore.Discard()
	}
	return err
}

func (cm *chainManager) commitAllStores() error {
	dbTx, err := cm.databaseContext.Begin()
	if err != nil {
		return err
	}
	defer dbTx.RollbackUnlessClosed()

	err = cm.blockHeaderStore.Commit(dbTx)
	if err != nil {
		return err
	}
	err = cm.chainStore.Commit(dbTx)
	if err != nil {
		return err
	}
	return dbTx.Commit()
}

// maintainDatasets re-aligns the dataset cache with the active tip: the
// datasets needed to validate blocks extending the tip are kept, the
// next epoch's dataset is prebuilt once its seed source block is in the
// chain, and everything else is marked for eviction.
func (cm *chainManager) maintainDatasets() {
	view := newChainView(cm.virtualTip)
	nextBlockHeight := cm.virtualTip.height() + 1

	keep := make([]*externalapi.DomainSeed, 0, 3)

	tipSeed, err := cm.epochManager.SeedByHeight(view, cm.virtualTip.height())
	if err != nil {
		log.Errorf("Failed to resolve the seed of the tip's epoch: %s", err)
		return
	}
	keep = append(keep, tipSeed)

	nextBlockSeed, err := cm.epochManager.SeedByHeight(view, nextBlockHeight)
	if err != nil {
		log.Errorf("Failed to resolve the seed for blocks extending the tip: %s", err)
		return
	}
	if !nextBlockSeed.Equal(tipSeed) {
		keep = append(keep, nextBlockSeed)
	}
	cm.datasetManager.Prebuild(nextBlockSeed)

	nextEpochSeed, exists, err := cm.epochManager.NextEpochSeed(view, nextBlockHeight)
	if err != nil {
		log.Errorf("Failed to resolve the next epoch's seed: %s", err)
		return
	}
	if exists {
		keep = append(keep, nextEpochSeed)
		cm.datasetManager.Prebuild(nextEpochSeed)
	}

	cm.datasetManager.EvictExcept(keep)
}

// ChainView returns an immutable view of the current active chain
func (cm *chainManager) ChainView() model.ChainView {
	cm.mtx.RLock()
	defer cm.mtx.RUnlock()

	return newChainView(cm.virtualTip)
}

// BlockHeaderByHash returns the header of the block with the given hash,
// whether or not it is in the active chain
func (cm *chainManager) BlockHeaderByHash(blockHash *externalapi.DomainHash) (*externalapi.DomainBlockHeader, error) {
	cm.mtx.RLock()
	defer cm.mtx.RUnlock()

	if node, ok := cm.index[*blockHash]; ok {
		return node.header.Clone(), nil
	}
	return cm.blockHeaderStore.BlockHeader(cm.databaseContext, blockHash)
}

// GetBlockInfo returns information about the block with the given hash
func (cm *chainManager) GetBlockInfo(blockHash *externalapi.DomainHash) (*externalapi.BlockInfo, error) {
	cm.mtx.RLock()
	defer cm.mtx.RUnlock()

	node, ok := cm.index[*blockHash]
	if !ok {
		return &externalapi.BlockInfo{Exists: false}, nil
	}

	isInActiveChain := node.height() <= cm.virtualTip.height() &&
		cm.virtualTip.selectedAncestor(node.height()) == node

	return &externalapi.BlockInfo{
		Exists:          true,
		Height:          node.height(),
		EpochIndex:      cm.epochManager.EpochIndex(node.height()),
		IsInActiveChain: isInActiveChain,
	}, nil
}
