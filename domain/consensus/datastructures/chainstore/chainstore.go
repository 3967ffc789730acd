package chainstore

import (
	"github.com/junomoneta/junod/domain/consensus/database/binaryserialization"
	"github.com/junomoneta/junod/domain/consensus/model"
	"github.com/junomoneta/junod/domain/consensus/model/externalapi"
	"github.com/junomoneta/junod/domain/consensus/utils/lrucacheuint64tohash"
	"github.com/junomoneta/junod/infrastructure/db/database"
	"github.com/pkg/errors"
)

var bucket = database.MakeBucket([]byte("chain-block-hashes-by-height"))
var tipKey = database.MakeBucket().Key([]byte("chain-tip"))

// chainStore represents a store of the active chain: the block hash at
// every chain height, plus the tip hash.
type chainStore struct {
	stagedTip       *externalapi.DomainHash
	stagedAdditions map[uint64]*externalapi.DomainHash
	stagedTruncate  *uint64

	cache     *lrucacheuint64tohash.LRUCache
	cachedTip *externalapi.DomainHash
}

// New instantiates a new ChainStore
func New(cacheSize int) model.ChainStore {
	return &chainStore{
		stagedAdditions: make(map[uint64]*externalapi.DomainHash),
		cache:           lrucacheuint64tohash.New(cacheSize),
	}
}

// StageTip stages the given hash as the chain tip
func (cs *chainStore) StageTip(tipHash *externalapi.DomainHash) {
	cs.stagedTip = tipHash
}

// StageChainBlock stages the given hash as the chain block at the given
// height
func (cs *chainStore) StageChainBlock(height uint64, blockHash *externalapi.DomainHash) {
	cs.stagedAdditions[height] = blockHash
}

// StageChainTruncate stages the removal of every chain block at or above
// the given height. On Commit, truncation is applied before additions,
// so a reorg is staged as a truncation at the fork point followed by the
// new chain blocks.
func (cs *chainStore) StageChainTruncate(fromHeight uint64) {
	if cs.stagedTruncate == nil || fromHeight < *cs.stagedTruncate {
		truncateFrom := fromHeight
		cs.stagedTruncate = &truncateFrom
	}
}

func (cs *chainStore) IsStaged() bool {
	return cs.stagedTip != nil || len(cs.stagedAdditions) != 0 || cs.stagedTruncate != nil
}

func (cs *chainStore) Discard() {
	cs.stagedTip = nil
	cs.stagedAdditions = make(map[uint64]*externalapi.DomainHash)
	cs.stagedTruncate = nil
}

func (cs *chainStore) Commit(dbTx model.DBTransaction) error {
	if cs.stagedTruncate != nil {
		err := cs.commitTruncate(dbTx, *cs.stagedTruncate)
		if err != nil {
			return err
		}
	}

	for height, blockHash := range cs.stagedAdditions {
		err := dbTx.Put(cs.heightAsKey(height), binaryserialization.SerializeHash(blockHash))
		if err != nil {
			return err
		}
		cs.cache.Add(height, blockHash)
	}

	if cs.stagedTip != nil {
		err := dbTx.Put(tipKey, binaryserialization.SerializeHash(cs.stagedTip))
		if err != nil {
			return err
		}
		cs.cachedTip = cs.stagedTip
	}

	cs.Discard()
	return nil
}

func (cs *chainStore) commitTruncate(dbTx model.DBTransaction, fromHeight uint64) error {
	for height := fromHeight; ; height++ {
		key := cs.heightAsKey(height)
		exists, err := dbTx.Has(key)
		if err != nil {
			return err
		}
		if !exists {
			return nil
		}
		err = dbTx.Delete(key)
		if err != nil {
			return err
		}
		cs.cache.Remove(height)
	}
}

// Tip returns the hash of the current chain tip
func (cs *chainStore) Tip(dbContext model.DBReader) (*externalapi.DomainHash, error) {
	if cs.stagedTip != nil {
		return cs.stagedTip, nil
	}
	if cs.cachedTip != nil {
		return cs.cachedTip, nil
	}

	tipBytes, err := dbContext.Get(tipKey)
	if err != nil {
		return nil, err
	}
	tipHash, err := binaryserialization.DeserializeHash(tipBytes)
	if err != nil {
		return nil, err
	}
	cs.cachedTip = tipHash
	return tipHash, nil
}

// HasTip returns whether a chain tip was ever committed
func (cs *chainStore) HasTip(dbContext model.DBReader) (bool, error) {
	if cs.stagedTip != nil || cs.cachedTip != nil {
		return true, nil
	}
	return dbContext.Has(tipKey)
}

// BlockHashByHeight returns the hash of the chain block at the given
// height
func (cs *chainStore) BlockHashByHeight(dbContext model.DBReader, height uint64) (*externalapi.DomainHash, error) {
	if blockHash, ok := cs.stagedAdditions[height]; ok {
		return blockHash, nil
	}
	if cs.stagedTruncate != nil && height >= *cs.stagedTruncate {
		return nil, errors.Wrapf(database.ErrNotFound, "no chain block at height %d", height)
	}

	if blockHash, ok := cs.cache.Get(height); ok {
		return blockHash, nil
	}

	hashBytes, err := dbContext.Get(cs.heightAsKey(height))
	if err != nil {
		return nil, err
	}
	blockHash, err := binaryserialization.DeserializeHash(hashBytes)
	if err != nil {
		return nil, err
	}
	cs.cache.Add(height, blockHash)
	return blockHash, nil
}

func (cs *chainStore) heightAsKey(height uint64) *database.Key {
	return bucket.Key(binaryserialization.SerializeUint64(height))
}
