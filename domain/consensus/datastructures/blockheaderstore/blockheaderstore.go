package blockheaderstore

import (
	"github.com/junomoneta/junod/domain/consensus/database/binaryserialization"
	"github.com/junomoneta/junod/domain/consensus/model"
	"github.com/junomoneta/junod/domain/consensus/model/externalapi"
	"github.com/junomoneta/junod/domain/consensus/utils/lrucache"
	"github.com/junomoneta/junod/infrastructure/db/database"
)

var bucket = database.MakeBucket([]byte("block-headers"))
var countKey = database.MakeBucket().Key([]byte("block-headers-count"))

// blockHeaderStore represents a store of block headers
type blockHeaderStore struct {
	staging map[externalapi.DomainHash]*externalapi.DomainBlockHeader
	cache   *lrucache.LRUCache
	count   uint64
}

// New instantiates a new BlockHeaderStore
func New(dbContext model.DBReader, cacheSize int) (model.BlockHeaderStore, error) {
	blockHeaderStore := &blockHeaderStore{
		staging: make(map[externalapi.DomainHash]*externalapi.DomainBlockHeader),
		cache:   lrucache.New(cacheSize),
	}

	err := blockHeaderStore.initializeCount(dbContext)
	if err != nil {
		return nil, err
	}

	return blockHeaderStore, nil
}

func (bhs *blockHeaderStore) initializeCount(dbContext model.DBReader) error {
	count := uint64(0)
	hasCountBytes, err := dbContext.Has(countKey)
	if err != nil {
		return err
	}
	if hasCountBytes {
		countBytes, err := dbContext.Get(countKey)
		if err != nil {
			return err
		}
		count = binaryserialization.DeserializeUint64(countBytes)
	}
	bhs.count = count
	return nil
}

// Stage stages the given block header for the given blockHash
func (bhs *blockHeaderStore) Stage(blockHash *externalapi.DomainHash, blockHeader *externalapi.DomainBlockHeader) {
	bhs.staging[*blockHash] = blockHeader.Clone()
}

func (bhs *blockHeaderStore) IsStaged() bool {
	return len(bhs.staging) != 0
}

func (bhs *blockHeaderStore) Discard() {
	bhs.staging = make(map[externalapi.DomainHash]*externalapi.DomainBlockHeader)
}

func (bhs *blockHeaderStore) Commit(dbTx model.DBTransaction) error {
	for hash, header := range bhs.staging {
		headerBytes, err := binaryserialization.SerializeHeader(header)
		if err != nil {
			return err
		}
		hash := hash
		err = dbTx.Put(bhs.hashAsKey(&hash), headerBytes)
		if err != nil {
			return err
		}
		bhs.cache.Add(&hash, header)
	}

	err := bhs.commitCount(dbTx)
	if err != nil {
		return err
	}

	bhs.Discard()
	return nil
}

// BlockHeader gets the block header associated with the given blockHash
func (bhs *blockHeaderStore) BlockHeader(dbContext model.DBReader, blockHash *externalapi.DomainHash) (*externalapi.DomainBlockHeader, error) {
	if header, ok := bhs.staging[*blockHash]; ok {
		return header.Clone(), nil
	}

	if header, ok := bhs.cache.Get(blockHash); ok {
		return header.(*externalapi.DomainBlockHeader).Clone(), nil
	}

	headerBytes, err := dbContext.Get(bhs.hashAsKey(blockHash))
	if err != nil {
		return nil, err
	}

	header, err := binaryserialization.DeserializeHeader(headerBytes)
	if err != nil {
		return nil, err
	}
	bhs.cache.Add(blockHash, header)
	return header.Clone(), nil
}

// HasBlockHeader returns whether a block header with a given hash exists in the store.
func (bhs *blockHeaderStore) HasBlockHeader(dbContext model.DBReader, blockHash *externalapi.DomainHash) (bool, error) {
	if _, ok := bhs.staging[*blockHash]; ok {
		return true, nil
	}

	if bhs.cache.Has(blockHash) {
		return true, nil
	}

	exists, err := dbContext.Has(bhs.hashAsKey(blockHash))
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (bhs *blockHeaderStore) hashAsKey(hash *externalapi.DomainHash) *database.Key {
	return bucket.Key(hash.ByteSlice())
}

func (bhs *blockHeaderStore) Count() uint64 {
	return bhs.count + uint64(len(bhs.staging))
}

func (bhs *blockHeaderStore) commitCount(dbTx model.DBTransaction) error {
	count := bhs.Count()
	err := dbTx.Put(countKey, binaryserialization.SerializeUint64(count))
	if err != nil {
		return err
	}
	bhs.count = count
	return nil
}
