package model

import "github.com/junomoneta/junod/domain/consensus/model/externalapi"

// BlockHeaderStore represents a store of block headers
type BlockHeaderStore interface {
	Stage(blockHash *externalapi.DomainHash, blockHeader *externalapi.DomainBlockHeader)
	IsStaged() bool
	Discard()
	Commit(dbTx DBTransaction) error
	BlockHeader(dbContext DBReader, blockHash *externalapi.DomainHash) (*externalapi.DomainBlockHeader, error)
	HasBlockHeader(dbContext DBReader, blockHash *externalapi.DomainHash) (bool, error)
	Count() uint64
}
