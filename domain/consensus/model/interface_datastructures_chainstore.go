package model

import "github.com/junomoneta/junod/domain/consensus/model/externalapi"

// ChainStore represents a store of the active chain: the hash at each
// chain height and the tip hash.
type ChainStore interface {
	StageTip(tipHash *externalapi.DomainHash)
	StageChainBlock(height uint64, blockHash *externalapi.DomainHash)
	StageChainTruncate(fromHeight uint64)
	IsStaged() bool
	Discard()
	Commit(dbTx DBTransaction) error
	Tip(dbContext DBReader) (*externalapi.DomainHash, error)
	HasTip(dbContext DBReader) (bool, error)
	BlockHashByHeight(dbContext DBReader, height uint64) (*externalapi.DomainHash, error)
}
