package model

import "github.com/junomoneta/junod/domain/consensus/model/externalapi"

// ChainManager maintains the block index and the active chain, applies
// fork choice, and keeps the dataset cache aligned with the active tip.
type ChainManager interface {
	// AddHeader validates the given header and inserts it into the
	// block index, possibly extending or reorganizing the active chain
	AddHeader(header *externalapi.DomainBlockHeader) (*externalapi.BlockInsertionResult, error)

	// ChainView returns an immutable view of the current active chain
	ChainView() ChainView

	// BlockHeaderByHash returns the header of the block with the given
	// hash, whether or not it is in the active chain
	BlockHeaderByHash(blockHash *externalapi.DomainHash) (*externalapi.DomainBlockHeader, error)

	// GetBlockInfo returns information about the block with the given
	// hash. A non-existing block returns BlockInfo with Exists false
	GetBlockInfo(blockHash *externalapi.DomainHash) (*externalapi.BlockInfo, error)
}
