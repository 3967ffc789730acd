package consensus

import (
	"github.com/junomoneta/junod/domain/consensus/model"
	"github.com/junomoneta/junod/domain/consensus/model/externalapi"
)

// Consensus maintains the current core state of the node
type Consensus interface {
	// ValidateAndInsertBlockHeader validates the given block header
	// and, if valid, inserts it into the block index, possibly changing
	// the active chain
	ValidateAndInsertBlockHeader(header *externalapi.DomainBlockHeader) (*externalapi.BlockInsertionResult, error)

	// GetBlockHeader returns the header of the block with the given
	// hash, whether or not it is in the active chain
	GetBlockHeader(blockHash *externalapi.DomainHash) (*externalapi.DomainBlockHeader, error)

	// GetBlockInfo returns information about the block with the given
	// hash. A non-existing block returns BlockInfo with Exists false
	GetBlockInfo(blockHash *externalapi.DomainHash) (*externalapi.BlockInfo, error)

	// TipHash returns the hash of the active chain's tip
	TipHash() *externalapi.DomainHash

	// TipHeight returns the height of the active chain's tip
	TipHeight() uint64

	// BlockHashByHeight returns the hash of the active chain block at
	// the given height
	BlockHashByHeight(height uint64) (*externalapi.DomainHash, error)

	// EpochIndex returns the index of the epoch the given height
	// belongs to
	EpochIndex(height uint64) uint64

	// NextBlockPoWParameters returns the parameters a miner needs to
	// build a block extending the current tip: the parent hash, the
	// next block's height, its required difficulty bits and the seed of
	// its epoch
	NextBlockPoWParameters() (parentHash *externalapi.DomainHash, height uint64, bits uint32, seed *externalapi.DomainSeed, err error)

	// Dataset returns a ready dataset for the given seed, building it
	// if necessary. The caller must Release the returned dataset
	Dataset(seed *externalapi.DomainSeed) (model.ValidationDataset, error)

	// Close releases the consensus resources, cancelling any in-flight
	// dataset builds
	Close()
}

type consensus struct {
	databaseContext model.DBManager

	epochManager   model.EpochManager
	datasetManager model.DatasetManager
	blockValidator model.BlockValidator
	chainManager   model.ChainManager

	blockHeaderStore model.BlockHeaderStore
	chainStore       model.ChainStore
}

func (s *consensus) ValidateAndInsertBlockHeader(header *externalapi.DomainBlockHeader) (*externalapi.BlockInsertionResult, error) {
	return s.chainManager.AddHeader(header)
}

func (s *consensus) GetBlockHeader(blockHash *externalapi.DomainHash) (*externalapi.DomainBlockHeader, error) {
	return s.chainManager.BlockHeaderByHash(blockHash)
}

func (s *consensus) GetBlockInfo(blockHash *externalapi.DomainHash) (*externalapi.BlockInfo, error) {
	return s.chainManager.GetBlockInfo(blockHash)
}

func (s *consensus) TipHash() *externalapi.DomainHash {
	return s.chainManager.ChainView().TipHash()
}

func (s *consensus) TipHeight() uint64 {
	return s.chainManager.ChainView().TipHeight()
}

func (s *consensus) BlockHashByHeight(height uint64) (*externalapi.DomainHash, error) {
	return s.chainManager.ChainView().BlockHashByHeight(height)
}

func (s *consensus) EpochIndex(height uint64) uint64 {
	return s.epochManager.EpochIndex(height)
}

func (s *consensus) NextBlockPoWParameters() (*externalapi.DomainHash, uint64, uint32, *externalapi.DomainSeed, error) {
	chainView := s.chainManager.ChainView()
	nextBlockHeight := chainView.TipHeight() + 1

	tipHeader, err := chainView.HeaderByHeight(chainView.TipHeight())
	if err != nil {
		return nil, 0, 0, nil, err
	}

	seed, err := s.epochManager.SeedByHeight(chainView, nextBlockHeight)
	if err != nil {
		return nil, 0, 0, nil, err
	}

	// Difficulty is fixed at the network floor.
	return chainView.TipHash(), nextBlockHeight, tipHeader.Bits, seed, nil
}

func (s *consensus) Dataset(seed *externalapi.DomainSeed) (model.ValidationDataset, error) {
	return s.datasetManager.Dataset(seed)
}

func (s *consensus) Close() {
	s.datasetManager.Close()
}
