package miningmanager

import (
	"math"
	"math/rand"
	"time"

	"github.com/junomoneta/junod/domain/consensus"
	"github.com/junomoneta/junod/domain/consensus/model/externalapi"
	"github.com/junomoneta/junod/domain/consensus/utils/consensushashing"
	"github.com/junomoneta/junod/domain/consensus/utils/hashes"
	"github.com/junomoneta/junod/util/difficulty"
	"github.com/pkg/errors"
)

// MiningManager mines blocks on top of the consensus' active chain tip
type MiningManager interface {
	// MineBlock mines a single block extending the current tip and
	// returns its header. The block is not inserted into the consensus
	MineBlock() (*externalapi.DomainBlockHeader, error)

	// GenerateBlocks mines and inserts the given amount of blocks, each
	// extending the previous one, and returns their hashes
	GenerateBlocks(amount uint64) ([]*externalapi.DomainHash, error)
}

type miningManager struct {
	consensus consensus.Consensus
	random    *rand.Rand
}

func (mm *miningManager) MineBlock() (*externalapi.DomainBlockHeader, error) {
	parentHash, height, bits, seed, err := mm.consensus.NextBlockPoWParameters()
	if err != nil {
		return nil, err
	}
	parentHeader, err := mm.consensus.GetBlockHeader(parentHash)
	if err != nil {
		return nil, err
	}

	timeInMilliseconds := time.Now().UnixNano() / int64(time.Millisecond)
	if timeInMilliseconds <= parentHeader.TimeInMilliseconds {
		timeInMilliseconds = parentHeader.TimeInMilliseconds + 1
	}

	header := &externalapi.DomainBlockHeader{
		Version:            1,
		ParentHash:         parentHash,
		Height:             height,
		HashMerkleRoot:     mm.transactionsMerkleRoot(),
		TimeInMilliseconds: timeInMilliseconds,
		Bits:               bits,
	}

	err = mm.solveHeader(header, seed)
	if err != nil {
		return nil, err
	}
	return header, nil
}

// transactionsMerkleRoot stands in for the merkle root of the block's
// transactions. Transaction processing lives outside the consensus, so
// mined blocks carry a random payload commitment.
func (mm *miningManager) transactionsMerkleRoot() externalapi.DomainHash {
	var rootBytes [externalapi.DomainHashSize]byte
	mm.random.Read(rootBytes[:])
	return *externalapi.NewDomainHashFromByteArray(&rootBytes)
}

func (mm *miningManager) solveHeader(header *externalapi.DomainBlockHeader,
	seed *externalapi.DomainSeed) error {

	dataset, err := mm.consensus.Dataset(seed)
	if err != nil {
		return err
	}
	defer dataset.Release()

	target := difficulty.CompactToBig(header.Bits)
	initialNonce := mm.random.Uint64()
	for i := uint64(0); ; i++ {
		header.Nonce = initialNonce + i
		powHash := dataset.PoWHash(consensushashing.SerializeHeaderForPoW(header))
		if hashes.ToBig(powHash).Cmp(target) <= 0 {
			header.PoWHash = *powHash
			return nil
		}
		if i == math.MaxUint64 {
			return errors.Errorf("exhausted the nonce space without solving block at height %d",
				header.Height)
		}
	}
}

func (mm *miningManager) GenerateBlocks(amount uint64) ([]*externalapi.DomainHash, error) {
	blockHashes := make([]*externalapi.DomainHash, 0, amount)
	for i := uint64(0); i < amount; i++ {
		header, err := mm.MineBlock()
		if err != nil {
			return blockHashes, err
		}
		_, err = mm.consensus.ValidateAndInsertBlockHeader(header)
		if err != nil {
			return blockHashes, errors.Wrapf(err, "the consensus rejected a block we just mined")
		}
		blockHashes = append(blockHashes, consensushashing.HeaderHash(header))
	}
	return blockHashes, nil
}
