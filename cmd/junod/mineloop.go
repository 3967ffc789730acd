package main

import (
	"github.com/junomoneta/junod/domain/consensus"
	"github.com/junomoneta/junod/domain/consensus/utils/consensushashing"
	"github.com/junomoneta/junod/domain/miningmanager"
)

const logBlocksInterval = 100

// mineLoop mines blocks on top of the active chain until numberOfBlocks
// blocks were mined, or indefinitely when numberOfBlocks is 0, or until
// the interrupt channel closes.
func mineLoop(miningManager miningmanager.MiningManager, tc consensus.Consensus,
	numberOfBlocks uint64, interrupt <-chan struct{}) error {

	for blocksMined := uint64(0); numberOfBlocks == 0 || blocksMined < numberOfBlocks; blocksMined++ {
		select {
		case <-interrupt:
			return nil
		default:
		}

		header, err := miningManager.MineBlock()
		if err != nil {
			return err
		}
		_, err = tc.ValidateAndInsertBlockHeader(header)
		if err != nil {
			return err
		}

		blockHash := consensushashing.HeaderHash(header)
		if header.Height%logBlocksInterval == 0 {
			log.Infof("Mined block %s at height %d in epoch %d",
				blockHash, header.Height, tc.EpochIndex(header.Height))
		} else {
			log.Debugf("Mined block %s at height %d", blockHash, header.Height)
		}
	}
	return nil
}
