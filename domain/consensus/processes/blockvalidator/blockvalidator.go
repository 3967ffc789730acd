package blockvalidator

import (
	"math/big"

	"github.com/junomoneta/junod/domain/consensus/model"
)

// blockValidator exposes a set of validation classes, after which
// it's possible to determine whether a block is valid
type blockValidator struct {
	powMax     *big.Int
	powMaxBits uint32
	skipPoW    bool

	epochManager   model.EpochManager
	datasetManager model.DatasetManager
}

// New instantiates a new BlockValidator
func New(powMax *big.Int,
	powMaxBits uint32,
	skipPoW bool,

	epochManager model.EpochManager,
	datasetManager model.DatasetManager) model.BlockValidator {

	return &blockValidator{
		powMax:     powMax,
		powMaxBits: powMaxBits,
		skipPoW:    skipPoW,

		epochManager:   epochManager,
		datasetManager: datasetManager,
	}
}
