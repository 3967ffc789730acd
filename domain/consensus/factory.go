package consensus

import (
	consensusdatabase "github.com/junomoneta/junod/domain/consensus/database"
	"github.com/junomoneta/junod/domain/consensus/datastructures/blockheaderstore"
	"github.com/junomoneta/junod/domain/consensus/datastructures/chainstore"
	"github.com/junomoneta/junod/domain/consensus/processes/blockvalidator"
	"github.com/junomoneta/junod/domain/consensus/processes/chainmanager"
	"github.com/junomoneta/junod/domain/consensus/processes/datasetmanager"
	"github.com/junomoneta/junod/domain/consensus/processes/epochmanager"
	"github.com/junomoneta/junod/infrastructure/db/database"
)

// Factory instantiates new Consensuses
type Factory interface {
	NewConsensus(config *Config, db database.Database) (Consensus, error)
}

type factory struct{}

// NewFactory creates a new Consensus factory
func NewFactory() Factory {
	return &factory{}
}

// NewConsensus instantiates a new Consensus
func (f *factory) NewConsensus(config *Config, db database.Database) (Consensus, error) {
	err := config.Params.Validate()
	if err != nil {
		return nil, err
	}

	databaseContext := consensusdatabase.New(db)

	// Data Structures
	blockHeaderStore, err := blockheaderstore.New(databaseContext, config.headerCacheSize())
	if err != nil {
		return nil, err
	}
	chainStore := chainstore.New(config.chainCacheSize())

	// Processes
	epochManager := epochmanager.New(
		config.GenesisSeed,
		config.EpochLength,
		config.SeedLag)
	datasetManager := datasetmanager.New()
	blockValidator := blockvalidator.New(
		config.PowMax,
		config.PowMaxBits,
		config.SkipProofOfWork,
		epochManager,
		datasetManager)
	chainManager, err := chainmanager.New(
		databaseContext,
		blockHeaderStore,
		chainStore,
		epochManager,
		datasetManager,
		blockValidator,
		config.GenesisHash,
		config.GenesisBlockHeader)
	if err != nil {
		datasetManager.Close()
		return nil, err
	}

	return &consensus{
		databaseContext: databaseContext,

		epochManager:   epochManager,
		datasetManager: datasetManager,
		blockValidator: blockValidator,
		chainManager:   chainManager,

		blockHeaderStore: blockHeaderStore,
		chainStore:       chainStore,
	}, nil
}
