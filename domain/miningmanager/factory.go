package miningmanager

import (
	"math/rand"

	"github.com/junomoneta/junod/domain/consensus"
)

// Factory instantiates new MiningManagers
type Factory interface {
	NewMiningManager(consensus consensus.Consensus, randomSeed int64) MiningManager
}

type factory struct{}

func (f *factory) NewMiningManager(consensus consensus.Consensus, randomSeed int64) MiningManager {
	return &miningManager{
		consensus: consensus,
		random:    rand.New(rand.NewSource(randomSeed)),
	}
}

// NewFactory creates a new MiningManager factory
func NewFactory() Factory {
	return &factory{}
}
