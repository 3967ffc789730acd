// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dagconfig

import (
	"math/big"
	"time"

	"github.com/pkg/errors"

	"github.com/junomoneta/junod/domain/consensus/model/externalapi"
	"github.com/junomoneta/junod/util/difficulty"
)

// These variables are the proof-of-work limit parameters for each default
// network.
var (
	// bigOne is 1 represented as a big.Int. It is defined here to avoid
	// the overhead of creating it multiple times.
	bigOne = big.NewInt(1)

	// mainPowMax is the highest proof of work value a Juno block can
	// have for the main network. It is the value 2^239 - 1.
	mainPowMax = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 239), bigOne)

	// simnetPowMax is the highest proof of work value a Juno block
	// can have for the simulation test network. It is the value 2^255 - 1.
	simnetPowMax = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 255), bigOne)
)

const (
	defaultEpochLength        = 1536
	defaultSeedLag            = 96
	defaultTargetTimePerBlock = 2 * time.Minute
)

// ErrInvalidParams signifies that the network parameters are internally
// inconsistent.
var ErrInvalidParams = errors.New("invalid network parameters")

// Params defines a Juno network by its parameters. These parameters may be
// used by Juno applications to differentiate networks as well as addresses
// and keys for one network from those intended for use on another network.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// GenesisBlockHeader defines the first block of the chain.
	GenesisBlockHeader *externalapi.DomainBlockHeader

	// GenesisHash is the starting block hash.
	GenesisHash *externalapi.DomainHash

	// GenesisSeed is the proof-of-work seed of epoch 0. Every later
	// epoch derives its seed from a block hash; epoch 0 predates any
	// block, so its seed is a network constant.
	GenesisSeed *externalapi.DomainSeed

	// PowMax defines the highest allowed proof of work value for a block
	// as a uint256.
	PowMax *big.Int

	// PowMaxBits defines the highest allowed proof of work value for a
	// block in compact form.
	PowMaxBits uint32

	// EpochLength is the number of blocks in a proof-of-work epoch.
	EpochLength uint64

	// SeedLag is the number of blocks between an epoch's seed source
	// block and the epoch's first block. The lag gives miners and
	// validators time to build the next epoch's dataset before it
	// becomes active.
	SeedLag uint64

	// TargetTimePerBlock is the desired time between blocks.
	TargetTimePerBlock time.Duration
}

// Validate checks the parameters for internal consistency. The epoch
// schedule is only well defined when the seed lag is shorter than the
// epoch itself.
func (p *Params) Validate() error {
	if p.EpochLength == 0 {
		return errors.Wrapf(ErrInvalidParams, "network %s: epoch length must be positive", p.Name)
	}
	if p.SeedLag == 0 || p.SeedLag >= p.EpochLength {
		return errors.Wrapf(ErrInvalidParams,
			"network %s: seed lag %d must be positive and shorter than the epoch length %d",
			p.Name, p.SeedLag, p.EpochLength)
	}
	if p.PowMax == nil || p.PowMax.Sign() <= 0 {
		return errors.Wrapf(ErrInvalidParams, "network %s: PowMax must be positive", p.Name)
	}
	return nil
}

// MainnetParams defines the network parameters for the main Juno network.
var MainnetParams = Params{
	Name: "juno-mainnet",

	GenesisBlockHeader: genesisBlockHeader,
	GenesisHash:        genesisHash,
	GenesisSeed:        genesisSeed,

	PowMax:     mainPowMax,
	PowMaxBits: difficulty.BigToCompact(mainPowMax),

	EpochLength:        defaultEpochLength,
	SeedLag:            defaultSeedLag,
	TargetTimePerBlock: defaultTargetTimePerBlock,
}

// SimnetParams defines the network parameters for the simulation test
// network. This network is similar to the main network except it is
// intended for private use within a group of individuals doing simulation
// testing, so its difficulty floor is trivial.
var SimnetParams = Params{
	Name: "juno-simnet",

	GenesisBlockHeader: simnetGenesisBlockHeader,
	GenesisHash:        simnetGenesisHash,
	GenesisSeed:        genesisSeed,

	PowMax:     simnetPowMax,
	PowMaxBits: difficulty.BigToCompact(simnetPowMax),

	EpochLength:        defaultEpochLength,
	SeedLag:            defaultSeedLag,
	TargetTimePerBlock: time.Second,
}
