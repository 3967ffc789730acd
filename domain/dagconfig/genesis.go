// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dagconfig

import (
	"github.com/junomoneta/junod/domain/consensus/model/externalapi"
	"github.com/junomoneta/junod/domain/consensus/utils/consensushashing"
	"github.com/junomoneta/junod/util/difficulty"
)

// genesisSeed is the proof-of-work seed of epoch 0. It is shared by all
// networks: the seed of any later epoch is a block hash, so a fixed
// non-hash constant here cannot collide with one.
var genesisSeed = externalapi.NewDomainSeedFromByteArray(&[externalapi.DomainSeedSize]byte{
	0x08, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
})

// genesisMerkleRoot is the hash of the first transaction in the genesis
// block for the main network.
var genesisMerkleRoot = *externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{
	0x4a, 0x5e, 0x1e, 0x4b, 0xaa, 0xb8, 0x9f, 0x3a,
	0x32, 0x51, 0x8a, 0x88, 0xc3, 0x1b, 0xc8, 0x7f,
	0x61, 0x8f, 0x76, 0x67, 0x3e, 0x2c, 0xc7, 0x7a,
	0xb2, 0x12, 0x7b, 0x7a, 0xfd, 0xed, 0xa3, 0x3b,
})

// genesisBlockHeader defines the header of the genesis block for the main
// network. The genesis block carries no proof of work; its declared
// proof-of-work hash is all zeroes and is never validated.
var genesisBlockHeader = &externalapi.DomainBlockHeader{
	Version:            1,
	ParentHash:         nil,
	Height:             0,
	HashMerkleRoot:     genesisMerkleRoot,
	TimeInMilliseconds: 0x17d2e4a8a00, // 2021-07-12 00:00:00 +0000 UTC
	Bits:               difficulty.BigToCompact(mainPowMax),
	Nonce:              0x1,
	PoWHash:            *externalapi.NewZeroHash(),
}

var genesisHash = consensushashing.HeaderHash(genesisBlockHeader)

// simnetGenesisBlockHeader defines the header of the genesis block for the
// simulation test network.
var simnetGenesisBlockHeader = &externalapi.DomainBlockHeader{
	Version:            1,
	ParentHash:         nil,
	Height:             0,
	HashMerkleRoot:     genesisMerkleRoot,
	TimeInMilliseconds: 0x17d2e4a8a00,
	Bits:               difficulty.BigToCompact(simnetPowMax),
	Nonce:              0x1,
	PoWHash:            *externalapi.NewZeroHash(),
}

var simnetGenesisHash = consensushashing.HeaderHash(simnetGenesisBlockHeader)
