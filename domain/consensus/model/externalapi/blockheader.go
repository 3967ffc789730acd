package externalapi

// DomainBlockHeader represents the header part of a Juno block
type DomainBlockHeader struct {
	Version            int32
	ParentHash         *DomainHash // nil for the genesis block
	Height             uint64
	HashMerkleRoot     DomainHash
	TimeInMilliseconds int64
	Bits               uint32
	Nonce              uint64

	// PoWHash is the output of the epoch-seeded proof-of-work function
	// over this header's proof-of-work input. It is not part of the
	// block hash; validators recompute it and compare.
	PoWHash DomainHash
}

// Clone returns a clone of DomainBlockHeader
func (header *DomainBlockHeader) Clone() *DomainBlockHeader {
	return &DomainBlockHeader{
		Version:            header.Version,
		ParentHash:         header.ParentHash,
		Height:             header.Height,
		HashMerkleRoot:     header.HashMerkleRoot,
		TimeInMilliseconds: header.TimeInMilliseconds,
		Bits:               header.Bits,
		Nonce:              header.Nonce,
		PoWHash:            header.PoWHash,
	}
}

// If this doesn't compile, it means the type definition has been changed, so it's
// an indication to update Equal and Clone accordingly.
var _ = &DomainBlockHeader{0, &DomainHash{}, 0, DomainHash{}, 0, 0, 0, DomainHash{}}

// Equal returns whether header equals to other
func (header *DomainBlockHeader) Equal(other *DomainBlockHeader) bool {
	if header == nil || other == nil {
		return header == other
	}

	if header.Version != other.Version {
		return false
	}

	if !header.ParentHash.Equal(other.ParentHash) {
		return false
	}

	if header.Height != other.Height {
		return false
	}

	if !header.HashMerkleRoot.Equal(&other.HashMerkleRoot) {
		return false
	}

	if header.TimeInMilliseconds != other.TimeInMilliseconds {
		return false
	}

	if header.Bits != other.Bits {
		return false
	}

	if header.Nonce != other.Nonce {
		return false
	}

	if !header.PoWHash.Equal(&other.PoWHash) {
		return false
	}

	return true
}
