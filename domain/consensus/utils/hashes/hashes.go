package hashes

import (
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

const (
	blockDomain       = "BlockHash"
	proofOfWorkDomain = "ProofOfWorkHash"
	datasetItemDomain = "DatasetItemHash"
)

// NewBlockHashWriter Returns a new HashWriter used for block hashes
func NewBlockHashWriter() HashWriter {
	blake, err := blake2b.New256([]byte(blockDomain))
	if err != nil {
		panic(errors.Wrapf(err, "this should never happen. %s is less than 64 bytes", blockDomain))
	}
	return HashWriter{blake}
}

// NewPoWHashWriter Returns a new HashWriter used for the proof-of-work
// mixing function
func NewPoWHashWriter() HashWriter {
	blake, err := blake2b.New256([]byte(proofOfWorkDomain))
	if err != nil {
		panic(errors.Wrapf(err, "this should never happen. %s is less than 64 bytes", proofOfWorkDomain))
	}
	return HashWriter{blake}
}

// NewDatasetItemHashWriter Returns a new HashWriter used for deriving
// validation dataset items from a seed
func NewDatasetItemHashWriter() HashWriter {
	blake, err := blake2b.New256([]byte(datasetItemDomain))
	if err != nil {
		panic(errors.Wrapf(err, "this should never happen. %s is less than 64 bytes", datasetItemDomain))
	}
	return HashWriter{blake}
}
