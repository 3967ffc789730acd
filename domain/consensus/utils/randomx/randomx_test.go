package randomx

import (
	"testing"

	"github.com/junomoneta/junod/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

func seedForTest(firstByte byte) *externalapi.DomainSeed {
	var seedBytes [externalapi.DomainSeedSize]byte
	seedBytes[0] = firstByte
	return externalapi.NewDomainSeedFromByteArray(&seedBytes)
}

func TestBuildDatasetDeterminism(t *testing.T) {
	first, err := BuildDataset(seedForTest(0x01), nil)
	if err != nil {
		t.Fatalf("BuildDataset: %+v", err)
	}
	second, err := BuildDataset(seedForTest(0x01), nil)
	if err != nil {
		t.Fatalf("BuildDataset: %+v", err)
	}

	input := []byte("test input")
	if !first.PoWHash(input).Equal(second.PoWHash(input)) {
		t.Fatalf("two datasets built from the same seed produced different PoW hashes")
	}
}

func TestPoWHashDependsOnSeed(t *testing.T) {
	first, err := BuildDataset(seedForTest(0x01), nil)
	if err != nil {
		t.Fatalf("BuildDataset: %+v", err)
	}
	second, err := BuildDataset(seedForTest(0x02), nil)
	if err != nil {
		t.Fatalf("BuildDataset: %+v", err)
	}

	input := []byte("test input")
	if first.PoWHash(input).Equal(second.PoWHash(input)) {
		t.Fatalf("datasets built from different seeds produced the same PoW hash")
	}
}

func TestPoWHashDependsOnInput(t *testing.T) {
	dataset, err := BuildDataset(seedForTest(0x01), nil)
	if err != nil {
		t.Fatalf("BuildDataset: %+v", err)
	}

	if dataset.PoWHash([]byte("input a")).Equal(dataset.PoWHash([]byte("input b"))) {
		t.Fatalf("different inputs produced the same PoW hash")
	}
}

func TestBuildDatasetCancellation(t *testing.T) {
	cancel := make(chan struct{})
	close(cancel)

	_, err := BuildDataset(seedForTest(0x01), cancel)
	if !errors.Is(err, ErrBuildCancelled) {
		t.Fatalf("expected ErrBuildCancelled, got: %+v", err)
	}
}
