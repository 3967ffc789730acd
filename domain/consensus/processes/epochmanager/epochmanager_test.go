package epochmanager

import (
	"testing"

	"github.com/junomoneta/junod/domain/consensus/model"
	"github.com/junomoneta/junod/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

const (
	testEpochLength = 1536
	testSeedLag     = 96
)

var testGenesisSeed = externalapi.NewDomainSeedFromByteArray(&[externalapi.DomainSeedSize]byte{0x08})

// fakeChainView is a chain view over synthetic hashes: the block hash at
// height h is h encoded into the first bytes of the hash.
type fakeChainView struct {
	tipHeight uint64
}

func hashForHeight(height uint64) *externalapi.DomainHash {
	var hashBytes [externalapi.DomainHashSize]byte
	for i := 0; i < 8; i++ {
		hashBytes[i] = byte(height >> (8 * i))
	}
	return externalapi.NewDomainHashFromByteArray(&hashBytes)
}

func (f *fakeChainView) TipHash() *externalapi.DomainHash {
	return hashForHeight(f.tipHeight)
}

func (f *fakeChainView) TipHeight() uint64 {
	return f.tipHeight
}

func (f *fakeChainView) BlockHashByHeight(height uint64) (*externalapi.DomainHash, error) {
	if height > f.tipHeight {
		return nil, errors.Wrapf(model.ErrBlockNotInChainView, "height %d is above tip %d", height, f.tipHeight)
	}
	return hashForHeight(height), nil
}

func (f *fakeChainView) HeaderByHeight(height uint64) (*externalapi.DomainBlockHeader, error) {
	panic("unimplemented")
}

func TestEpochIndex(t *testing.T) {
	em := New(testGenesisSeed, testEpochLength, testSeedLag)

	tests := []struct {
		height uint64
		epoch  uint64
	}{
		{0, 0},
		{1, 0},
		{testSeedLag - 1, 0},
		{testSeedLag, 0},
		{testEpochLength - 1, 0},
		{testEpochLength, 0},
		{testEpochLength + testSeedLag - 1, 0},
		{testEpochLength + testSeedLag, 1},
		{2*testEpochLength + testSeedLag - 1, 1},
		{2*testEpochLength + testSeedLag, 2},
		{10*testEpochLength + testSeedLag, 10},
		{10*testEpochLength + testSeedLag - 1, 9},
	}

	for _, test := range tests {
		if got := em.EpochIndex(test.height); got != test.epoch {
			t.Errorf("EpochIndex(%d): got %d, want %d", test.height, got, test.epoch)
		}
	}
}

func TestEpochStartHeight(t *testing.T) {
	em := New(testGenesisSeed, testEpochLength, testSeedLag)

	tests := []struct {
		epoch uint64
		start uint64
	}{
		{0, 0},
		{1, testEpochLength + testSeedLag},
		{2, 2*testEpochLength + testSeedLag},
	}

	for _, test := range tests {
		if got := em.EpochStartHeight(test.epoch); got != test.start {
			t.Errorf("EpochStartHeight(%d): got %d, want %d", test.epoch, got, test.start)
		}
	}

	// Every height must fall inside the epoch whose start precedes it.
	for _, epoch := range []uint64{1, 2, 17} {
		start := em.EpochStartHeight(epoch)
		if em.EpochIndex(start) != epoch {
			t.Errorf("EpochIndex(EpochStartHeight(%d)) = %d", epoch, em.EpochIndex(start))
		}
		if em.EpochIndex(start-1) != epoch-1 {
			t.Errorf("EpochIndex(EpochStartHeight(%d)-1) = %d", epoch, em.EpochIndex(start-1))
		}
	}
}

func TestSeedSourceHeight(t *testing.T) {
	em := New(testGenesisSeed, testEpochLength, testSeedLag)

	if _, exists := em.SeedSourceHeight(0); exists {
		t.Errorf("SeedSourceHeight(0): epoch 0 should not have a seed source block")
	}

	tests := []struct {
		epoch  uint64
		source uint64
	}{
		{1, testEpochLength},
		{2, 2 * testEpochLength},
		{10, 10 * testEpochLength},
	}

	for _, test := range tests {
		got, exists := em.SeedSourceHeight(test.epoch)
		if !exists {
			t.Errorf("SeedSourceHeight(%d): expected a seed source block", test.epoch)
			continue
		}
		if got != test.source {
			t.Errorf("SeedSourceHeight(%d): got %d, want %d", test.epoch, got, test.source)
		}
	}
}

func TestSeedByHeight(t *testing.T) {
	em := New(testGenesisSeed, testEpochLength, testSeedLag)
	chainView := &fakeChainView{tipHeight: 100 * testEpochLength}

	// Epoch 0 heights resolve to the genesis seed.
	for _, height := range []uint64{0, 1, testEpochLength + testSeedLag - 1} {
		seed, err := em.SeedByHeight(chainView, height)
		if err != nil {
			t.Fatalf("SeedByHeight(%d): %+v", height, err)
		}
		if !seed.Equal(testGenesisSeed) {
			t.Errorf("SeedByHeight(%d): got %s, want the genesis seed", height, seed)
		}
	}

	// Later epochs resolve to the hash of the seed source block.
	tests := []struct {
		height       uint64
		sourceHeight uint64
	}{
		{testEpochLength + testSeedLag, testEpochLength},
		{2*testEpochLength + testSeedLag - 1, testEpochLength},
		{2*testEpochLength + testSeedLag, 2 * testEpochLength},
		{42*testEpochLength + testSeedLag + 7, 42 * testEpochLength},
	}

	for _, test := range tests {
		seed, err := em.SeedByHeight(chainView, test.height)
		if err != nil {
			t.Fatalf("SeedByHeight(%d): %+v", test.height, err)
		}
		want := externalapi.NewDomainSeedFromHash(hashForHeight(test.sourceHeight))
		if !seed.Equal(want) {
			t.Errorf("SeedByHeight(%d): got %s, want %s", test.height, seed, want)
		}
	}
}

func TestSeedByHeightAboveTip(t *testing.T) {
	em := New(testGenesisSeed, testEpochLength, testSeedLag)
	chainView := &fakeChainView{tipHeight: testEpochLength - 1}

	_, err := em.SeedByHeight(chainView, testEpochLength+testSeedLag)
	if !errors.Is(err, model.ErrBlockNotInChainView) {
		t.Fatalf("expected ErrBlockNotInChainView, got: %+v", err)
	}
}

func TestNextEpochSeed(t *testing.T) {
	em := New(testGenesisSeed, testEpochLength, testSeedLag)

	// The tip is one block short of the next epoch's seed source.
	chainView := &fakeChainView{tipHeight: testEpochLength - 1}
	_, exists, err := em.NextEpochSeed(chainView, chainView.tipHeight)
	if err != nil {
		t.Fatalf("NextEpochSeed: %+v", err)
	}
	if exists {
		t.Fatalf("NextEpochSeed: seed source block is not in the view, expected no seed")
	}

	// Once the seed source block is in the view, the seed is its hash.
	chainView = &fakeChainView{tipHeight: testEpochLength}
	seed, exists, err := em.NextEpochSeed(chainView, chainView.tipHeight)
	if err != nil {
		t.Fatalf("NextEpochSeed: %+v", err)
	}
	if !exists {
		t.Fatalf("NextEpochSeed: expected a seed once the source block is in the view")
	}
	want := externalapi.NewDomainSeedFromHash(hashForHeight(testEpochLength))
	if !seed.Equal(want) {
		t.Errorf("NextEpochSeed: got %s, want %s", seed, want)
	}
}
