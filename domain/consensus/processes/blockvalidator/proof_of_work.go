package blockvalidator

import (
	"github.com/junomoneta/junod/domain/consensus/model"
	"github.com/junomoneta/junod/domain/consensus/model/externalapi"
	"github.com/junomoneta/junod/domain/consensus/ruleerrors"
	"github.com/junomoneta/junod/domain/consensus/utils/consensushashing"
	"github.com/junomoneta/junod/domain/consensus/utils/hashes"
	"github.com/junomoneta/junod/util/difficulty"
	"github.com/pkg/errors"
)

// ValidatePoW ensures the block header bits which indicate the target
// difficulty are in the valid range, and that the epoch-seeded
// proof-of-work hash matches both the header's declared hash and the
// target difficulty.
//
// A failure to build the epoch's dataset is returned as-is, not as a
// rule error: it says nothing about the block's validity, and
// validation may be retried.
func (v *blockValidator) ValidatePoW(chainView model.ChainView, header *externalapi.DomainBlockHeader) error {
	// The target difficulty must be larger than zero.
	target := difficulty.CompactToBig(header.Bits)
	if target.Sign() <= 0 {
		return errors.Wrapf(ruleerrors.ErrNegativeTarget, "block target difficulty of %064x is too low",
			target)
	}

	// The target difficulty must be less than the maximum allowed.
	if target.Cmp(v.powMax) > 0 {
		return errors.Wrapf(ruleerrors.ErrTargetTooHigh, "block target difficulty of %064x is "+
			"higher than max of %064x", target, v.powMax)
	}

	if v.skipPoW {
		return nil
	}

	seed, err := v.epochManager.SeedByHeight(chainView, header.Height)
	if err != nil {
		if errors.Is(err, model.ErrBlockNotInChainView) {
			return errors.Wrapf(ruleerrors.ErrSeedUnavailable, "the seed source block for the epoch of "+
				"height %d is not in the chain the block extends", header.Height)
		}
		return err
	}

	dataset, err := v.datasetManager.Dataset(seed)
	if err != nil {
		return err
	}
	defer dataset.Release()

	powHash := dataset.PoWHash(consensushashing.SerializeHeaderForPoW(header))
	if !powHash.Equal(&header.PoWHash) {
		return errors.Wrapf(ruleerrors.ErrPoWHashMismatch, "the declared proof-of-work hash %s does "+
			"not match the computed hash %s", &header.PoWHash, powHash)
	}

	// The proof-of-work hash must be less than the claimed target.
	hashNum := hashes.ToBig(powHash)
	if hashNum.Cmp(target) > 0 {
		return errors.Wrapf(ruleerrors.ErrInvalidPoW, "block proof-of-work hash of %064x is higher than "+
			"expected max of %064x", hashNum, target)
	}

	return nil
}
