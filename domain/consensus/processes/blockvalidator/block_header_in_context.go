package blockvalidator

import (
	"github.com/junomoneta/junod/domain/consensus/model"
	"github.com/junomoneta/junod/domain/consensus/model/externalapi"
	"github.com/junomoneta/junod/domain/consensus/ruleerrors"
	"github.com/pkg/errors"
)

// ValidateHeaderInContext validates the given header against the chain
// it extends, as captured by the given chain view. The view's tip must
// be the header's parent.
func (v *blockValidator) ValidateHeaderInContext(chainView model.ChainView, header *externalapi.DomainBlockHeader) error {
	err := v.checkParent(chainView, header)
	if err != nil {
		return err
	}

	err = v.checkBlockHeight(chainView, header)
	if err != nil {
		return err
	}

	err = v.checkDifficulty(header)
	if err != nil {
		return err
	}

	return v.ValidatePoW(chainView, header)
}

func (v *blockValidator) checkParent(chainView model.ChainView, header *externalapi.DomainBlockHeader) error {
	if header.ParentHash == nil {
		return errors.Wrapf(ruleerrors.ErrMissingParent, "only the genesis block may have no parent")
	}
	if !header.ParentHash.Equal(chainView.TipHash()) {
		return errors.Wrapf(ruleerrors.ErrMissingParent, "block parent %s is not the tip of the "+
			"chain being extended (%s)", header.ParentHash, chainView.TipHash())
	}
	return nil
}

func (v *blockValidator) checkBlockHeight(chainView model.ChainView, header *externalapi.DomainBlockHeader) error {
	expectedHeight := chainView.TipHeight() + 1
	if header.Height != expectedHeight {
		return errors.Wrapf(ruleerrors.ErrWrongBlockHeight, "block height of %d is not the expected "+
			"height of %d", header.Height, expectedHeight)
	}
	return nil
}

// checkDifficulty ensures the block header bits match the difficulty
// required at the block's position in the chain.
func (v *blockValidator) checkDifficulty(header *externalapi.DomainBlockHeader) error {
	if header.Bits != v.powMaxBits {
		return errors.Wrapf(ruleerrors.ErrUnexpectedDifficulty, "block difficulty of %08x is not the "+
			"expected value of %08x", header.Bits, v.powMaxBits)
	}
	return nil
}
