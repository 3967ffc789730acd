package model

import "github.com/junomoneta/junod/domain/consensus/model/externalapi"

// BlockValidator validates block headers, including their epoch-seeded
// proof of work.
type BlockValidator interface {
	// ValidateHeaderInContext validates the given header against the
	// chain it extends, as captured by the given chain view. The view's
	// tip must be the header's parent
	ValidateHeaderInContext(chainView ChainView, header *externalapi.DomainBlockHeader) error

	// ValidatePoW checks the header's proof of work against the seed
	// resolved for its height in the given chain view
	ValidatePoW(chainView ChainView, header *externalapi.DomainBlockHeader) error
}
