package model

import "github.com/junomoneta/junod/domain/consensus/model/externalapi"

// ChainView is an immutable snapshot of a single chain of headers, from
// some tip down to genesis. Seed resolution always goes through a chain
// view so that concurrent chain mutations, including reorgs, cannot be
// observed mid-resolution.
type ChainView interface {
	// TipHash returns the hash of the view's tip block
	TipHash() *externalapi.DomainHash

	// TipHeight returns the height of the view's tip block
	TipHeight() uint64

	// BlockHashByHeight returns the hash of the block at the given height
	// in this view. Returns ErrBlockNotInChainView if the height is above
	// the view's tip
	BlockHashByHeight(height uint64) (*externalapi.DomainHash, error)

	// HeaderByHeight returns the header of the block at the given height
	// in this view. Returns ErrBlockNotInChainView if the height is above
	// the view's tip
	HeaderByHeight(height uint64) (*externalapi.DomainBlockHeader, error)
}
