package chainmanager

import (
	"github.com/junomoneta/junod/domain/consensus/model"
	"github.com/junomoneta/junod/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// chainView is an immutable snapshot of the chain ending at tip. Nodes
// above the snapshot's tip, including later reorgs, are invisible to it.
type chainView struct {
	tip *blockNode
}

func newChainView(tip *blockNode) model.ChainView {
	return &chainView{tip: tip}
}

// TipHash returns the hash of the view's tip block
func (cv *chainView) TipHash() *externalapi.DomainHash {
	return cv.tip.hash
}

// TipHeight returns the height of the view's tip block
func (cv *chainView) TipHeight() uint64 {
	return cv.tip.height()
}

// BlockHashByHeight returns the hash of the block at the given height in
// this view
func (cv *chainView) BlockHashByHeight(height uint64) (*externalapi.DomainHash, error) {
	node, err := cv.nodeByHeight(height)
	if err != nil {
		return nil, err
	}
	return node.hash, nil
}

// HeaderByHeight returns the header of the block at the given height in
// this view
func (cv *chainView) HeaderByHeight(height uint64) (*externalapi.DomainBlockHeader, error) {
	node, err := cv.nodeByHeight(height)
	if err != nil {
		return nil, err
	}
	return node.header.Clone(), nil
}

func (cv *chainView) nodeByHeight(height uint64) (*blockNode, error) {
	if height > cv.tip.height() {
		return nil, errors.Wrapf(model.ErrBlockNotInChainView, "height %d is above the view's tip height %d",
			height, cv.tip.height())
	}
	return cv.tip.selectedAncestor(height), nil
}
