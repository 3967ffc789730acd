package chainmanager

import (
	"math/big"

	"github.com/junomoneta/junod/domain/consensus/model/externalapi"
)

// blockNode is an in-memory representation of a block within the block
// index. Once inserted, a node is never mutated except for its children
// slice, so chain views may walk parent pointers without locking.
type blockNode struct {
	hash     *externalapi.DomainHash
	header   *externalapi.DomainBlockHeader
	parent   *blockNode
	children []*blockNode

	// workSum is the total amount of work in the chain up to and
	// including this node.
	workSum *big.Int
}

func newBlockNode(hash *externalapi.DomainHash, header *externalapi.DomainBlockHeader,
	parent *blockNode, work *big.Int) *blockNode {

	node := &blockNode{
		hash:    hash,
		header:  header,
		parent:  parent,
		workSum: work,
	}
	if parent != nil {
		node.workSum = new(big.Int).Add(parent.workSum, work)
		parent.children = append(parent.children, node)
	}
	return node
}

func (node *blockNode) height() uint64 {
	return node.header.Height
}

// selectedAncestor returns the node's ancestor at the given height.
func (node *blockNode) selectedAncestor(height uint64) *blockNode {
	current := node
	for current.height() > height {
		current = current.parent
	}
	return current
}

// less reports whether node ranks below other in the fork choice rule:
// lower cumulative work loses, and between equal-work chains the higher
// tip hash loses, so that all nodes resolve ties identically.
func (node *blockNode) less(other *blockNode) bool {
	switch node.workSum.Cmp(other.workSum) {
	case -1:
		return true
	case 1:
		return false
	}
	return other.hash.Less(node.hash)
}
