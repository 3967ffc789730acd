package externalapi

// BlockInsertionResult is the result of inserting a block into the consensus
type BlockInsertionResult struct {
	ChainChanges *ChainChangeSet
}

// ChainChangeSet is the set of changes made to the active chain as a
// result of a block insertion. Removed hashes are ordered from the old
// tip down towards the common ancestor; added hashes are ordered from
// the common ancestor up towards the new tip.
type ChainChangeSet struct {
	AddedChainBlockHashes   []*DomainHash
	RemovedChainBlockHashes []*DomainHash
}
