package externalapi

// BlockInfo contains various information about a specific block
type BlockInfo struct {
	Exists          bool
	Height          uint64
	EpochIndex      uint64
	IsInActiveChain bool
}

// Clone returns a clone of BlockInfo
func (bi *BlockInfo) Clone() *BlockInfo {
	return &BlockInfo{
		Exists:          bi.Exists,
		Height:          bi.Height,
		EpochIndex:      bi.EpochIndex,
		IsInActiveChain: bi.IsInActiveChain,
	}
}
