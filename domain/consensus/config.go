package consensus

import (
	"github.com/junomoneta/junod/domain/dagconfig"
)

const (
	defaultHeaderCacheSize = 10_000
	defaultChainCacheSize  = 10_000
)

// Config is the configuration of the consensus
type Config struct {
	dagconfig.Params

	// SkipProofOfWork disables proof-of-work checks. Useful for tests
	// that need to insert arbitrary headers cheaply.
	SkipProofOfWork bool

	// HeaderCacheSize and ChainCacheSize bound the in-memory caches of
	// the respective stores. Zero means the default.
	HeaderCacheSize int
	ChainCacheSize  int
}

func (config *Config) headerCacheSize() int {
	if config.HeaderCacheSize == 0 {
		return defaultHeaderCacheSize
	}
	return config.HeaderCacheSize
}

func (config *Config) chainCacheSize() int {
	if config.ChainCacheSize == 0 {
		return defaultChainCacheSize
	}
	return config.ChainCacheSize
}
