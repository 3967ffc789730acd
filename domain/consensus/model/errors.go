package model

import "github.com/pkg/errors"

// ErrBlockNotInChainView signifies that a height lookup was made against
// a chain view that does not extend up to that height.
var ErrBlockNotInChainView = errors.New("block is not in the chain view")

// ErrDatasetBuildFailed signifies that building a validation dataset
// failed. This is a process error, not a rule error: the block that
// triggered the build is neither valid nor invalid, and validation may
// be retried.
var ErrDatasetBuildFailed = errors.New("validation dataset build failed")

// ErrDatasetBuildCancelled signifies that a validation dataset build was
// cancelled before completion, usually because its seed was evicted or
// the node is shutting down.
var ErrDatasetBuildCancelled = errors.New("validation dataset build cancelled")
