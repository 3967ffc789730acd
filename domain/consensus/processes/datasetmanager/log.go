package datasetmanager

import (
	"github.com/junomoneta/junod/infrastructure/logger"
	"github.com/junomoneta/junod/util/panics"
)

var log = logger.RegisterSubSystem("DSET")
var spawn = panics.GoroutineWrapperFunc(log)
