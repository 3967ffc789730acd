package signal

import (
	"github.com/junomoneta/junod/infrastructure/logger"
	"github.com/junomoneta/junod/util/panics"
)

var log = logger.RegisterSubSystem("SIGN")
var spawn = panics.GoroutineWrapperFunc(log)
