package ldb

import (
	"github.com/junomoneta/junod/infrastructure/logger"
)

var log = logger.RegisterSubSystem("JUDB")
