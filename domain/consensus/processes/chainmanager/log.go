package chainmanager

import (
	"github.com/junomoneta/junod/infrastructure/logger"
)

var log = logger.RegisterSubSystem("CHMG")
