package main

import (
	"fmt"
	"os"

	"github.com/junomoneta/junod/infrastructure/logger"
	"github.com/junomoneta/junod/util/panics"
)

var log = logger.RegisterSubSystem("JUND")
var spawn = panics.GoroutineWrapperFunc(log)

func initLog(logFile, errLogFile string) {
	err := logger.InitLog(logFile, errLogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %+v", err)
		os.Exit(1)
	}
}
