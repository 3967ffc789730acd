package main

import (
	"fmt"
	"os"
	"time"

	"github.com/junomoneta/junod/domain/consensus"
	"github.com/junomoneta/junod/domain/miningmanager"
	"github.com/junomoneta/junod/infrastructure/db/database/ldb"
	"github.com/junomoneta/junod/infrastructure/logger"
	"github.com/junomoneta/junod/infrastructure/os/signal"
	"github.com/junomoneta/junod/util/panics"
	"github.com/junomoneta/junod/util/profiling"
	"github.com/junomoneta/junod/version"
)

const leveldbCacheSizeMiB = 256

func main() {
	defer panics.HandlePanic(log, nil)

	interrupt := signal.InterruptListener()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing command-line arguments: %s\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	log.Infof("Version %s", version.Version())
	log.Infof("Network %s", cfg.NetParams.Name)

	// Enable http profiling server if requested.
	if cfg.Profile != "" {
		profiling.Start(cfg.Profile, log)
	}

	db, err := ldb.NewLevelDB(cfg.DataDir, leveldbCacheSizeMiB)
	if err != nil {
		log.Criticalf("Could not open the database at %s: %+v", cfg.DataDir, err)
		os.Exit(1)
	}
	defer db.Close()

	consensusConfig := &consensus.Config{Params: *cfg.NetParams}
	tc, err := consensus.NewFactory().NewConsensus(consensusConfig, db)
	if err != nil {
		log.Criticalf("Could not initialize the consensus: %+v", err)
		os.Exit(1)
	}
	defer tc.Close()

	log.Infof("The active chain tip is %s at height %d", tc.TipHash(), tc.TipHeight())

	doneChan := make(chan struct{})
	if cfg.Generate {
		miningManager := miningmanager.NewFactory().
			NewMiningManager(tc, time.Now().UnixNano())
		spawn("junod.mineLoop", func() {
			err := mineLoop(miningManager, tc, cfg.NumberOfBlocks, interrupt)
			if err != nil {
				log.Errorf("The mine loop stopped with an error: %+v", err)
			}
			doneChan <- struct{}{}
		})
	}

	select {
	case <-doneChan:
	case <-interrupt:
	}
}
