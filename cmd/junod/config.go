package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"

	"github.com/junomoneta/junod/domain/dagconfig"
	"github.com/junomoneta/junod/infrastructure/logger"
	"github.com/junomoneta/junod/util"
	"github.com/junomoneta/junod/version"
)

const (
	defaultConfigFilename = "junod.conf"
	defaultDataDirname    = "data"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "junod.log"
	defaultErrLogFilename = "junod_err.log"
	defaultLogLevel       = "info"
)

var (
	defaultAppDir     = util.AppDataDir("junod", false)
	defaultConfigFile = filepath.Join(defaultAppDir, defaultConfigFilename)
)

type configFlags struct {
	ShowVersion    bool   `short:"V" long:"version" description:"Display version information and exit"`
	ConfigFile     string `short:"C" long:"configfile" description:"Path to configuration file"`
	AppDir         string `short:"b" long:"appdir" description:"Directory to store data"`
	LogDir         string `long:"logdir" description:"Directory to log output"`
	DebugLevel     string `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`
	Simnet         bool   `long:"simnet" description:"Use the simulation test network"`
	Generate       bool   `long:"generate" description:"Mine blocks on top of the active chain"`
	NumberOfBlocks uint64 `short:"n" long:"numblocks" description:"Number of blocks to mine before exiting. 0 means mine until the process is interrupted. Has no effect without --generate"`
	Profile        string `long:"profile" description:"Enable HTTP profiling on given port -- NOTE port must be between 1024 and 65535"`
}

// config holds the parsed command line options together with the resolved
// network parameters and directories.
type config struct {
	configFlags
	NetParams *dagconfig.Params
	DataDir   string
}

func loadConfig() (*config, error) {
	cfgFlags := &configFlags{
		ConfigFile: defaultConfigFile,
		AppDir:     defaultAppDir,
		DebugLevel: defaultLogLevel,
	}
	parser := flags.NewParser(cfgFlags, flags.PrintErrors|flags.HelpFlag)
	_, err := parser.Parse()

	// Show the version and exit if the version flag was specified.
	if cfgFlags.ShowVersion {
		appName := filepath.Base(os.Args[0])
		appName = strings.TrimSuffix(appName, filepath.Ext(appName))
		fmt.Println(appName, "version", version.Version())
		os.Exit(0)
	}

	if err != nil {
		return nil, err
	}

	// Load additional settings from the config file, if it exists, and
	// re-parse the command line so that it takes precedence.
	if fileExists(cfgFlags.ConfigFile) {
		err := flags.NewIniParser(parser).ParseFile(cfgFlags.ConfigFile)
		if err != nil {
			return nil, errors.Wrapf(err, "error parsing config file %s", cfgFlags.ConfigFile)
		}
		_, err = parser.Parse()
		if err != nil {
			return nil, err
		}
	}

	cfg := &config{configFlags: *cfgFlags}
	if cfg.Simnet {
		cfg.NetParams = &dagconfig.SimnetParams
	} else {
		cfg.NetParams = &dagconfig.MainnetParams
	}
	err = cfg.NetParams.Validate()
	if err != nil {
		return nil, err
	}

	cfg.AppDir = cleanAndExpandPath(cfg.AppDir)
	cfg.DataDir = filepath.Join(cfg.AppDir, defaultDataDirname, cfg.NetParams.Name)
	if cfg.LogDir == "" {
		cfg.LogDir = filepath.Join(cfg.AppDir, defaultLogDirname, cfg.NetParams.Name)
	} else {
		cfg.LogDir = cleanAndExpandPath(cfg.LogDir)
	}

	if cfg.Profile != "" {
		profilePort, err := strconv.Atoi(cfg.Profile)
		if err != nil || profilePort < 1024 || profilePort > 65535 {
			return nil, errors.New("the profile port must be between 1024 and 65535")
		}
	}

	initLog(filepath.Join(cfg.LogDir, defaultLogFilename),
		filepath.Join(cfg.LogDir, defaultErrLogFilename))
	err = logger.SetLogLevels(cfg.DebugLevel)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func fileExists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		homeDir := filepath.Dir(defaultAppDir)
		path = strings.Replace(path, "~", homeDir, 1)
	}
	return filepath.Clean(os.ExpandEnv(path))
}
