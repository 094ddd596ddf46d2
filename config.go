// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/decred/dcrd/dcrutil/v4"
	"github.com/decred/lanaddr/internal/version"
	"github.com/decred/lanaddr/node"
	"github.com/decred/lanaddr/sampleconfig"
	"github.com/decred/lanaddr/wire"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultConfigFilename = "lanaddrd.conf"
	defaultDataDirname    = "data"
	defaultLogLevel       = "info"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "lanaddrd.log"
	defaultNodes          = 3
	defaultCoordinator    = "A"

	// maxNodes is the maximum number of simulated requesters.  It keeps the
	// generated hardware identifiers printable.
	maxNodes = 60
)

var (
	defaultHomeDir    = dcrutil.AppDataDir("lanaddrd", false)
	defaultConfigFile = filepath.Join(defaultHomeDir, defaultConfigFilename)
	defaultDataDir    = filepath.Join(defaultHomeDir, defaultDataDirname)
	defaultLogDir     = filepath.Join(defaultHomeDir, defaultLogDirname)
)

// scriptedSend is a message the simulator sends once every node started.
type scriptedSend struct {
	from    wire.HardwareID
	network wire.NetworkID
	dest    wire.NodeAddress
	payload []byte
}

// config defines the configuration options for lanaddrd.
//
// See loadConfig for details on the configuration load process.
type config struct {
	// General application behavior.
	ShowVersion bool   `short:"V" long:"version" description:"Display version information and exit"`
	HomeDir     string `short:"A" long:"appdata" description:"Path to application home directory"`
	ConfigFile  string `short:"C" long:"configfile" description:"Path to configuration file"`
	DataDir     string `short:"b" long:"datadir" description:"Directory to store the coordinator binding database"`

	// Logging.
	LogDir        string `long:"logdir" description:"Directory to log output"`
	NoFileLogging bool   `long:"nofilelogging" description:"Disable file logging"`
	Profile       string `long:"profile" description:"Enable HTTP profiling on given [addr:]port -- NOTE: port must be between 1024 and 65536 and addr must be a loopback address"`
	DebugLevel    string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`

	// Simulation.
	Nodes          int           `long:"nodes" description:"Number of requester nodes to simulate beside the coordinator"`
	Coordinator    string        `long:"coordinator" description:"Hardware identifier of the coordinator (a single printable character)"`
	AssignTimeout  time.Duration `long:"assigntimeout" description:"Time a node waits for the coordinator to assign its address"`
	ResolveTimeout time.Duration `long:"resolvetimeout" description:"Time a node waits for the owner of an address to answer a resolution"`
	Sends          []string      `long:"send" description:"Send a message once all nodes started, in the form FROM:NET:DEST:PAYLOAD where FROM is a hardware identifier; may be specified multiple times"`
	Persist        bool          `long:"persist" description:"Persist the coordinator's address assignments in the data directory"`

	// The following fields are derived from the above fields by loadConfig.
	coordinator wire.HardwareID
	sends       []scriptedSend
}

// errSuppressUsage signifies that an error that happened during the initial
// configuration phase should suppress the usage output since it was not caused
// by the user.
type errSuppressUsage string

// Error implements the error interface.
func (e errSuppressUsage) Error() string {
	return string(e)
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Expand initial ~ to the current user's home directory, or ~otheruser
	// to otheruser's home directory.  On Windows, both forward and backward
	// slashes can be used.
	if strings.HasPrefix(path, "~") {
		var homeDir string
		if home, err := os.UserHomeDir(); err == nil {
			homeDir = home
		}
		path = strings.Replace(path, "~", homeDir, 1)
	}

	return filepath.Clean(os.ExpandEnv(path))
}

// parseHardwareID parses a hardware identifier given as a single printable
// character.
func parseHardwareID(s string) (wire.HardwareID, error) {
	if len(s) != 1 || s[0] <= ' ' || s[0] > '~' {
		return wire.NoHardware, fmt.Errorf("hardware identifier %q is not "+
			"a single printable character", s)
	}
	return wire.HardwareID(s[0]), nil
}

// parseScriptedSend parses a scripted message of the form
// FROM:NET:DEST:PAYLOAD.  The payload may contain colons.
func parseScriptedSend(s string) (scriptedSend, error) {
	fields := strings.SplitN(s, ":", 4)
	if len(fields) != 4 {
		return scriptedSend{}, fmt.Errorf("scripted send %q is not of the "+
			"form FROM:NET:DEST:PAYLOAD", s)
	}

	from, err := parseHardwareID(fields[0])
	if err != nil {
		return scriptedSend{}, fmt.Errorf("scripted send %q: %w", s, err)
	}
	network, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return scriptedSend{}, fmt.Errorf("scripted send %q: invalid "+
			"network: %w", s, err)
	}
	dest, err := strconv.ParseUint(fields[2], 10, 32)
	if err != nil {
		return scriptedSend{}, fmt.Errorf("scripted send %q: invalid "+
			"destination: %w", s, err)
	}
	if len(fields[3]) > wire.MaxPayloadSize {
		return scriptedSend{}, fmt.Errorf("scripted send %q: payload "+
			"exceeds %d bytes", s, wire.MaxPayloadSize)
	}

	return scriptedSend{
		from:    from,
		network: wire.NetworkID(network),
		dest:    wire.NodeAddress(dest),
		payload: []byte(fields[3]),
	}, nil
}

// createDefaultConfigFile creates a default config file at the provided path
// from the embedded sample configuration.
func createDefaultConfigFile(destPath string) error {
	// Create the destination directory if it does not exist.
	err := os.MkdirAll(filepath.Dir(destPath), 0700)
	if err != nil {
		return err
	}

	return os.WriteFile(destPath, []byte(sampleconfig.Lanaddrd()), 0600)
}

// loadConfig initializes and parses the config using a config file and command
// line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
//
// The above results in lanaddrd functioning properly without any config
// settings while still allowing the user to override settings with config
// files and command line options.  Command line options always take
// precedence.
func loadConfig(appName string) (*config, []string, error) {
	// Default config.
	cfg := config{
		HomeDir:        defaultHomeDir,
		ConfigFile:     defaultConfigFile,
		DataDir:        defaultDataDir,
		LogDir:         defaultLogDir,
		DebugLevel:     defaultLogLevel,
		Nodes:          defaultNodes,
		Coordinator:    defaultCoordinator,
		AssignTimeout:  node.DefaultAssignTimeout,
		ResolveTimeout: node.DefaultResolveTimeout,
	}

	// Pre-parse the command line options to see if an alternative config
	// file or the version flag was specified.  Any errors aside from the
	// help message error can be ignored here since they will be caught by
	// the final parse below.
	preCfg := cfg
	preParser := flags.NewParser(&preCfg, flags.HelpFlag)
	_, err := preParser.Parse()
	if err != nil {
		var e *flags.Error
		if errors.As(err, &e) && e.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, err)
			os.Exit(0)
		}
	}

	// Show the version and exit if the version flag was specified.
	if preCfg.ShowVersion {
		fmt.Printf("%s version %s (Go version %s %s/%s)\n", appName,
			version.String(), runtime.Version(), runtime.GOOS,
			runtime.GOARCH)
		os.Exit(0)
	}

	// Update the home directory and the paths derived from it when it was
	// overridden.
	if preCfg.HomeDir != defaultHomeDir {
		homeDir := cleanAndExpandPath(preCfg.HomeDir)
		cfg.HomeDir = homeDir
		if preCfg.ConfigFile == defaultConfigFile {
			preCfg.ConfigFile = filepath.Join(homeDir, defaultConfigFilename)
		}
		cfg.DataDir = filepath.Join(homeDir, defaultDataDirname)
		cfg.LogDir = filepath.Join(homeDir, defaultLogDirname)
	}

	// Create a default config file when one does not exist and the user did
	// not specify an override.
	configFile := cleanAndExpandPath(preCfg.ConfigFile)
	if preCfg.ConfigFile == defaultConfigFile || preCfg.HomeDir != defaultHomeDir {
		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			if err := createDefaultConfigFile(configFile); err != nil {
				fmt.Fprintf(os.Stderr, "Error creating a default config "+
					"file: %v\n", err)
			}
		}
	}

	// Load additional config from file.
	parser := flags.NewParser(&cfg, flags.Default)
	err = flags.NewIniParser(parser).ParseFile(configFile)
	if err != nil {
		var e *os.PathError
		if !errors.As(err, &e) {
			err = fmt.Errorf("error parsing config file: %w", err)
			return nil, nil, err
		}
	}

	// Parse command line options again to ensure they take precedence.
	remainingArgs, err := parser.Parse()
	if err != nil {
		var e *flags.Error
		if !errors.As(err, &e) || e.Type != flags.ErrHelp {
			return nil, nil, err
		}
		os.Exit(0)
	}

	// Special show command to list supported subsystems and exit.
	if cfg.DebugLevel == "show" {
		fmt.Println("Supported subsystems", supportedSubsystems())
		os.Exit(0)
	}

	cfg.DataDir = cleanAndExpandPath(cfg.DataDir)
	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)

	// Initialize log rotation.  After log rotation has been initialized, the
	// logger variables may be used.
	if !cfg.NoFileLogging {
		logFile := filepath.Join(cfg.LogDir, defaultLogFilename)
		if err := initLogRotator(logFile); err != nil {
			return nil, nil, errSuppressUsage(err.Error())
		}
	}

	// Parse, validate, and set debug log level(s).
	if err := parseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		err := fmt.Errorf("%s: %w", "loadConfig", err)
		return nil, nil, err
	}

	// Validate the profile server address.
	if cfg.Profile != "" {
		cfg.Profile = portToLocalHostAddr(cfg.Profile)
		if err := validateProfileAddr(cfg.Profile); err != nil {
			return nil, nil, fmt.Errorf("%s: invalid profile address: %w",
				"loadConfig", err)
		}
	}

	// Validate the simulation options.
	if cfg.Nodes < 0 || cfg.Nodes > maxNodes {
		str := "%s: the number of nodes must be between 0 and %d -- parsed [%d]"
		return nil, nil, fmt.Errorf(str, "loadConfig", maxNodes, cfg.Nodes)
	}
	cfg.coordinator, err = parseHardwareID(cfg.Coordinator)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: invalid coordinator: %w",
			"loadConfig", err)
	}
	if cfg.AssignTimeout <= 0 || cfg.ResolveTimeout <= 0 {
		str := "%s: the assignment and resolution timeouts must be positive"
		return nil, nil, fmt.Errorf(str, "loadConfig")
	}
	for _, s := range cfg.Sends {
		send, err := parseScriptedSend(s)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", "loadConfig", err)
		}
		cfg.sends = append(cfg.sends, send)
	}

	return &cfg, remainingArgs, nil
}
