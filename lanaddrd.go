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
	"strings"

	"github.com/decred/lanaddr/internal/version"
)

var cfg *config

// lanaddrdMain is the real main function for lanaddrd.  It is necessary to
// work around the fact that deferred functions do not run when os.Exit() is
// called.
func lanaddrdMain() error {
	// Load configuration and parse command line.  This function also
	// initializes logging and configures it accordingly.
	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	tcfg, _, err := loadConfig(appName)
	if err != nil {
		usageMessage := fmt.Sprintf("Use %s -h to show usage", appName)
		fmt.Fprintln(os.Stderr, err)
		var e errSuppressUsage
		if !errors.As(err, &e) {
			fmt.Fprintln(os.Stderr, usageMessage)
		}
		return err
	}
	cfg = tcfg
	defer func() {
		if logRotator != nil {
			logRotator.Close()
		}
	}()

	// Get a context that will be canceled when a shutdown signal has been
	// triggered either from an OS signal such as SIGINT (Ctrl+C) or from the
	// simulator.
	ctx := shutdownListener()
	defer landLog.Info("Shutdown complete")

	// Show version and home dir at startup.
	landLog.Infof("Version %s (Go version %s %s/%s)", version.String(),
		runtime.Version(), runtime.GOOS, runtime.GOARCH)
	landLog.Infof("Home dir: %s", cfg.HomeDir)
	if cfg.NoFileLogging {
		landLog.Info("File logging disabled")
	}

	// Enable http profiling server if requested.
	if cfg.Profile != "" {
		var profiler profileServer
		if err := profiler.Start(cfg.Profile); err != nil {
			landLog.Errorf("Unable to start profiler: %v", err)
			return err
		}
		defer profiler.Stop()
	}

	// Return now if a shutdown signal was triggered.
	if shutdownRequested(ctx) {
		return nil
	}

	sim, err := newSimulator(cfg)
	if err != nil {
		landLog.Errorf("Unable to create simulator: %v", err)
		return err
	}

	// Run the simulation.  This blocks until the context is cancelled which
	// happens when an interrupt signal is received.
	if err := sim.run(ctx); err != nil {
		landLog.Errorf("%v", err)
		requestShutdown()
		return err
	}
	return nil
}

func main() {
	// Work around defer not working after os.Exit()
	if err := lanaddrdMain(); err != nil {
		os.Exit(1)
	}
}
