// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
lanaddrd simulates a broadcast link on which nodes identified by a single
printable hardware character obtain small numeric addresses from a coordinator,
resolve the addresses of their peers, and exchange short data messages.

On startup lanaddrd attaches the coordinator and the configured number of
requester nodes to an in-memory link.  The coordinator takes address 1 and
hands out addresses 2 through 8 to requesters in the order their requests
arrive.  Once every node started, the scripted messages given with --send are
delivered and the simulation keeps running until it is interrupted.

The long form of all of the options (except -C) can be specified in a
configuration file that is automatically parsed when lanaddrd starts up.  By
default, the configuration file is located at ~/.lanaddrd/lanaddrd.conf on
POSIX-style operating systems and %LOCALAPPDATA%\lanaddrd\lanaddrd.conf on
Windows.  The -C (--configfile) flag can be used to override this location.

Usage:

	lanaddrd [OPTIONS]

Application Options:

	-V, --version           Display version information and exit
	-A, --appdata=          Path to application home directory
	-C, --configfile=       Path to configuration file
	-b, --datadir=          Directory to store the coordinator binding database
	    --logdir=           Directory to log output
	    --nofilelogging     Disable file logging
	    --profile=          Enable HTTP profiling on given [addr:]port -- NOTE:
	                        port must be between 1024 and 65536 and addr must be
	                        a loopback address
	-d, --debuglevel=       Logging level for all subsystems {trace, debug,
	                        info, warn, error, critical} -- You may also specify
	                        <subsystem>=<level>,<subsystem2>=<level>,... to set
	                        the log level for individual subsystems -- Use show
	                        to list available subsystems (default: info)
	    --nodes=            Number of requester nodes to simulate beside the
	                        coordinator (default: 3)
	    --coordinator=      Hardware identifier of the coordinator (a single
	                        printable character) (default: A)
	    --assigntimeout=    Time a node waits for the coordinator to assign its
	                        address (default: 5s)
	    --resolvetimeout=   Time a node waits for the owner of an address to
	                        answer a resolution (default: 5s)
	    --send=             Send a message once all nodes started, in the form
	                        FROM:NET:DEST:PAYLOAD where FROM is a hardware
	                        identifier; may be specified multiple times
	    --persist           Persist the coordinator's address assignments in
	                        the data directory

Help Options:

	-h, --help              Show this help message
*/
package main
