// Copyright (c) 2013-2014 The btcsuite developers
// Copyright (c) 2015-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package version houses the semantic version of lanaddrd.
package version

import (
	"fmt"
	"regexp"
	"runtime/debug"
	"strconv"
	"strings"
)

// semanticAlphabet defines the allowed characters for the pre-release and
// build metadata portions of a semantic version string.
const semanticAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-."

// semverRE splits a semantic version string into its constituent parts.
var semverRE = regexp.MustCompile(`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)` +
	`(?:-((?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*)(?:\.(?:0|[1-9]\d*|\d*` +
	`[a-zA-Z-][0-9a-zA-Z-]*))*))?(?:\+([0-9a-zA-Z-]+(?:\.[0-9a-zA-Z-]+)*))?$`)

var (
	// Version is the application version per the semantic versioning 2.0.0
	// spec (https://semver.org/).
	//
	// It may be overridden at build time with:
	// '-ldflags "-X github.com/decred/lanaddr/internal/version.Version=fullsemver"'
	//
	// It MUST be a full semantic version or the package panics at init.
	Version = "0.1.0-pre"

	// These are parsed from Version during init.
	Major         uint
	Minor         uint
	Patch         uint
	PreRelease    string
	BuildMetadata string
)

// parseSemVer parses the components of the provided semantic version string.
func parseSemVer(s string) (major, minor, patch uint, pre, build string, err error) {
	m := semverRE.FindStringSubmatch(s)
	if m == nil {
		err = fmt.Errorf("malformed version string %q: does not conform to "+
			"semver specification", s)
		return 0, 0, 0, "", "", err
	}

	var nums [3]uint
	for i, field := range []string{"major", "minor", "patch"} {
		v, err := strconv.ParseUint(m[i+1], 10, 0)
		if err != nil {
			return 0, 0, 0, "", "", fmt.Errorf("malformed semver %s: %w",
				field, err)
		}
		nums[i] = uint(v)
	}
	return nums[0], nums[1], nums[2], m[4], m[5], nil
}

func init() {
	var err error
	Major, Minor, Patch, PreRelease, BuildMetadata, err = parseSemVer(Version)
	if err != nil {
		panic(err)
	}
}

// vcsCommitID returns the abbreviated revision the binary was built from, or
// an empty string when the build carries no version control information.
func vcsCommitID() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	var vcs, revision string
	for _, bs := range bi.Settings {
		switch bs.Key {
		case "vcs":
			vcs = bs.Value
		case "vcs.revision":
			revision = bs.Value
		}
	}
	if vcs == "git" && len(revision) > 9 {
		revision = revision[:9]
	}
	return revision
}

// String returns the application version.  When the version carries no build
// metadata, the version control revision of the build is appended as build
// metadata if it is known.
func String() string {
	if BuildMetadata != "" {
		return Version
	}
	if commit := NormalizeString(vcsCommitID()); commit != "" {
		return Version + "+" + commit
	}
	return Version
}

// NormalizeString returns the passed string stripped of every character that
// is not allowed in pre-release and build metadata strings.
func NormalizeString(str string) string {
	var b strings.Builder
	for _, r := range str {
		if strings.ContainsRune(semanticAlphabet, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
