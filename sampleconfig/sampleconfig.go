// Copyright (c) 2017-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sampleconfig

import (
	_ "embed"
)

// sampleLanaddrdConf is a string containing the commented example config for
// lanaddrd.
//
//go:embed sample-lanaddrd.conf
var sampleLanaddrdConf string

// Lanaddrd returns a string containing the commented example config for
// lanaddrd.
func Lanaddrd() string {
	return sampleLanaddrdConf
}
