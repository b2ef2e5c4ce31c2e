// Copyright 2024 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package version

import (
	"fmt"
	"runtime"
)

// These are populated at build time
var Version string
var CommitHash string

// Info describes the running build
type Info struct {
	Version    string `json:"version"`
	CommitHash string `json:"commitHash,omitempty"`
	GoVersion  string `json:"goVersion"`
}

func GetInfo() Info {
	ret := Info{
		Version:    Version,
		CommitHash: CommitHash,
		GoVersion:  runtime.Version(),
	}
	if ret.Version == "" {
		ret.Version = "devel"
	}
	return ret
}

func GetVersionString() string {
	info := GetInfo()
	if info.CommitHash == "" {
		return info.Version
	}
	return fmt.Sprintf("%s (commit %s)", info.Version, info.CommitHash)
}
