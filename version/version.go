// Package version exposes build metadata set through ldflags:
//
//	go build -ldflags "-X github.com/ncobase/issues/version.Version=1.2.3 \
//	  -X github.com/ncobase/issues/version.Revision=abc123"
package version

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	// Version is the current version
	Version = "0.0.0"

	// Branch is current branch name the code is built off.
	Branch = "unknown"

	// Revision is the short commit hash of source tree
	Revision = "unknown"

	// BuiltAt is the build time
	BuiltAt = "unknown"
)

// Info is the build metadata of the running binary.
type Info struct {
	Version   string `json:"version"`
	Branch    string `json:"branch"`
	Revision  string `json:"revision"`
	BuiltAt   string `json:"builtAt"`
	GoVersion string `json:"goVersion"`
}

// GetVersionInfo returns the ldflags values, filling revision and build
// time from the embedded VCS stamp when they were not set.
func GetVersionInfo() Info {
	info := Info{
		Version:   Version,
		Branch:    Branch,
		Revision:  Revision,
		BuiltAt:   BuiltAt,
		GoVersion: runtime.Version(),
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Revision == "unknown" && len(s.Value) >= 7 {
				info.Revision = s.Value[:7]
			}
		case "vcs.time":
			if info.BuiltAt == "unknown" {
				info.BuiltAt = s.Value
			}
		}
	}
	return info
}

// String renders the info on a single line.
func (i Info) String() string {
	return fmt.Sprintf("%s (%s@%s, built %s, %s)", i.Version, i.Branch, i.Revision, i.BuiltAt, i.GoVersion)
}

// JSON renders the info as indented JSON.
func (i Info) JSON() string {
	b, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}
