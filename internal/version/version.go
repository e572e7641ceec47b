// Package version carries build metadata, set via ldflags:
// go build -ldflags "-X git.home.luguber.info/inful/livedoc/internal/version.Version=v0.3.0".
package version

import (
	"fmt"
	"runtime"
)

// Version is the release version.
var Version = "unknown"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String formats the build metadata for the version command.
func String() string {
	return fmt.Sprintf("livedoc %s (commit %s, built %s, %s)", Version, GitCommit, BuildTime, runtime.Version())
}
