// Package buildinfo provides build-time version information.
//
// Variables are set via ldflags during build:
//
//	go build -ldflags "-X github.com/matzehuels/reftext/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/reftext/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/reftext/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Binaries built with go install carry no ldflags; for those the module
// version and VCS stamp embedded by the toolchain fill in what is missing.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// Defaults reported when nothing better is known.
const (
	devVersion    = "dev"
	unknownCommit = "none"
	unknownDate   = "unknown"
)

var (
	// Version is the semantic version (e.g., "v1.2.3").
	Version = devVersion

	// Commit is the git commit SHA.
	Commit = unknownCommit

	// Date is the build timestamp.
	Date = unknownDate
)

func init() {
	if bi, ok := debug.ReadBuildInfo(); ok {
		fill(bi)
	}
}

// fill replaces defaults with values from the embedded build info. Values
// set through ldflags always win.
func fill(bi *debug.BuildInfo) {
	if Version == devVersion && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if Commit == unknownCommit && s.Value != "" {
				Commit = s.Value
			}
		case "vcs.time":
			if Date == unknownDate && s.Value != "" {
				Date = s.Value
			}
		}
	}
}

// Fields returns the build information as key/value pairs for structured
// logging.
func Fields() []any {
	return []any{"version", Version, "commit", Commit, "built", Date}
}

// Template returns the version template string for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
