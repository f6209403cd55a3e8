// Package version reports swarmctl build metadata.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set via ldflags, e.g.
// go build -ldflags="-X github.com/andywolf/swarmctl/internal/version.Version=v0.3.0"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// Short returns the version, falling back to the module version recorded by
// `go install` when no ldflags were given.
func Short() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := readBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}

// Info returns a single line such as
// "swarmctl v0.3.0 (commit: abc1234, built: 2026-01-15T10:30:00Z)".
func Info() string {
	return fmt.Sprintf("swarmctl %s (commit: %s, built: %s)", Short(), shortCommit(), BuildDate)
}

// Full returns the multi-line form printed by `swarmctl version -v`.
func Full() string {
	return fmt.Sprintf(`swarmctl %s
  Commit:     %s
  Built:      %s
  Go version: %s
  OS/Arch:    %s/%s`,
		Short(), Commit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

func shortCommit() string {
	if len(Commit) > 7 {
		return Commit[:7]
	}
	return Commit
}
