// Package version provides build metadata for the kustomize-upstream binary.
// Values are injected at link time via -ldflags; when they are not, the
// module version recorded by "go install" is used.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build-time values injected via -ldflags.
var (
	version   = "dev"
	gitCommit = "none"
	buildDate = "unknown"
)

// Info holds the build metadata for the binary.
type Info struct {
	Version   string
	GitCommit string
	BuildDate string
	GoVersion string
	Platform  string
}

// GetInfo returns the current build information.
func GetInfo() Info {
	return Info{
		Version:   resolveVersion(version, debug.ReadBuildInfo),
		GitCommit: shortCommit(gitCommit),
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String returns the details shown by --version, without the binary name
// that cobra already prints.
func (i Info) String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s, %s %s)",
		i.Version, i.GitCommit, i.BuildDate, i.GoVersion, i.Platform)
}

func resolveVersion(injected string, read func() (*debug.BuildInfo, bool)) string {
	if injected != "dev" {
		return injected
	}

	bi, ok := read()
	if !ok || bi.Main.Version == "" || bi.Main.Version == "(devel)" {
		return injected
	}

	return bi.Main.Version
}

// shortCommit truncates a commit SHA to 7 characters.
func shortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}

	return commit
}
