package version

import (
	"fmt"
	"runtime"
)

// These variables are set by ldflags during build, e.g.
// -X github.com/younsl/ec2ctl/internal/version.version=v0.1.0
var (
	version   = "dev"
	buildDate = "unknown" // RFC3339
	gitCommit = "unknown"
)

// BuildInfo contains version and build details.
type BuildInfo struct {
	Version   string `json:"version"`
	BuildDate string `json:"buildDate"`
	GitCommit string `json:"gitCommit"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// Get returns the build information.
func Get() BuildInfo {
	return BuildInfo{
		Version:   version,
		BuildDate: buildDate,
		GitCommit: gitCommit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String renders the build information on one line
func (b BuildInfo) String() string {
	commit := b.GitCommit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return fmt.Sprintf("ec2ctl %s (commit: %s, built: %s, %s %s)", b.Version, commit, b.BuildDate, b.GoVersion, b.Platform)
}
