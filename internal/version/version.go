// Package version holds build metadata injected via ldflags:
//
//	go build -ldflags "-X github.com/kailas-cloud/jobsift/internal/version.Version=v0.3.0" ./cmd/jobsift
package version

import "fmt"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the build metadata as shown by "jobsift --version".
func String() string {
	if Commit == "unknown" && Date == "unknown" {
		return Version
	}
	return fmt.Sprintf("%s (commit %s, built %s)", Version, shortCommit(Commit), Date)
}

func shortCommit(c string) string {
	if len(c) > 12 {
		return c[:12]
	}
	return c
}
