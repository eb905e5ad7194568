// Package version holds build metadata injected at link time:
//
//	go build -ldflags "-X github.com/HerbHall/notebookrelay/internal/version.Version=v1.2.3 \
//	  -X github.com/HerbHall/notebookrelay/internal/version.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/HerbHall/notebookrelay/internal/version.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

import (
	"fmt"
	"runtime"
)

// Set via -ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Short returns the bare version string.
func Short() string {
	return Version
}

// Info returns a one-line human readable description of the build.
func Info() string {
	return fmt.Sprintf("notebookrelay %s (commit %s, built %s, %s %s/%s)",
		Version, Commit, Date, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Map returns the build metadata as key/value pairs.
func Map() map[string]string {
	return map[string]string{
		"version":    Version,
		"commit":     Commit,
		"date":       Date,
		"go_version": runtime.Version(),
	}
}
