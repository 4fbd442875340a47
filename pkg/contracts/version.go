// Package contracts holds the types shared between the server, the CLI and
// API clients.
package contracts

import (
	"fmt"
	"runtime"
)

const (
	// Version is the release version.
	Version = "1.2.0"

	// APIVersion is the version of the JSON API under /api.
	APIVersion = "v1"
)

// Set at build time with -ldflags "-X signaldash/pkg/contracts.GitCommit=...".
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionInfo describes the running binary.
type VersionInfo struct {
	Version      string `json:"version"`
	APIVersion   string `json:"api_version"`
	BuildTime    string `json:"build_time"`
	GitCommit    string `json:"git_commit"`
	GoVersion    string `json:"go_version"`
	OS           string `json:"os"`
	Architecture string `json:"architecture"`
}

// GetVersionInfo returns the version of the running binary.
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:      Version,
		APIVersion:   APIVersion,
		BuildTime:    BuildTime,
		GitCommit:    GitCommit,
		GoVersion:    runtime.Version(),
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
	}
}

// GetVersionString returns "signaldash vX.Y.Z".
func GetVersionString() string {
	return fmt.Sprintf("signaldash v%s", Version)
}

// GetFullVersionString appends build details to GetVersionString.
func GetFullVersionString() string {
	info := GetVersionInfo()
	return fmt.Sprintf("%s (built: %s, commit: %s, go: %s, os: %s/%s)",
		GetVersionString(), info.BuildTime, info.GitCommit, info.GoVersion, info.OS, info.Architecture)
}
