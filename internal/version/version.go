// Package version carries build metadata, set with -ldflags -X at build time.
package version

import "fmt"

var (
	// Version is the current application version
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String formats the build metadata on one line for -version and /health.
func String() string {
	return fmt.Sprintf("intersim %s (%s, built %s)", Version, GitSHA, BuildTime)
}
