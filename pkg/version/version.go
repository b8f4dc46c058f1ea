// Package version holds build-time version information.
package version

import "fmt"

// Set via -ldflags at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// Get returns the human-readable version string.
func Get() string {
	return fmt.Sprintf("%s (%s)", Version, GitCommit)
}
