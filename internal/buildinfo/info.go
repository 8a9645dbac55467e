// Package buildinfo carries the version stamped into the synthledger binary.
package buildinfo

import "fmt"

// Set with -ldflags "-X github.com/cleared-dev/synthledger/internal/buildinfo.Version=..."
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String formats the stamp for --version.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
