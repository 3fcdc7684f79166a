// Package version carries build metadata for flowcov.
package version

import "fmt"

// Populated by the linker (-ldflags "-X ...") at build time.
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// String formats the build metadata for `flowcov version`.
func String() string {
	return fmt.Sprintf("flowcov %s (commit %s, built %s)", Version, CommitHash, BuildDate)
}
