// Package version holds build metadata injected via ldflags:
//
//	-X github.com/econext/catalog-engine/internal/version.Version=v1.2.0
package version

import "fmt"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the build metadata as one line for startup logs.
func String() string {
	return fmt.Sprintf("catalog-engine %s (commit %s, built %s)", Version, Commit, Date)
}
