package version

import "fmt"

var (
	// Version is the semantic version of this tool, overridden via ldflags
	// on release builds.
	Version = "0.1.0"
	// Commit is the short VCS revision embedded at build time (or "none").
	Commit = "none"
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
)

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Full returns the version with commit and build time, as printed by the
// version subcommand.
func Full() string {
	return fmt.Sprintf("oxide-release %s (commit %s, built %s)", Version, Commit, BuildTime)
}
