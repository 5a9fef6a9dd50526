// Package version exposes build-time version metadata injected via ldflags
// and a helper that attaches a `version` subcommand to a cobra root.
package version
