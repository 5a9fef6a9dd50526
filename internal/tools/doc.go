// Package tools locates the optional external programs the packaging
// pipeline leans on: the installer builder, the package builder, signing and
// notarization tools, and the binary combiner. Each tool is probed through a
// prioritized candidate list (well-known install paths first, newest variant
// first, then the command search path) and the answer is memoized for the
// run. Absence is a first-class, non-error result.
package tools
