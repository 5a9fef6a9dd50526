// Package build invokes the native compiler toolchain for each resolved
// target, one architecture at a time, failing fast on the first error. For
// universal requests it merges the per-architecture binaries into a single
// multi-architecture binary through the external combiner.
package build
