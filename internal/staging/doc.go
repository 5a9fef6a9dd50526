// Package staging builds the ephemeral on-disk tree each packaging format
// requires (app bundle, package root, AppDir, archive root) and populates it
// with the compiled binary, generated metadata files and icon resources.
// Trees live under the output root, are owned by exactly one format
// generator, and are deleted unconditionally when that generator finishes.
package staging
