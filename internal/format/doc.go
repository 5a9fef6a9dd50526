// Package format holds one generator per output type: disk image, bundle
// archive, installer, system package, application image and portable
// archive. Each generator assembles its own staging tree, consumes resolved
// tool handles, emits one final artifact file, and deletes the staging tree
// on exit regardless of outcome.
package format
