// Package release drives one packaging run end to end: it validates the
// invocation, compiles the application per architecture, fans out over the
// requested output formats, applies signing and notarization, and produces
// a final report with one outcome per requested format.
package release
