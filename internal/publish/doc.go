// Package publish uploads produced artifacts to an S3-compatible bucket so
// a packaging run can feed a distribution mirror directly. Publishing is
// optional and best-effort: upload failures are reported as warnings and
// never invalidate the local artifacts.
package publish
