// Package config defines the immutable release configuration shared by every
// packaging component: application metadata (name, identifier, version,
// license, dependency lists) and the directory layout (source, build, output,
// icons). Configuration is loaded from an optional YAML file with defaults
// describing the Oxide Browser tree, validated once, and then passed by value
// through the pipeline.
package config
