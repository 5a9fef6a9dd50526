package release

import (
	"fmt"
	"slices"

	"github.com/cheesejaguar/oxide-release/internal/config"
	"github.com/cheesejaguar/oxide-release/internal/format"
	"github.com/cheesejaguar/oxide-release/internal/publish"
	"github.com/cheesejaguar/oxide-release/internal/target"
)

// ErrConfiguration reports a contradictory or missing request parameter.
// It is always raised before any build step runs.
type ErrConfiguration struct {
	// Reason is the human-readable description of the problem.
	Reason string
}

// Error implements the error interface.
func (e *ErrConfiguration) Error() string {
	return "configuration error: " + e.Reason
}

// Request is one fully validated release invocation. It is constructed once
// at startup and passed explicitly into every component, never held as
// shared mutable state.
type Request struct {
	// Cfg is the immutable release configuration.
	Cfg *config.Config
	// Platform is the operating system being packaged for.
	Platform target.Platform
	// Formats is the resolved, non-empty list of output formats to produce.
	Formats []format.Format
	// Universal requests building every supported architecture and
	// combining the binaries into one.
	Universal bool
	// Clean requests deleting prior build and output directories first.
	Clean bool
	// SignRequested records whether signing was explicitly asked for.
	SignRequested bool
	// SignIdentity is the keychain identity name (macOS) or certificate
	// file path (Windows) used when signing is requested.
	SignIdentity string
	// PublishDest is an optional s3://bucket/prefix upload destination.
	PublishDest string
}

// NewRequest validates the raw invocation parameters and resolves the
// format list. An empty format list means every format the platform
// supports.
func NewRequest(cfg *config.Config, platform target.Platform, formats []format.Format,
	universal, clean, signRequested bool, signIdentity, publishDest string) (*Request, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, &ErrConfiguration{Reason: err.Error()}
	}

	supported, ok := format.ByPlatform[platform]
	if !ok {
		return nil, &ErrConfiguration{Reason: fmt.Sprintf("unsupported platform %q", string(platform))}
	}

	if len(formats) == 0 {
		formats = slices.Clone(supported)
	}

	for _, f := range formats {
		if !slices.Contains(supported, f) {
			return nil, &ErrConfiguration{
				Reason: fmt.Sprintf("format %q is not produced on %s", string(f), string(platform)),
			}
		}
	}

	if universal && platform != target.PlatformMacOS {
		return nil, &ErrConfiguration{Reason: "universal binaries are only supported on macos"}
	}

	if signRequested && signIdentity == "" {
		return nil, &ErrConfiguration{Reason: "signing requested without an identity"}
	}

	if publishDest != "" {
		if _, _, err := publish.ParseDestination(publishDest); err != nil {
			return nil, &ErrConfiguration{Reason: err.Error()}
		}
	}

	return &Request{
		Cfg:           cfg,
		Platform:      platform,
		Formats:       formats,
		Universal:     universal,
		Clean:         clean,
		SignRequested: signRequested,
		SignIdentity:  signIdentity,
		PublishDest:   publishDest,
	}, nil
}
