package target

import (
	"fmt"
	"runtime"
	"sync"
)

// Platform identifies the operating system being packaged for.
type Platform string

const (
	// PlatformMacOS packages into .app bundles, disk images and zip archives.
	PlatformMacOS Platform = "macos"
	// PlatformWindows packages into installers and portable zip archives.
	PlatformWindows Platform = "windows"
	// PlatformLinux packages into .deb packages, AppImages and tarballs.
	PlatformLinux Platform = "linux"
)

// Target is one architecture/platform combination to compile for.
// BinaryPath is empty until the build invoker has produced the binary.
type Target struct {
	// Arch is the short architecture name (arm64, x86_64).
	Arch string
	// Triple is the compiler target triple for this platform/arch pair.
	Triple string
	// BinaryPath is the compiled binary location, set after a successful build.
	BinaryPath string
}

// ErrUnsupportedPlatform reports a platform with no known architectures.
type ErrUnsupportedPlatform struct {
	// Platform is the unrecognized platform identifier.
	Platform Platform
}

// Error implements the error interface.
func (e *ErrUnsupportedPlatform) Error() string {
	return fmt.Sprintf("unsupported platform: %q", string(e.Platform))
}

// triplesByPlatform lists every supported architecture per platform,
// preferred architecture first.
//
//nolint:gochecknoglobals // Static lookup table.
var triplesByPlatform = map[Platform]map[string]string{
	PlatformMacOS: {
		"arm64":  "aarch64-apple-darwin",
		"x86_64": "x86_64-apple-darwin",
	},
	PlatformWindows: {
		"x86_64": "x86_64-pc-windows-msvc",
		"arm64":  "aarch64-pc-windows-msvc",
	},
	PlatformLinux: {
		"x86_64": "x86_64-unknown-linux-gnu",
		"arm64":  "aarch64-unknown-linux-gnu",
	},
}

// archOrder fixes the resolution order so universal builds are deterministic.
//
//nolint:gochecknoglobals // Static lookup table.
var archOrder = []string{"arm64", "x86_64"}

// hostArch maps the running process architecture to the short names used in
// the target table. Detected once and cached for the run.
//
//nolint:gochecknoglobals // Memoized host detection.
var hostArch = sync.OnceValue(func() string {
	switch runtime.GOARCH {
	case "arm64":
		return "arm64"
	default:
		return "x86_64"
	}
})

// DetectPlatform maps the running operating system to a Platform value.
func DetectPlatform() Platform {
	switch runtime.GOOS {
	case "darwin":
		return PlatformMacOS
	case "windows":
		return PlatformWindows
	default:
		return PlatformLinux
	}
}

// Resolve returns the ordered list of targets to build. When universal is set,
// every supported architecture for the platform is included; otherwise only
// the host's native architecture.
func Resolve(platform Platform, universal bool) ([]Target, error) {
	triples, ok := triplesByPlatform[platform]
	if !ok || len(triples) == 0 {
		return nil, &ErrUnsupportedPlatform{Platform: platform}
	}

	if !universal {
		arch := hostArch()

		triple, ok := triples[arch]
		if !ok {
			return nil, &ErrUnsupportedPlatform{Platform: platform}
		}

		return []Target{{Arch: arch, Triple: triple}}, nil
	}

	targets := make([]Target, 0, len(triples))

	for _, arch := range archOrder {
		if triple, ok := triples[arch]; ok {
			targets = append(targets, Target{Arch: arch, Triple: triple})
		}
	}

	return targets, nil
}
