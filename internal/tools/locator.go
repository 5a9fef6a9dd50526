package tools

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/cheesejaguar/oxide-release/internal/logger"
)

// Handle is the resolved location of an external tool, or an explicit
// absence marker. Absence is not an error by itself; callers decide whether
// a missing tool is fatal, skips one output format, or skips signing only.
type Handle struct {
	// Name is the logical tool name that was probed for.
	Name string
	// Path is the resolved executable path; empty when the tool is absent.
	Path string
	// Variant tags which installed flavor was found (e.g., "wix3" vs "wix4").
	Variant string
	// Found reports whether any candidate resolved.
	Found bool
}

// Candidate is one place a tool may live. Absolute paths are stat'ed
// directly; bare names are resolved through the command search path.
type Candidate struct {
	// Path is an absolute file path or a bare command name.
	Path string
	// Variant is recorded on the handle when this candidate matches.
	Variant string
}

// Locator resolves external tools, memoizing each answer for the run.
// A tool is probed at most once; a run never observes a tool appearing
// or disappearing halfway through.
type Locator struct {
	mu    sync.Mutex
	cache map[string]Handle
}

// NewLocator returns an empty locator.
func NewLocator() *Locator {
	return &Locator{cache: make(map[string]Handle)}
}

// Locate resolves a tool by its logical name using the built-in candidate
// lists. Unknown names resolve through the command search path only.
func (l *Locator) Locate(ctx context.Context, name string) Handle {
	candidates, ok := defaultCandidates[name]
	if !ok {
		candidates = []Candidate{{Path: name}}
	}

	return l.Probe(ctx, name, candidates)
}

// Probe resolves a tool against an explicit candidate list, first match wins.
// The result (including absence) is memoized under the given name.
func (l *Locator) Probe(ctx context.Context, name string, candidates []Candidate) Handle {
	l.mu.Lock()
	defer l.mu.Unlock()

	if handle, ok := l.cache[name]; ok {
		return handle
	}

	handle := Handle{Name: name}

	for _, candidate := range candidates {
		if resolved, ok := resolveCandidate(candidate); ok {
			handle.Path = resolved
			handle.Variant = candidate.Variant
			handle.Found = true

			break
		}
	}

	if handle.Found {
		logger.DebugKV(ctx, "Located tool", "name", name, "path", handle.Path, "variant", handle.Variant)
	} else {
		logger.DebugKV(ctx, "Tool not found", "name", name)
	}

	l.cache[name] = handle

	return handle
}

// Seed records a pre-resolved handle, bypassing probing.
// Used when a tool is provisioned by the run itself (a downloaded packer).
func (l *Locator) Seed(handle Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cache[handle.Name] = handle
}

// resolveCandidate checks a single candidate location.
func resolveCandidate(candidate Candidate) (string, bool) {
	if candidate.Path == "" {
		return "", false
	}

	// Absolute paths are checked directly so that well-known install
	// locations win over whatever happens to be on PATH.
	if filepath.IsAbs(candidate.Path) {
		info, err := os.Stat(candidate.Path)
		if err != nil || info.IsDir() {
			return "", false
		}

		return candidate.Path, true
	}

	resolved, err := exec.LookPath(candidate.Path)
	if err != nil {
		return "", false
	}

	return resolved, true
}
