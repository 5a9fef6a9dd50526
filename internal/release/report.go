package release

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/gookit/color"
	"lukechampine.com/blake3"

	"github.com/cheesejaguar/oxide-release/internal/format"
	"github.com/cheesejaguar/oxide-release/internal/target"
)

// OutcomeKind classifies what happened to one requested format.
type OutcomeKind string

const (
	// OutcomeProduced means the artifact exists in the output directory.
	OutcomeProduced OutcomeKind = "produced"
	// OutcomeSkipped means a required external tool was absent.
	OutcomeSkipped OutcomeKind = "skipped"
	// OutcomeFailed means assembly or packaging for the format failed.
	OutcomeFailed OutcomeKind = "failed"
)

// Outcome is the final word on one requested format.
type Outcome struct {
	// Format is the requested output type.
	Format format.Format
	// Kind says whether the format was produced, skipped or failed.
	Kind OutcomeKind
	// Artifact is the produced file path, empty unless Kind is produced.
	Artifact string
	// Checksum is the hex BLAKE3 digest of the produced artifact.
	Checksum string
	// Signed records whether the artifact was signed in place.
	Signed bool
	// Reason explains a skip or failure.
	Reason string
}

// Report is the terminal state of a release run. It always carries exactly
// one outcome per requested format, plus every warning accumulated along
// the way.
type Report struct {
	// Platform is the operating system the run packaged for.
	Platform target.Platform
	// Arch names the built architecture ("universal" for combined builds).
	Arch string
	// SignRequested mirrors the request so the report can show an empty
	// signing section when signing was never asked for.
	SignRequested bool
	// Outcomes holds one entry per requested format, in request order.
	Outcomes []Outcome
	// Warnings collects every downgraded failure. They are printed in the
	// final report, never only logged.
	Warnings []string
}

// Produced records a successful format, checksumming the artifact.
func (r *Report) Produced(artifact format.Artifact) {
	out := Outcome{
		Format:   artifact.Format,
		Kind:     OutcomeProduced,
		Artifact: artifact.Path,
		Signed:   artifact.Signed,
	}

	if sum, err := fileChecksum(artifact.Path); err == nil {
		out.Checksum = sum
	} else {
		r.Warnf("checksum %s: %v", artifact.Path, err)
	}

	r.Outcomes = append(r.Outcomes, out)
}

// Skipped records a format whose required tool was absent.
func (r *Report) Skipped(f format.Format, reason string) {
	r.Outcomes = append(r.Outcomes, Outcome{Format: f, Kind: OutcomeSkipped, Reason: reason})
	r.Warnf("%s skipped: %s", string(f), reason)
}

// Failed records a format whose assembly or packaging failed.
func (r *Report) Failed(f format.Format, err error) {
	r.Outcomes = append(r.Outcomes, Outcome{Format: f, Kind: OutcomeFailed, Reason: err.Error()})
	r.Warnf("%s failed: %v", string(f), err)
}

// Warnf appends a formatted warning.
func (r *Report) Warnf(msg string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(msg, args...))
}

// MarkSigned flips the signed flag on the outcome owning the artifact path.
func (r *Report) MarkSigned(artifactPath string) {
	for i := range r.Outcomes {
		if r.Outcomes[i].Artifact == artifactPath {
			r.Outcomes[i].Signed = true
		}
	}
}

// ProducedCount returns how many requested formats yielded an artifact.
func (r *Report) ProducedCount() int {
	count := 0

	for _, out := range r.Outcomes {
		if out.Kind == OutcomeProduced {
			count++
		}
	}

	return count
}

// AllFailed reports whether every requested format ended in failure.
// Skips do not count: a run where every format was skipped for missing
// tools is still a success.
func (r *Report) AllFailed() bool {
	if len(r.Outcomes) == 0 {
		return false
	}

	for _, out := range r.Outcomes {
		if out.Kind != OutcomeFailed {
			return false
		}
	}

	return true
}

// Print writes the human-readable report to stdout.
func (r *Report) Print() {
	color.Bold.Printf("\nRelease report (%s, %s)\n", string(r.Platform), r.Arch)

	for _, out := range r.Outcomes {
		switch out.Kind {
		case OutcomeProduced:
			color.Green.Printf("  %-10s %s\n", string(out.Format), out.Artifact)

			if out.Checksum != "" {
				fmt.Printf("  %-10s blake3:%s\n", "", out.Checksum)
			}
		case OutcomeSkipped:
			color.Note.Printf("  %-10s skipped: %s\n", string(out.Format), out.Reason)
		case OutcomeFailed:
			color.Danger.Printf("  %-10s failed: %s\n", string(out.Format), out.Reason)
		}
	}

	if r.SignRequested {
		color.Bold.Println("Signing")

		for _, out := range r.Outcomes {
			if out.Kind != OutcomeProduced {
				continue
			}

			if out.Signed {
				color.Green.Printf("  %-10s signed\n", string(out.Format))
			} else {
				color.Note.Printf("  %-10s unsigned\n", string(out.Format))
			}
		}
	}

	if len(r.Warnings) > 0 {
		color.Warn.Println("Warnings")

		for _, warning := range r.Warnings {
			color.Warn.Printf("  %s\n", warning)
		}
	}
}

// fileChecksum returns the hex BLAKE3 digest of a file.
func fileChecksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := blake3.New(32, nil)
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
