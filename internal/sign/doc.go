// Package sign applies code signatures and notarization to produced
// artifacts. Both operations are best-effort enhancement layers over an
// otherwise-complete package: missing configuration or tools skip the step
// with a recorded reason, and a failed attempt degrades the artifact to
// unsigned instead of failing the run.
package sign
