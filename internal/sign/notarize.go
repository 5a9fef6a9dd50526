package sign

import (
	"context"
	"os"

	"github.com/cheesejaguar/oxide-release/internal/logger"
	"github.com/cheesejaguar/oxide-release/internal/tools"
)

// Notarization credential environment variables. Credentials are driven by
// environment configuration rather than flags because they are rarely used
// and security-sensitive.
const (
	// EnvNotaryAppleID holds the notarization account identifier.
	EnvNotaryAppleID = "OXIDE_NOTARY_APPLE_ID"
	// EnvNotaryTeamID holds the developer team identifier.
	EnvNotaryTeamID = "OXIDE_NOTARY_TEAM_ID"
	// EnvNotaryPassword holds the app-specific credential secret.
	EnvNotaryPassword = "OXIDE_NOTARY_PASSWORD"
)

// Credentials identifies the notarization account.
type Credentials struct {
	// AppleID is the account identifier.
	AppleID string
	// TeamID is the team/organization identifier.
	TeamID string
	// Password is the app-specific credential secret.
	Password string
}

// CredentialsFromEnv reads notarization credentials from the environment.
func CredentialsFromEnv() Credentials {
	return Credentials{
		AppleID:  os.Getenv(EnvNotaryAppleID),
		TeamID:   os.Getenv(EnvNotaryTeamID),
		Password: os.Getenv(EnvNotaryPassword),
	}
}

// Complete reports whether every credential field is present.
func (c Credentials) Complete() bool {
	return c.AppleID != "" && c.TeamID != "" && c.Password != ""
}

// Notarize submits an artifact to the notarization service, blocks until the
// service responds, and staples the approval ticket onto the original bundle
// rather than the submitted archive. Incomplete credentials make it a no-op;
// a failure is reported but never deletes the already-produced artifact.
// The wait is bounded only by ctx, the one genuine external-latency
// dependency in the pipeline.
func (m *Manager) Notarize(ctx context.Context, artifactPath, bundlePath string, creds Credentials) Result {
	if !creds.Complete() {
		return Result{Skipped: true, Reason: "notarization credentials incomplete"}
	}

	xcrun := m.locator.Locate(ctx, tools.ToolXcrun)
	if !xcrun.Found {
		return Result{Skipped: true, Reason: "xcrun not found"}
	}

	logger.InfoKV(ctx, "Submitting for notarization", "path", artifactPath)

	err := runSigner(ctx, xcrun.Path,
		"notarytool", "submit", artifactPath,
		"--apple-id", creds.AppleID,
		"--team-id", creds.TeamID,
		"--password", creds.Password,
		"--wait")
	if err != nil {
		return Result{Reason: err.Error()}
	}

	stapleTarget := bundlePath
	if stapleTarget == "" {
		stapleTarget = artifactPath
	}

	if err := runSigner(ctx, xcrun.Path, "stapler", "staple", stapleTarget); err != nil {
		return Result{Reason: err.Error()}
	}

	logger.InfoKV(ctx, "Notarization ticket stapled", "path", stapleTarget)

	return Result{Completed: true}
}
