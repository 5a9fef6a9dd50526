package release

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cheesejaguar/oxide-release/internal/config"
	"github.com/cheesejaguar/oxide-release/internal/format"
	"github.com/cheesejaguar/oxide-release/internal/target"
)

// TestNewRequestDefaultsFormats fills the platform's full format list when
// none is requested.
func TestNewRequestDefaultsFormats(t *testing.T) {
	t.Parallel()

	req, err := NewRequest(config.Default(), target.PlatformLinux, nil,
		false, false, false, "", "")
	require.NoError(t, err)
	require.Equal(t, format.ByPlatform[target.PlatformLinux], req.Formats)
}

// TestNewRequestRejectsForeignFormat refuses a format the platform cannot
// produce, before any build step.
func TestNewRequestRejectsForeignFormat(t *testing.T) {
	t.Parallel()

	_, err := NewRequest(config.Default(), target.PlatformLinux,
		[]format.Format{format.FormatDMG}, false, false, false, "", "")

	var cfgErr *ErrConfiguration

	require.ErrorAs(t, err, &cfgErr)
	require.Contains(t, cfgErr.Reason, "dmg")
}

// TestNewRequestUniversalNeedsMacOS rejects combined builds elsewhere.
func TestNewRequestUniversalNeedsMacOS(t *testing.T) {
	t.Parallel()

	_, err := NewRequest(config.Default(), target.PlatformLinux, nil,
		true, false, false, "", "")

	var cfgErr *ErrConfiguration

	require.ErrorAs(t, err, &cfgErr)

	_, err = NewRequest(config.Default(), target.PlatformMacOS, nil,
		true, false, false, "", "")
	require.NoError(t, err)
}

// TestNewRequestSignNeedsIdentity rejects signing requested with an empty
// identity.
func TestNewRequestSignNeedsIdentity(t *testing.T) {
	t.Parallel()

	_, err := NewRequest(config.Default(), target.PlatformMacOS, nil,
		false, false, true, "", "")

	var cfgErr *ErrConfiguration

	require.ErrorAs(t, err, &cfgErr)
	require.Contains(t, cfgErr.Reason, "identity")
}

// TestNewRequestValidatesPublishDestination catches a malformed upload URL
// before the run starts.
func TestNewRequestValidatesPublishDestination(t *testing.T) {
	t.Parallel()

	_, err := NewRequest(config.Default(), target.PlatformLinux, nil,
		false, false, false, "", "ftp://mirror")

	var cfgErr *ErrConfiguration

	require.ErrorAs(t, err, &cfgErr)

	_, err = NewRequest(config.Default(), target.PlatformLinux, nil,
		false, false, false, "", "s3://releases/oxide")
	require.NoError(t, err)
}

// TestNewRequestValidatesConfig surfaces configuration problems as
// configuration errors.
func TestNewRequestValidatesConfig(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Identifier = "nodots"

	_, err := NewRequest(cfg, target.PlatformLinux, nil, false, false, false, "", "")

	var cfgErr *ErrConfiguration

	require.ErrorAs(t, err, &cfgErr)
}
