package version

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// TestFullCarriesBuildMetadata includes every injected field.
func TestFullCarriesBuildMetadata(t *testing.T) {
	t.Parallel()

	full := Full()
	require.Contains(t, full, Version)
	require.Contains(t, full, Commit)
	require.Contains(t, full, BuildTime)
}

// TestAttachCobraVersionCommand wires both the --version output and the
// version subcommand.
func TestAttachCobraVersionCommand(t *testing.T) {
	t.Parallel()

	root := &cobra.Command{Use: "oxide-release"}
	AttachCobraVersionCommand(root)

	require.Equal(t, Short(), root.Version)

	var out bytes.Buffer

	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	require.Contains(t, out.String(), Full())
}
