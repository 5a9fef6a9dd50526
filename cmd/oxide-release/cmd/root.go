package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cheesejaguar/oxide-release/internal/config"
	"github.com/cheesejaguar/oxide-release/internal/format"
	"github.com/cheesejaguar/oxide-release/internal/logger"
	"github.com/cheesejaguar/oxide-release/internal/release"
	"github.com/cheesejaguar/oxide-release/internal/version"
)

var (
	// configPath to the release configuration YAML file.
	configPath string
	// logLevel overrides the default logging level.
	logLevel string
	// clean requests deleting prior build and output directories first.
	clean bool
	// universal requests a combined multi-architecture binary.
	universal bool
	// all requests every format the host platform supports, overriding
	// individual format selectors.
	all bool
	// signIdentity enables signing with the given identity.
	signIdentity string
	// publishDest is an optional s3://bucket/prefix upload destination.
	publishDest string
	// formatFlags maps each format selector flag to its value.
	formatFlags = map[format.Format]*bool{}

	// rootCmd represents the base command for producing release artifacts.
	rootCmd = &cobra.Command{
		Use:   "oxide-release",
		Short: "Build the browser and package it into distributable artifacts",
		Long: `Compiles the browser for the host platform and packages the result into
every requested distributable format: dmg and zip on macOS, installer and
portable archive on Windows, deb, AppImage and tarballs on Linux.

With no format flags, every format the host platform supports is produced.
A missing optional packaging tool skips that format with a warning; the
remaining formats still complete.`,
		Args: cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			options := &release.Options{
				ConfigPath:    configPath,
				Formats:       selectedFormats(),
				Universal:     universal,
				Clean:         clean,
				SignRequested: cobraCmd.Flags().Changed("sign"),
				SignIdentity:  signIdentity,
				PublishDest:   publishDest,
			}

			return release.Run(ctx, options)
		},
	}

	// initCmd writes a default configuration file to edit by hand.
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return config.Save(configPath, config.Default())
		},
	}
)

// selectedFormats collects the formats whose flags were set.
// Empty means every format the platform supports.
func selectedFormats() []format.Format {
	if all {
		return nil
	}

	selected := make([]format.Format, 0, len(formatFlags))

	for _, f := range formatOrder {
		if enabled, ok := formatFlags[f]; ok && *enabled {
			selected = append(selected, f)
		}
	}

	return selected
}

// formatOrder fixes the flag registration and selection order.
//
//nolint:gochecknoglobals // Static lookup table.
var formatOrder = []format.Format{
	format.FormatDMG,
	format.FormatZip,
	format.FormatInstaller,
	format.FormatPortable,
	format.FormatDeb,
	format.FormatAppImage,
	format.FormatTar,
}

// Execute runs the oxide-release CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "logging level (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&clean, "clean", false, "delete prior build and output directories first")
	rootCmd.Flags().BoolVar(&universal, "universal", false, "build every architecture and combine the binaries")
	rootCmd.Flags().BoolVar(&all, "all", false, "produce every format the host platform supports")
	rootCmd.Flags().StringVar(&signIdentity, "sign", "", "signing identity (keychain name or certificate file)")
	rootCmd.Flags().StringVar(&publishDest, "publish", "", "upload artifacts to s3://bucket/prefix after packaging")

	descriptions := map[format.Format]string{
		format.FormatDMG:       "produce the macOS disk image",
		format.FormatZip:       "produce the macOS bundle zip",
		format.FormatInstaller: "produce the Windows installer",
		format.FormatPortable:  "produce the portable archive",
		format.FormatDeb:       "produce the Debian package",
		format.FormatAppImage:  "produce the Linux AppImage",
		format.FormatTar:       "produce the Linux application tarball",
	}

	for _, f := range formatOrder {
		enabled := false
		formatFlags[f] = &enabled
		rootCmd.Flags().BoolVar(&enabled, string(f), false, descriptions[f])
	}

	rootCmd.AddCommand(initCmd)
}
