package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/geraldpeng6/sks-installer/internal/config"
	"github.com/geraldpeng6/sks-installer/internal/logger"
	"github.com/geraldpeng6/sks-installer/internal/service/installer"
	"github.com/geraldpeng6/sks-installer/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// releaseVersion overrides the release to download.
	releaseVersion string
	// installDir overrides the destination directory.
	installDir string
	// logLevel adjusts logging verbosity.
	logLevel string

	// rootCmd represents the base command for downloading and installing sks.
	rootCmd = &cobra.Command{
		Use:   "sks-installer",
		Short: "Download and install the sks search CLI",
		Long: `Installs the sks semantic search CLI from GitHub releases.

The installer resolves the current OS and architecture to a published release
artifact, downloads it into a bin directory next to the installer (or into a
configured directory), and marks it executable. When sks is already installed,
the binary is replaced atomically.`,
		Args: cobra.NoArgs,
		// A failed install ends with a diagnostic block; the flag summary
		// would only bury it.
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			options := &installer.Options{
				ConfigPath: configPath,
				Release:    releaseVersion,
				InstallDir: installDir,
			}

			return installer.Run(ctx, options)
		},
	}
)

// Execute runs the sks-installer CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "",
		"path to configuration file (default "+config.DefaultConfigFilename+" if present)")
	rootCmd.Flags().StringVarP(&releaseVersion, "release", "r", "",
		"release version to install (default: the installer's own version)")
	rootCmd.Flags().StringVarP(&installDir, "dir", "d", "",
		"install directory (default: bin directory next to the installer)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info",
		"logging level (debug, info, warn, error)")
}
