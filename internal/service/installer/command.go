package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/geraldpeng6/sks-installer/internal/config"
	"github.com/geraldpeng6/sks-installer/internal/download"
	"github.com/geraldpeng6/sks-installer/internal/logger"
	"github.com/geraldpeng6/sks-installer/internal/platform"
	"github.com/geraldpeng6/sks-installer/internal/release"
	"github.com/geraldpeng6/sks-installer/internal/version"
)

// Options are inputs accepted by the installer entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// Release overrides the release version to download.
	// Empty means the installer's own build version.
	Release string
	// InstallDir overrides the destination directory from settings.
	InstallDir string
}

// runner holds the mutable state and helpers for a single install execution.
// It is intentionally unexported—call Run(ctx, Options) from callers.
type runner struct {
	cfg      *config.Config    // Installer settings loaded from YAML or defaults.
	source   release.Source    // Release coordinates derived from settings.
	fetcher  *download.Fetcher // Single-attempt artifact fetcher.
	osName   string            // Target OS identifier, GOOS vocabulary.
	archName string            // Target architecture identifier, GOARCH vocabulary.
	release  string            // Release version to download, taken verbatim.
	suffix   string            // Artifact suffix resolved for the platform.
	url      string            // Download URL of the artifact.
	destDir  string            // Directory receiving the binary.
	destPath string            // Final path of the installed binary.
}

// Run executes the install lifecycle and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "sks-installer")

	r, err := newRunner(ctx, opts)
	if err != nil {
		logger.ErrorKV(ctx, "Installer setup failed", "error", err)
		return err
	}

	if err = r.Run(ctx); err != nil {
		r.reportFailure(ctx, err)
		return err
	}

	return nil
}

// newRunner loads settings and wires the fetcher, without touching the network.
func newRunner(_ context.Context, opts *Options) (*runner, error) {
	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	if opts.InstallDir != "" {
		cfg.InstallDir = opts.InstallDir
	}

	releaseVersion := strings.TrimSpace(opts.Release)
	if releaseVersion == "" {
		releaseVersion = version.Short()
	}

	osName, archName := platform.Host()

	return &runner{
		cfg:    cfg,
		source: release.FromConfig(cfg),
		fetcher: download.New(
			download.WithTimeout(cfg.Timeout),
			download.WithUserAgent("sks-installer/"+version.Short()),
		),
		osName:   osName,
		archName: archName,
		release:  releaseVersion,
	}, nil
}

// Run executes the workflow for this runner instance:
// 1) Resolve the platform to an artifact suffix.
// 2) Build the download URL.
// 3) Prepare the install directory.
// 4) Download the artifact (or stage and swap over an existing install).
// 5) Mark the binary executable.
// 6) Print usage guidance for the installed tool.
func (r *runner) Run(ctx context.Context) error {
	// The platform decides everything else; resolve it before any I/O.
	if err := r.resolvePlatform(ctx); err != nil {
		return err
	}

	r.buildDownloadURL(ctx)

	if err := r.prepareInstallDir(ctx); err != nil {
		return err
	}

	r.warnIfTargetRunning(ctx)

	if err := r.downloadArtifact(ctx); err != nil {
		return err
	}

	if err := r.markExecutable(ctx); err != nil {
		return err
	}

	r.printSuccess(ctx)

	return nil
}

// resolvePlatform maps the host platform to the artifact suffix.
func (r *runner) resolvePlatform(ctx context.Context) error {
	suffix, err := platform.Resolve(r.osName, r.archName)
	if err != nil {
		return err
	}

	r.suffix = suffix
	logger.InfoKV(ctx, "Resolved target platform",
		"os", r.osName, "arch", r.archName, "artifact", r.source.AssetName(suffix))

	return nil
}

// buildDownloadURL renders the artifact URL; pure construction, no I/O.
func (r *runner) buildDownloadURL(ctx context.Context) {
	r.url = r.source.DownloadURL(r.release, r.suffix)
	logger.InfoKV(ctx, "Selected release artifact", "release", release.Tag(r.release), "url", r.url)
}

// prepareInstallDir creates the destination directory and computes the final path.
func (r *runner) prepareInstallDir(ctx context.Context) error {
	destDir := r.cfg.InstallDir
	if destDir == "" {
		dir, err := defaultInstallDir()
		if err != nil {
			return fmt.Errorf("locate default install directory: %w", err)
		}

		destDir = dir
	}

	if err := os.MkdirAll(destDir, defaultDirMode); err != nil {
		return fmt.Errorf("create install directory: %w", err)
	}

	r.destDir = destDir
	r.destPath = filepath.Join(destDir, platform.ExecutableName(r.osName, r.cfg.PackageName))

	logger.InfoKV(ctx, "Installing into", "path", r.destPath)

	return nil
}

// warnIfTargetRunning reports a running copy of the target binary.
// The install proceeds anyway: swapping a running binary keeps the old inode
// alive on POSIX systems, and the warning covers platforms where the swap
// may fail instead.
func (r *runner) warnIfTargetRunning(ctx context.Context) {
	running, err := isProcessRunning(filepath.Base(r.destPath))
	if err != nil {
		logger.Debugf(ctx, "Unable to scan processes: %v", err)
		return
	}

	if running {
		logger.WarnKV(ctx, "The target binary appears to be running; it will be replaced on disk",
			"binary", filepath.Base(r.destPath))
	}
}

// downloadArtifact fetches the artifact, streaming straight to the destination
// for fresh installs and staging a replacement for existing ones.
func (r *runner) downloadArtifact(ctx context.Context) error {
	if _, err := os.Stat(r.destPath); err == nil {
		return r.replaceExisting(ctx)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("inspect destination: %w", err)
	}

	logger.Info(ctx, "Downloading release artifact")

	if err := r.fetcher.Fetch(ctx, r.url, r.destPath); err != nil {
		return fmt.Errorf("download artifact: %w", err)
	}

	return nil
}

// replaceExisting downloads to a staging file and swaps it over the installed
// binary, so a failed download never damages a working install.
func (r *runner) replaceExisting(ctx context.Context) error {
	logger.InfoKV(ctx, "Existing install found, staging replacement", "path", r.destPath)

	staging, err := os.CreateTemp(r.destDir, stagingFilePattern)
	if err != nil {
		return fmt.Errorf("create staging file: %w", err)
	}

	stagingPath := staging.Name()
	if err = staging.Close(); err != nil {
		return fmt.Errorf("close staging file: %w", err)
	}

	// The staging file is internal state; never leave it behind.
	defer func() {
		if _, statErr := os.Stat(stagingPath); statErr == nil {
			_ = os.Remove(stagingPath)
		}
	}()

	if err = r.fetcher.Fetch(ctx, r.url, stagingPath); err != nil {
		return fmt.Errorf("download artifact: %w", err)
	}

	newBinary, err := os.Open(stagingPath)
	if err != nil {
		return fmt.Errorf("open staged artifact: %w", err)
	}

	defer func() {
		_ = newBinary.Close()
	}()

	options := goupdate.Options{
		TargetPath: r.destPath,
		TargetMode: executableFileMode,
	}
	if err = goupdate.Apply(newBinary, options); err != nil {
		return fmt.Errorf("apply replacement: %w", err)
	}

	oldPath := r.destPath + ".old"
	if _, err = os.Stat(oldPath); err == nil {
		_ = os.Remove(oldPath)
	}

	return nil
}

// markExecutable sets the executable bit on the installed binary.
// Windows has no executable bit, so the step is skipped there.
func (r *runner) markExecutable(ctx context.Context) error {
	if strings.Contains(strings.ToLower(r.osName), "windows") {
		logger.Debug(ctx, "Skipping permission step on Windows")
		return nil
	}

	if err := os.Chmod(r.destPath, executableFileMode); err != nil {
		return fmt.Errorf("mark binary executable: %w", err)
	}

	return nil
}

// printSuccess logs the install banner with usage guidance for the installed
// tool. The usage text mirrors the sks CLI's own help and is not interpreted here.
func (r *runner) printSuccess(ctx context.Context) {
	var builder strings.Builder

	builder.WriteString(r.cfg.PackageName)
	builder.WriteString(" ")
	builder.WriteString(release.Tag(r.release))
	builder.WriteString(" installed to ")
	builder.WriteString(r.destPath)
	builder.WriteString("\n\nUsage: ")
	builder.WriteString(r.cfg.PackageName)
	builder.WriteString(" <query>\n\nOptions:\n")
	builder.WriteString("  -l, --limit <number>  Maximum number of results (default: 10)\n")
	builder.WriteString("  -p, --page <number>   Page number (default: 1)\n")
	builder.WriteString("  -s, --sort <order>    Sort order: recent or stars (default: recent)\n")
	builder.WriteString("      --api-key <key>   API key, also read from SKILLSMP_API_KEY\n")
	builder.WriteString("  -h, --help            Show help\n")
	builder.WriteString("\nSearch example: ")
	builder.WriteString(r.cfg.PackageName)
	builder.WriteString(" \"code review\" --limit 5 --sort stars")

	logger.Info(ctx, builder.String())
}

// reportFailure explains what failed. Unsupported platforms get the resolver
// message alone, since no URL was built and no transfer was attempted.
// Anything past URL construction also prints likely causes and the exact URL
// for a manual retry.
func (r *runner) reportFailure(ctx context.Context, err error) {
	var unsupported *platform.UnsupportedError
	if errors.As(err, &unsupported) {
		logger.ErrorKV(ctx, "Cannot install on this platform", "error", err)
		return
	}

	logger.ErrorKV(ctx, "Installation failed", "error", err)

	if r.url == "" {
		return
	}

	var builder strings.Builder

	builder.WriteString("The download did not complete. Likely causes: ")
	builder.WriteString("a network problem interrupted the transfer, or release ")
	builder.WriteString(release.Tag(r.release))
	builder.WriteString(" is not published yet.\n")
	builder.WriteString("You can download the artifact manually from:\n")
	builder.WriteString(r.url)

	logger.Error(ctx, builder.String())
}
