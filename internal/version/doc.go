// Package version exposes build metadata for the installer.
//
// Variables Version, Commit, and BuildTime are injected at build time via
// Go ldflags and default to sensible values for local builds. The version
// also names the sks release to download, mirroring how the released
// installer packages are pinned to one release line.
// Helper functions Short and Full render the version string for CLI output and logs.
package version
