package release

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/geraldpeng6/sks-installer/internal/config"
)

// TestDownloadURL pins the exact URL shape GitHub serves release assets from.
func TestDownloadURL(t *testing.T) {
	t.Parallel()

	src := FromConfig(config.Default())

	url := src.DownloadURL("1.2.0", "darwin-aarch64")
	require.Equal(t,
		"https://github.com/geraldpeng6/skillsmp/releases/download/v1.2.0/sks-darwin-aarch64",
		url)

	// Same inputs, same output: construction has no hidden state.
	require.Equal(t, url, src.DownloadURL("1.2.0", "darwin-aarch64"))
}

// TestDownloadURLVerbatimVersion ensures versions are interpolated untouched.
func TestDownloadURLVerbatimVersion(t *testing.T) {
	t.Parallel()

	src := Source{BaseURL: "https://mirror.local", Owner: "o", Repo: "r", Package: "p"}
	require.Equal(t,
		"https://mirror.local/o/r/releases/download/vnot-a-semver/p-linux-x86_64",
		src.DownloadURL("not-a-semver", "linux-x86_64"))
}

// TestAssetName checks the Windows asset keeps its extension inside the suffix.
func TestAssetName(t *testing.T) {
	t.Parallel()

	src := FromConfig(config.Default())
	require.Equal(t, "sks-windows-x86_64.exe", src.AssetName("windows-x86_64.exe"))
	require.Equal(t, "sks-linux-x86_64", src.AssetName("linux-x86_64"))
}
