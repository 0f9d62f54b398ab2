package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/geraldpeng6/sks-installer/internal/config"
	"github.com/geraldpeng6/sks-installer/internal/platform"
	"github.com/geraldpeng6/sks-installer/internal/service/installer"
)

// sksBinary is the artifact body served by the fake release host.
const sksBinary = "#!/bin/sh\necho skills\n"

// hostSuffix resolves the artifact suffix for the machine running the tests.
func hostSuffix(t *testing.T) string {
	t.Helper()

	suffix, err := platform.Resolve(platform.Host())
	require.NoError(t, err)

	return suffix
}

// assetPath renders the release asset path GitHub would serve.
func assetPath(version, suffix string) string {
	return "/geraldpeng6/skillsmp/releases/download/v" + version + "/sks-" + suffix
}

// installedName is the binary filename expected on this host.
func installedName() string {
	osName, _ := platform.Host()
	return platform.ExecutableName(osName, config.DefaultPackageName)
}

// TestInstaller_Run_FreshInstall serves an artifact over HTTP and verifies the
// full pipeline installs it with executable permissions.
func TestInstaller_Run_FreshInstall(t *testing.T) {
	dir := t.TempDir()
	installDir := filepath.Join(dir, "bin")

	// Setup HTTP server serving the release artifact for this platform.
	mux := http.NewServeMux()
	mux.HandleFunc(assetPath("4.5.6", hostSuffix(t)), func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sksBinary))
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	// Create configuration file pointing to the test HTTP server.
	cfgPath := filepath.Join(dir, config.DefaultConfigFilename)
	cfg := &config.Config{
		BaseURL:    ts.URL,
		InstallDir: installDir,
	}

	require.NoError(t, config.Save(cfgPath, cfg))

	options := &installer.Options{
		ConfigPath: cfgPath,
		Release:    "4.5.6",
	}

	require.NoError(t, installer.Run(context.Background(), options))

	installed := filepath.Join(installDir, installedName())

	contents, err := os.ReadFile(installed)
	require.NoError(t, err)
	require.Equal(t, sksBinary, string(contents))

	if runtime.GOOS != "windows" {
		info, statErr := os.Stat(installed)
		require.NoError(t, statErr)
		require.Equal(t, os.FileMode(0o755), info.Mode().Perm())
	}
}

// TestInstaller_Run_FollowsReleaseRedirects mimics GitHub's asset hosting,
// which answers the release URL with a redirect to a storage host.
func TestInstaller_Run_FollowsReleaseRedirects(t *testing.T) {
	dir := t.TempDir()
	installDir := filepath.Join(dir, "bin")

	mux := http.NewServeMux()
	mux.HandleFunc(assetPath("4.5.6", hostSuffix(t)), func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/storage/artifact", http.StatusFound)
	})
	mux.HandleFunc("/storage/artifact", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sksBinary))
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	cfgPath := filepath.Join(dir, config.DefaultConfigFilename)
	require.NoError(t, config.Save(cfgPath, &config.Config{
		BaseURL:    ts.URL,
		InstallDir: installDir,
	}))

	require.NoError(t, installer.Run(context.Background(), &installer.Options{
		ConfigPath: cfgPath,
		Release:    "4.5.6",
	}))

	contents, err := os.ReadFile(filepath.Join(installDir, installedName()))
	require.NoError(t, err)
	require.Equal(t, sksBinary, string(contents))
}

// TestInstaller_Run_MissingRelease verifies a 404 fails the install and the
// partial destination file of a fresh install stays behind for inspection.
func TestInstaller_Run_MissingRelease(t *testing.T) {
	dir := t.TempDir()
	installDir := filepath.Join(dir, "bin")

	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	cfgPath := filepath.Join(dir, config.DefaultConfigFilename)
	require.NoError(t, config.Save(cfgPath, &config.Config{
		BaseURL:    ts.URL,
		InstallDir: installDir,
	}))

	err := installer.Run(context.Background(), &installer.Options{
		ConfigPath: cfgPath,
		Release:    "0.0.0-unpublished",
	})
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(installDir, installedName()))
	require.NoError(t, statErr)
}

// TestInstaller_Run_UpgradeKeepsWorkingBinaryOnFailure pre-installs a binary
// and confirms a failed upgrade leaves it untouched.
func TestInstaller_Run_UpgradeKeepsWorkingBinaryOnFailure(t *testing.T) {
	dir := t.TempDir()
	installDir := filepath.Join(dir, "bin")
	require.NoError(t, os.MkdirAll(installDir, 0o755))

	installed := filepath.Join(installDir, installedName())
	require.NoError(t, os.WriteFile(installed, []byte("working"), 0o755))

	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	cfgPath := filepath.Join(dir, config.DefaultConfigFilename)
	require.NoError(t, config.Save(cfgPath, &config.Config{
		BaseURL:    ts.URL,
		InstallDir: installDir,
	}))

	err := installer.Run(context.Background(), &installer.Options{ConfigPath: cfgPath})
	require.Error(t, err)

	contents, readErr := os.ReadFile(installed)
	require.NoError(t, readErr)
	require.Equal(t, "working", string(contents))
}
