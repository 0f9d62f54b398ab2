package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the release coordinates and install parameters of the installer.
type Config struct {
	// ReleaseOwner is the GitHub account publishing sks releases.
	ReleaseOwner string `yaml:"release_owner"`
	// ReleaseRepo is the repository under ReleaseOwner holding the releases.
	ReleaseRepo string `yaml:"release_repo"`
	// PackageName is the base name of the release assets and of the installed binary.
	PackageName string `yaml:"package_name"`
	// BaseURL is the scheme and host that release URLs are built on.
	BaseURL string `yaml:"base_url"`
	// InstallDir is the directory receiving the binary. When empty, a "bin"
	// directory next to the installer executable is used.
	InstallDir string `yaml:"install_dir"`
	// Timeout bounds the whole artifact transfer. Zero means no limit.
	Timeout time.Duration `yaml:"timeout"`
}

const (
	// DefaultConfigFilename is the default filename for installer settings.
	DefaultConfigFilename = "sks-installer.yaml"

	// DefaultReleaseOwner is the GitHub account publishing sks.
	DefaultReleaseOwner = "geraldpeng6"

	// DefaultReleaseRepo is the repository holding sks releases.
	DefaultReleaseRepo = "skillsmp"

	// DefaultPackageName is the binary installed on the target machine.
	DefaultPackageName = "sks"

	// DefaultBaseURL is the host GitHub serves release downloads from.
	DefaultBaseURL = "https://github.com"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errNegativeTimeout is returned when the transfer timeout is negative.
	errNegativeTimeout = errors.New("timeout must not be negative")
)

// Default returns settings pointing at the official sks releases.
func Default() *Config {
	return &Config{
		ReleaseOwner: DefaultReleaseOwner,
		ReleaseRepo:  DefaultReleaseRepo,
		PackageName:  DefaultPackageName,
		BaseURL:      DefaultBaseURL,
	}
}

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrDefault behaves like Load, except that a missing default settings file
// is not an error: the built-in defaults are returned instead. An explicitly
// provided path must exist.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		cfg, err := Load(DefaultConfigFilename)
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return cfg, err
	}

	return Load(path)
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills empty fields with defaults.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	// Fall back to the official release coordinates field by field,
	// so a partial settings file overrides only what it names.
	if settings.ReleaseOwner == "" {
		settings.ReleaseOwner = DefaultReleaseOwner
	}

	if settings.ReleaseRepo == "" {
		settings.ReleaseRepo = DefaultReleaseRepo
	}

	if settings.PackageName == "" {
		settings.PackageName = DefaultPackageName
	}

	if settings.BaseURL == "" {
		settings.BaseURL = DefaultBaseURL
	}

	if settings.Timeout < 0 {
		return errNegativeTimeout
	}

	if _, err := url.ParseRequestURI(settings.BaseURL); err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}

	return nil
}
