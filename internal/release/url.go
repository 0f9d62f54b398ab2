package release

import (
	"fmt"

	"github.com/geraldpeng6/sks-installer/internal/config"
)

// Source identifies where release artifacts are published.
// Its methods are pure string construction with no validation or I/O, so a
// rendered URL is reproducible for retrying a failed download by hand.
type Source struct {
	// BaseURL is the scheme and host, e.g. https://github.com.
	BaseURL string
	// Owner is the account publishing the releases.
	Owner string
	// Repo is the repository holding the releases.
	Repo string
	// Package is the base name shared by all release assets.
	Package string
}

// FromConfig builds a Source from validated installer settings.
func FromConfig(cfg *config.Config) Source {
	return Source{
		BaseURL: cfg.BaseURL,
		Owner:   cfg.ReleaseOwner,
		Repo:    cfg.ReleaseRepo,
		Package: cfg.PackageName,
	}
}

// Tag renders the git tag of a release version ("1.2.0" becomes "v1.2.0").
// The version string is interpolated verbatim and never validated.
func Tag(version string) string {
	return "v" + version
}

// AssetName renders the artifact filename for a platform suffix.
func (s Source) AssetName(suffix string) string {
	return s.Package + "-" + suffix
}

// DownloadURL renders the direct download URL of one release asset.
func (s Source) DownloadURL(version, suffix string) string {
	return fmt.Sprintf("%s/%s/%s/releases/download/%s/%s",
		s.BaseURL, s.Owner, s.Repo, Tag(version), s.AssetName(suffix))
}
