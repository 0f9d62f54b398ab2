// Package platform maps the running OS and architecture to the matching
// release artifact.
//
// The mapping is a static table keyed by "<os>-<arch>" in GOOS/GOARCH
// vocabulary; pairs without a published artifact resolve to an
// UnsupportedError listing every supported pair.
package platform
