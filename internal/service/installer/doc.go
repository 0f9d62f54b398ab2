// Package installer downloads and installs the sks binary for the current
// platform.
//
// It resolves the host OS/architecture to a published release artifact,
// streams it into the configured directory (by default a bin directory next
// to the installer), marks it executable and prints usage guidance. When a
// previous install exists, the new binary is staged and swapped atomically
// instead of overwritten in place. Artifacts are not checksum-verified;
// transport security is the trust boundary.
package installer
