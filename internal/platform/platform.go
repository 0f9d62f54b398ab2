package platform

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
)

// keySeparator joins the OS and architecture identifiers into a table key.
const keySeparator = "-"

// artifactSuffixes maps "<os>-<arch>" keys to the suffix of the release asset
// built for that platform. Supporting a new platform is one more row here.
// The Windows suffix carries the .exe extension because the published
// artifact name does.
//
//nolint:gochecknoglobals // Static lookup table, never mutated.
var artifactSuffixes = map[string]string{
	"darwin-amd64":  "darwin-x86_64",
	"darwin-arm64":  "darwin-aarch64",
	"linux-amd64":   "linux-x86_64",
	"windows-amd64": "windows-x86_64.exe",
}

// UnsupportedError reports an OS/architecture pair with no published artifact.
type UnsupportedError struct {
	// Key is the "<os>-<arch>" pair that had no table entry.
	Key string
}

// Error lists the attempted pair and every supported one, so the operator
// sees immediately whether a typo or a real gap is at fault.
func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("platform %s is not supported, supported platforms: %s",
		e.Key, strings.Join(SupportedKeys(), ", "))
}

// Key builds the lookup key for an OS/architecture pair.
func Key(osName, archName string) string {
	return osName + keySeparator + archName
}

// Resolve maps an OS/architecture pair to the release artifact suffix.
// Identifiers use the Go runtime vocabulary (GOOS/GOARCH).
func Resolve(osName, archName string) (string, error) {
	key := Key(osName, archName)

	suffix, ok := artifactSuffixes[key]
	if !ok {
		return "", &UnsupportedError{Key: key}
	}

	return suffix, nil
}

// Host returns the OS and architecture of the running process.
func Host() (osName, archName string) {
	return runtime.GOOS, runtime.GOARCH
}

// SupportedKeys returns the sorted "<os>-<arch>" pairs with published artifacts.
func SupportedKeys() []string {
	keys := make([]string, 0, len(artifactSuffixes))
	for key := range artifactSuffixes {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// ExecutableName appends the Windows executable extension to the base name
// when the OS requires one.
func ExecutableName(osName, base string) string {
	if strings.Contains(strings.ToLower(osName), "windows") {
		return base + ".exe"
	}

	return base
}
