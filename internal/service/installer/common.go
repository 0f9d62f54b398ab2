package installer

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/go-ps"
)

const (
	// executableFileMode is applied to the installed binary.
	executableFileMode os.FileMode = 0o755

	// defaultDirMode is applied to directories created for the install.
	defaultDirMode os.FileMode = 0o755

	// binSubdirectory is created next to the installer when no install
	// directory is configured, mirroring the layout of released bundles.
	binSubdirectory = "bin"

	// stagingFilePattern names temporary artifacts downloaded next to an
	// existing install before the swap.
	stagingFilePattern = ".sks-download-*"
)

// defaultInstallDir returns the bin directory next to the installer executable.
func defaultInstallDir() (string, error) {
	executablePath, err := os.Executable()
	if err != nil {
		return "", err
	}

	return filepath.Join(filepath.Dir(executablePath), binSubdirectory), nil
}

// isProcessRunning reports whether another process with the given executable
// name is currently alive.
func isProcessRunning(executableName string) (bool, error) {
	processList, err := ps.Processes()
	if err != nil {
		return false, err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() == executableName {
			return true, nil
		}
	}

	return false, nil
}
