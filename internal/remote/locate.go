package remote

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/franz/worshipnote/internal/fsio"
	"github.com/franz/worshipnote/internal/util"
)

// DatabaseSubdir is the conventional location of the database folder
// inside a cloud drive root.
const DatabaseSubdir = "WorshipNote/Database"

// Locate finds the cloud-synced database directory. An explicit directory
// wins; otherwise the OneDrive environment variables and conventional
// folder locations are probed for a WorshipNote/Database subdirectory.
func Locate(files fsio.Provider, explicit string) (string, error) {
	if explicit != "" {
		if !files.Exists(explicit) {
			return "", fmt.Errorf("%w: database directory %s does not exist", util.ErrRemoteUnavailable, explicit)
		}
		return explicit, nil
	}

	for _, root := range driveRoots() {
		candidate := filepath.Join(root, filepath.FromSlash(DatabaseSubdir))
		if files.Exists(candidate) {
			util.DebugLog("located database directory at %s", candidate)
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: no database directory found, set one explicitly", util.ErrRemoteUnavailable)
}

// driveRoots lists candidate cloud drive roots in probe order. The
// OneDrive client exports its folder via environment variables on
// Windows; elsewhere the conventional home subdirectories are tried.
func driveRoots() []string {
	var roots []string
	for _, env := range []string{"OneDriveConsumer", "OneDrive", "OneDriveCommercial"} {
		if dir := os.Getenv(env); dir != "" {
			roots = append(roots, dir)
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		roots = append(roots,
			filepath.Join(home, "OneDrive"),
			filepath.Join(home, "Library", "CloudStorage", "OneDrive-Personal"),
			home,
		)
	}
	return roots
}
