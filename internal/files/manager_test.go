package files

import (
	"path/filepath"

	"salescli/internal/config"
)

// testPaths builds an executable-relative path layout rooted at base.
func testPaths(base string) *config.Paths {
	dataDir := filepath.Join(base, "data")
	return &config.Paths{
		ExecutableDir: base,
		DataDir:       dataDir,
		UploadsDir:    filepath.Join(dataDir, "uploads"),
		ExportsDir:    filepath.Join(dataDir, "exports"),
		LogsDir:       filepath.Join(base, "logs"),
		SnapshotFile:  filepath.Join(dataDir, "territory-customers.json"),
	}
}
