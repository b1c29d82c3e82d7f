package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains all the application paths
// This is the single source of truth for file paths in the application
type Paths struct {
	ExecutableDir string
	DataDir       string
	UploadsDir    string
	ExportsDir    string
	LogsDir       string

	// Well-known data files
	SnapshotFile string
}

// GetPaths returns the application paths relative to the executable location.
// All paths are relative to the executable directory, never the current
// working directory, so the binary behaves the same wherever it is launched
// from.
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %v", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}

	exeDir := filepath.Dir(exe)
	dataDir := filepath.Join(exeDir, "data")

	paths := &Paths{
		ExecutableDir: exeDir,
		DataDir:       dataDir,
		UploadsDir:    filepath.Join(dataDir, "uploads"),
		ExportsDir:    filepath.Join(dataDir, "exports"),
		LogsDir:       filepath.Join(exeDir, "logs"),

		SnapshotFile: filepath.Join(dataDir, "territory-customers.json"),
	}

	return paths, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.UploadsDir,
		p.ExportsDir,
		p.LogsDir,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
	}

	return nil
}

// GetRelativePath returns a path relative to the executable directory
func (p *Paths) GetRelativePath(subpath string) string {
	return filepath.Join(p.ExecutableDir, subpath)
}

// GetUploadPath returns the path for a stored upload
func (p *Paths) GetUploadPath(filename string) string {
	return filepath.Join(p.UploadsDir, filename)
}

// GetExportPath returns the path for a generated export file
func (p *Paths) GetExportPath(filename string) string {
	return filepath.Join(p.ExportsDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
