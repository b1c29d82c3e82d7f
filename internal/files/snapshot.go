package files

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	apperrors "salescli/internal/errors"
	"salescli/pkg/contracts/domain"
)

// Snapshot is the on-disk representation of a loaded dataset.
type Snapshot struct {
	SavedAt   time.Time         `json:"saved_at"`
	Customers []domain.Customer `json:"customers"`
}

// SnapshotStore persists the aggregated customer collection as a JSON file
// so a restart can restore the last loaded dataset without re-ingesting the
// source export.
type SnapshotStore struct {
	path   string
	logger *slog.Logger
}

// NewSnapshotStore creates a store writing to the given file path.
func NewSnapshotStore(path string, logger *slog.Logger) *SnapshotStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotStore{
		path:   path,
		logger: logger.With(slog.String("component", "snapshot_store")),
	}
}

// Path returns the snapshot file location.
func (s *SnapshotStore) Path() string {
	return s.path
}

// Save writes the customer collection atomically: the snapshot is written to
// a temp file in the same directory and renamed over the target, so a crash
// mid-write never leaves a half-written snapshot behind.
func (s *SnapshotStore) Save(customers []domain.Customer) error {
	snapshot := Snapshot{
		SavedAt:   time.Now().UTC(),
		Customers: customers,
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return apperrors.NewStorageError("failed to encode snapshot", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.NewStorageError("failed to create snapshot directory", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return apperrors.NewStorageError("failed to create temp snapshot", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperrors.NewStorageError("failed to write snapshot", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperrors.NewStorageError("failed to sync snapshot", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperrors.NewStorageError("failed to close temp snapshot", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return apperrors.NewStorageError("failed to replace snapshot", err)
	}

	s.logger.Info("snapshot saved",
		slog.String("path", s.path),
		slog.Int("customers", len(customers)))

	return nil
}

// Load reads the snapshot from disk. A missing file returns ErrSnapshotMissing
// and a file that cannot be read or decoded returns ErrSnapshotCorrupt;
// callers treat all of these as "no saved data" rather than a fatal failure.
func (s *SnapshotStore) Load() (*Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.ErrSnapshotMissing
		}
		s.logger.Warn("snapshot unreadable, ignoring",
			slog.String("path", s.path),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrSnapshotCorrupt, err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		s.logger.Warn("snapshot corrupted, ignoring",
			slog.String("path", s.path),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrSnapshotCorrupt, err)
	}

	s.logger.Info("snapshot loaded",
		slog.String("path", s.path),
		slog.Time("saved_at", snapshot.SavedAt),
		slog.Int("customers", len(snapshot.Customers)))

	return &snapshot, nil
}

// Delete removes the snapshot file. Deleting a missing snapshot is not an
// error.
func (s *SnapshotStore) Delete() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return apperrors.NewStorageError("failed to delete snapshot", err)
	}
	return nil
}

// Exists reports whether a snapshot file is present on disk.
func (s *SnapshotStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}
