package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"smart-parking/internal/parking"
)

// FileStore keeps the table in a single CSV file. Saves go through a
// temporary file in the same directory and a rename, so readers never see
// a partial table.
type FileStore struct {
	path     string
	location *time.Location
}

var _ parking.Store = (*FileStore)(nil)

func NewFileStore(path string, location *time.Location) *FileStore {
	if location == nil {
		location = time.Local
	}
	return &FileStore{path: path, location: location}
}

func (s *FileStore) Path() string {
	return s.path
}

// Load returns an error matching fs.ErrNotExist if the file is missing.
func (s *FileStore) Load(ctx context.Context) ([]parking.SlotRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := ReadTable(ctx, f, s.location)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return records, nil
}

func (s *FileStore) Save(ctx context.Context, capacity int, records []parking.SlotRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("creating temporary table: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("setting table permissions: %w", err)
	}

	if err := WriteTable(tmp, capacity, records, s.location); err != nil {
		tmp.Close()
		return fmt.Errorf("writing table: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing table: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing table: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}
	return nil
}
