// Package datastore provides settings.DataSlot implementations: a JSON file
// beside the memos, or a row in a shared PostgreSQL table.
package datastore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xob0t/memocard/pkg/settings"
)

// FileSlot keeps the blob in a single file.
type FileSlot struct {
	Path string
}

var _ settings.DataSlot = (*FileSlot)(nil)

// LoadData returns the file contents, or nil if the file does not exist yet.
func (f *FileSlot) LoadData(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", f.Path, err)
	}
	return data, nil
}

// SaveData replaces the file atomically.
func (f *FileSlot) SaveData(ctx context.Context, data []byte) error {
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".data-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("replace %s: %w", f.Path, err)
	}
	return nil
}
