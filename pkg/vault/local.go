package vault

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalFS is a FileSystem rooted at a directory on disk.
type LocalFS struct {
	Root string
}

var _ FileSystem = LocalFS{}

func (l LocalFS) resolve(p string) (string, error) {
	norm := NormalizePath(p)
	if escapes(norm) {
		return "", &PathError{Op: "resolve", Path: p, Err: ErrOutsideRoot}
	}
	return filepath.Join(l.Root, filepath.FromSlash(norm)), nil
}

// Exists reports whether p exists.
func (l LocalFS) Exists(ctx context.Context, p string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	full, err := l.resolve(p)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Mkdir creates directory p, and the root if it is missing.
func (l LocalFS) Mkdir(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := l.resolve(p)
	if err != nil {
		return err
	}
	return os.MkdirAll(full, 0o755)
}

// WriteBinary writes data to p, replacing any existing file.
func (l LocalFS) WriteBinary(ctx context.Context, p string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := l.resolve(p)
	if err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}
