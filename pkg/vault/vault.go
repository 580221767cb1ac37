// Package vault persists memo payloads under a storage root. The root is
// reached through a FileSystem adapter, so the same Persist flow writes to
// a local directory, an S3 bucket, or memory.
package vault

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

var (
	// ErrIO marks every failure surfaced by Persist.
	ErrIO = errors.New("vault: i/o failure")
	// ErrOutsideRoot is returned for paths that climb above the storage root.
	ErrOutsideRoot = errors.New("vault: path escapes storage root")
)

// PathError records the operation and path that failed.
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() []error {
	return []error{ErrIO, e.Err}
}

// FileSystem is the adapter over a storage root. Paths are relative to the
// root and slash separated.
type FileSystem interface {
	Exists(ctx context.Context, p string) (bool, error)
	Mkdir(ctx context.Context, p string) error
	WriteBinary(ctx context.Context, p string, data []byte) error
}

// NormalizePath converts p to the canonical root-relative form: forward
// slashes, no duplicate or trailing separators, no leading slash. The root
// itself is ".".
func NormalizePath(p string) string {
	p = strings.ReplaceAll(strings.TrimSpace(p), `\`, "/")
	p = strings.TrimLeft(path.Clean(p), "/")
	if p == "" {
		return "."
	}
	return p
}

// Persist writes data to p, creating the parent directory when it does not
// exist yet. An existing file at p is overwritten. It returns the normalized
// path that was written.
func Persist(ctx context.Context, fsys FileSystem, p string, data []byte) (string, error) {
	norm := NormalizePath(p)
	if norm == "." || strings.HasSuffix(p, "/") {
		return "", &PathError{Op: "write", Path: p, Err: errors.New("not a file path")}
	}

	if dir := path.Dir(norm); dir != "." {
		exists, err := fsys.Exists(ctx, dir)
		if err != nil {
			return "", wrap("stat", dir, err)
		}
		if !exists {
			if err := fsys.Mkdir(ctx, dir); err != nil {
				return "", wrap("mkdir", dir, err)
			}
		}
	}

	if err := fsys.WriteBinary(ctx, norm, data); err != nil {
		return "", wrap("write", norm, err)
	}
	return norm, nil
}

func wrap(op, p string, err error) error {
	var pe *PathError
	if errors.As(err, &pe) {
		return err
	}
	return &PathError{Op: op, Path: p, Err: err}
}

// escapes reports whether a normalized path leaves the root.
func escapes(norm string) bool {
	return norm == ".." || strings.HasPrefix(norm, "../")
}
