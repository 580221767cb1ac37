package vault

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"sync"
)

// Call is one recorded FileSystem operation.
type Call struct {
	Op   string
	Path string
}

// MemFS is an in-memory FileSystem that records every call. Writes into a
// directory that was never created fail like they would on disk.
type MemFS struct {
	mu    sync.Mutex
	dirs  map[string]bool
	files map[string][]byte
	calls []Call

	// Fail makes the named operation ("exists", "mkdir", "write") return
	// the given error.
	Fail map[string]error
}

var _ FileSystem = (*MemFS)(nil)

// NewMemFS returns an empty file system with the given directories present.
func NewMemFS(dirs ...string) *MemFS {
	m := &MemFS{
		dirs:  map[string]bool{".": true},
		files: make(map[string][]byte),
	}
	for _, d := range dirs {
		m.dirs[NormalizePath(d)] = true
	}
	return m
}

func (m *MemFS) record(op, p string) (string, error) {
	m.calls = append(m.calls, Call{Op: op, Path: p})
	if err := m.Fail[op]; err != nil {
		return "", err
	}
	norm := NormalizePath(p)
	if escapes(norm) {
		return "", ErrOutsideRoot
	}
	return norm, nil
}

// Exists implements FileSystem.
func (m *MemFS) Exists(ctx context.Context, p string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	norm, err := m.record("exists", p)
	if err != nil {
		return false, err
	}
	_, isFile := m.files[norm]
	return m.dirs[norm] || isFile, nil
}

// Mkdir implements FileSystem.
func (m *MemFS) Mkdir(ctx context.Context, p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	norm, err := m.record("mkdir", p)
	if err != nil {
		return err
	}
	if _, isFile := m.files[norm]; isFile {
		return fmt.Errorf("%s: %w", norm, fs.ErrExist)
	}
	m.dirs[norm] = true
	return nil
}

// WriteBinary implements FileSystem.
func (m *MemFS) WriteBinary(ctx context.Context, p string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	norm, err := m.record("write", p)
	if err != nil {
		return err
	}
	if !m.dirs[path.Dir(norm)] {
		return fmt.Errorf("%s: %w", path.Dir(norm), fs.ErrNotExist)
	}
	m.files[norm] = append([]byte(nil), data...)
	return nil
}

// File returns a copy of the file at p.
func (m *MemFS) File(p string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[NormalizePath(p)]
	return append([]byte(nil), data...), ok
}

// Files returns the sorted paths of all files.
func (m *MemFS) Files() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.files))
	for p := range m.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Calls returns the recorded operations in order.
func (m *MemFS) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// Count returns how many times op was called.
func (m *MemFS) Count(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}
