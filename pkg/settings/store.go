package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	ErrNotLoaded    = errors.New("settings not loaded")
	ErrUnknownField = errors.New("unknown settings field")
	ErrInvalidValue = errors.New("invalid settings value")
)

// DataSlot is the host's generic per-plugin persisted data: an opaque blob in,
// an opaque blob out. A slot that has never been written returns a nil blob.
type DataSlot interface {
	LoadData(ctx context.Context) ([]byte, error)
	SaveData(ctx context.Context, data []byte) error
}

// State is the lifecycle state of a Store.
type State int

const (
	StateUnloaded State = iota
	StateLoaded
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// Store owns the single Configuration Record of a running plugin.
type Store struct {
	mu     sync.Mutex
	slot   DataSlot
	logger *slog.Logger

	state State
	cfg   Config
	raw   []byte // last blob read or written; carries keys Config doesn't know
}

// NewStore creates an unloaded store backed by slot.
func NewStore(slot DataSlot, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		slot:   slot,
		logger: logger,
		cfg:    Defaults(),
	}
}

// Load merges the persisted blob over Defaults and moves the store to
// StateLoaded. Loading again with the same blob yields the same record.
func (s *Store) Load(ctx context.Context) error {
	blob, err := s.slot.LoadData(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	cfg, err := Merge(Defaults(), blob)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	s.mu.Lock()
	s.cfg = cfg
	s.raw = blob
	s.state = StateLoaded
	s.mu.Unlock()

	s.logger.Debug("settings loaded", "persisted", len(blob) > 0)
	return nil
}

// Save persists the whole current record.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLoaded {
		return ErrNotLoaded
	}
	return s.saveLocked(ctx)
}

func (s *Store) saveLocked(ctx context.Context) error {
	blob, err := encode(s.raw, s.cfg)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	if err := s.slot.SaveData(ctx, blob); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	s.raw = blob
	return nil
}

// State reports the lifecycle state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Config returns a snapshot of the current record. Callers thread this value
// into rendering rather than reading the store mid-flight.
func (s *Store) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Set commits one settings form field and persists the record immediately.
// On a persistence failure the in-memory change is rolled back.
func (s *Store) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLoaded {
		return ErrNotLoaded
	}

	prev := s.cfg
	if err := apply(&s.cfg, key, value); err != nil {
		return err
	}
	if err := s.saveLocked(ctx); err != nil {
		s.cfg = prev
		return err
	}
	s.logger.Debug("settings field committed", "field", key)
	return nil
}

// Reset restores Defaults and persists them. Unknown keys in the stored blob
// are kept.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLoaded {
		return ErrNotLoaded
	}

	prev := s.cfg
	s.cfg = Defaults()
	if err := s.saveLocked(ctx); err != nil {
		s.cfg = prev
		return err
	}
	return nil
}
