// Package storage persists the aggregate as a single JSON snapshot
// document on disk. One writer at a time, atomic replace on save.
package storage

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	goerrors "errors"

	"textbox/codec"
	"textbox/domain"
	"textbox/domain/event"
	"textbox/errors"
	"textbox/projection"
)

// SnapshotFile is the whole-document backend: every Apply rewrites the
// file through a temp-file-then-rename so readers never observe a
// partial write. The internal mutex makes load-fold-save atomic for
// all callers sharing this value, which is what prevents lost updates
// with this backend.
type SnapshotFile struct {
	path string
	log  *slog.Logger
	mu   sync.Mutex
}

func NewSnapshotFile(path string, log *slog.Logger) *SnapshotFile {
	return &SnapshotFile{path: path, log: log}
}

// Load reads and decodes the current document. A missing file is the
// empty store; a corrupt file is reset to the empty store with a
// warning rather than blocking every subsequent operation.
func (s *SnapshotFile) Load() (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *SnapshotFile) loadLocked() (domain.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if goerrors.Is(err, fs.ErrNotExist) {
		return domain.EmptySnapshot(), nil
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: %v", errors.ErrPersistenceFailure, err)
	}

	snapshot, err := codec.DecodeSnapshot(data)
	if err != nil {
		s.log.Warn("snapshot file is corrupt, resetting to empty state",
			"path", s.path, "error", err)
		return domain.EmptySnapshot(), nil
	}
	return snapshot, nil
}

// Apply folds the events into the persisted document and atomically
// replaces it. I/O failures surface as ErrPersistenceFailure; the
// document on disk is then still the previous consistent state.
func (s *SnapshotFile) Apply(events ...event.ChatEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.loadLocked()
	if err != nil {
		return err
	}
	for _, e := range events {
		projection.Apply(&snapshot, e)
	}

	data, err := codec.EncodeSnapshot(snapshot)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrPersistenceFailure, err)
	}
	return s.replace(data)
}

func (s *SnapshotFile) replace(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrPersistenceFailure, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrPersistenceFailure, err)
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", errors.ErrPersistenceFailure, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrPersistenceFailure, err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrPersistenceFailure, err)
	}
	return nil
}
