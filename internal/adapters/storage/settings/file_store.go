package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	domain "photocontest/internal/domain/settings"
)

// FileStore keeps settings in a JSON file and caches the parsed document.
// The cache is replaced on every Save, so readers never see a stale copy
// written through this store.
type FileStore struct {
	path        string
	defaultYear int

	mu     sync.RWMutex
	cached *domain.Settings
}

// NewFileStore creates a FileStore. A missing file yields domain.Default(defaultYear).
func NewFileStore(path string, defaultYear int) *FileStore {
	return &FileStore{path: path, defaultYear: defaultYear}
}

// Load returns the current settings.
// POST: missing or empty file yields defaults; zero-valued fields are backfilled
func (f *FileStore) Load(ctx context.Context) (domain.Settings, error) {
	f.mu.RLock()
	if f.cached != nil {
		s := clone(*f.cached)
		f.mu.RUnlock()
		return s, nil
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cached != nil {
		return clone(*f.cached), nil
	}

	s := domain.Default(f.defaultYear)
	data, err := os.ReadFile(f.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return domain.Settings{}, fmt.Errorf("read settings: %w", err)
	case len(data) > 0:
		if err := json.Unmarshal(data, &s); err != nil {
			return domain.Settings{}, fmt.Errorf("parse settings %s: %w", f.path, err)
		}
	}
	backfill(&s, f.defaultYear)
	f.cached = &s
	return clone(s), nil
}

// Save validates and writes settings via a temp file and rename.
// PRE: none
// POST: file replaced atomically and cache updated, or error with the old state intact
func (f *FileStore) Save(ctx context.Context, s domain.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("mkdir settings dir: %w", err)
		}
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o640); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace settings: %w", err)
	}
	saved := clone(s)
	f.cached = &saved
	return nil
}

func backfill(s *domain.Settings, defaultYear int) {
	if s.CurrentYear <= 0 {
		s.CurrentYear = defaultYear
	}
	if s.DuelSpins <= 0 {
		s.DuelSpins = domain.Default(defaultYear).DuelSpins
	}
	if s.WaitingText == nil {
		s.WaitingText = map[string]string{}
	}
}

func clone(s domain.Settings) domain.Settings {
	out := s
	out.LegacyYears = append([]int(nil), s.LegacyYears...)
	out.WaitingText = make(map[string]string, len(s.WaitingText))
	for k, v := range s.WaitingText {
		out.WaitingText[k] = v
	}
	if s.VotingEnd != nil {
		end := *s.VotingEnd
		out.VotingEnd = &end
	}
	return out
}
