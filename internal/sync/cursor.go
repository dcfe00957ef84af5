package sync

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
)

// CursorPersistError is a failed durable write of the next-page cursor.
// Continuing without it risks re-fetching or skipping pages, so it is
// fatal.
type CursorPersistError struct {
	Path string
	Err  error
}

func (e *CursorPersistError) Error() string {
	return fmt.Sprintf("sync: persisting cursor to %s: %v", e.Path, e.Err)
}

func (e *CursorPersistError) Unwrap() error {
	return e.Err
}

// CursorStore persists the next-page cursor as a small JSON file,
// {"next": <url>}. There is exactly one authoritative value: saves
// overwrite, never append.
type CursorStore struct {
	path string
}

func NewCursorStore(path string) *CursorStore {
	return &CursorStore{path: path}
}

type cursorFile struct {
	Next *string `json:"next"`
}

// Load reads the persisted cursor. A missing file is not an error; it
// means start from the beginning.
func (s *CursorStore) Load() (string, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("sync: reading cursor file %s: %w", s.path, err)
	}
	var f cursorFile
	if err := json.Unmarshal(data, &f); err != nil {
		return "", false, fmt.Errorf("sync: parsing cursor file %s: %w", s.path, err)
	}
	if f.Next == nil || *f.Next == "" {
		return "", false, nil
	}
	return *f.Next, true, nil
}

// Save durably overwrites the stored cursor. The write goes to a temp file
// first and is renamed into place, so a crash mid-write can never leave a
// half-written file that parses as a valid cursor.
func (s *CursorStore) Save(cursor string) error {
	data, err := json.MarshalIndent(cursorFile{Next: &cursor}, "", "  ")
	if err != nil {
		return &CursorPersistError{Path: s.path, Err: err}
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".cursor-*")
	if err != nil {
		return &CursorPersistError{Path: s.path, Err: err}
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return &CursorPersistError{Path: s.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return &CursorPersistError{Path: s.path, Err: err}
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return &CursorPersistError{Path: s.path, Err: err}
	}
	return nil
}

// Clear removes the cursor file. Called on graceful completion so a stale
// cursor never points at an already-consumed page.
func (s *CursorStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &CursorPersistError{Path: s.path, Err: err}
	}
	return nil
}
