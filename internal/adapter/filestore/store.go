// Package filestore persists the memory document as an indented JSON file
// on the local filesystem.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Strob0t/TripForge/internal/domain/memory"
)

// Store implements memorystore.Store backed by a single JSON file.
type Store struct {
	path string
	mu   sync.Mutex
}

// New creates a Store writing to path. Parent directories are created on
// the first save.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the file the store writes to.
func (s *Store) Path() string { return s.path }

// Load reads the document. A missing file yields the empty document; a file
// that does not hold a JSON object is an error.
func (s *Store) Load(_ context.Context) (*memory.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return memory.Empty(), nil
		}
		return nil, fmt.Errorf("read memory file: %w", err)
	}

	var doc memory.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode memory file %s: %w", s.path, err)
	}
	return &doc, nil
}

// Save writes the document atomically: a temp file in the same directory is
// synced and then renamed over the destination.
func (s *Store) Save(_ context.Context, doc *memory.Document) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode memory: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create memory directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".memory-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace memory file: %w", err)
	}
	return nil
}
