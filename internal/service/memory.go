package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Strob0t/TripForge/internal/domain/memory"
	"github.com/Strob0t/TripForge/internal/port/memorystore"
)

// MemoryService is the read-modify-write layer over a memorystore.Store.
//
// Append is not atomic: two concurrent appends may both load the same
// document and the later save wins, losing the other entry.
type MemoryService struct {
	store memorystore.Store
}

// NewMemoryService creates a new MemoryService.
func NewMemoryService(store memorystore.Store) *MemoryService {
	return &MemoryService{store: store}
}

// Load returns the current document. A store that has never been written
// yields the canonical empty document.
func (s *MemoryService) Load(ctx context.Context) (*memory.Document, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load memory: %w", err)
	}
	if doc == nil {
		return memory.Empty(), nil
	}
	doc.Normalize()
	return doc, nil
}

// Save overwrites the stored document.
func (s *MemoryService) Save(ctx context.Context, doc *memory.Document) error {
	if err := s.store.Save(ctx, doc); err != nil {
		return fmt.Errorf("save memory: %w", err)
	}
	return nil
}

// Append adds v to the end of the list named key, creating the list if needed.
func (s *MemoryService) Append(ctx context.Context, key string, v any) error {
	doc, err := s.Load(ctx)
	if err != nil {
		return err
	}
	if err := doc.Append(key, v); err != nil {
		return err
	}
	if err := s.Save(ctx, doc); err != nil {
		return err
	}
	slog.DebugContext(ctx, "memory appended", "key", key)
	return nil
}

// Clear replaces the stored document with the empty document.
func (s *MemoryService) Clear(ctx context.Context) error {
	if err := s.Save(ctx, memory.Empty()); err != nil {
		return err
	}
	slog.InfoContext(ctx, "memory cleared")
	return nil
}

// Preferences returns the learned preferences mapping.
func (s *MemoryService) Preferences(ctx context.Context) (map[string]any, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Preferences, nil
}
