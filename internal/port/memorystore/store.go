// Package memorystore defines the persistence port for the travel memory
// document.
package memorystore

import (
	"context"

	"github.com/Strob0t/TripForge/internal/domain/memory"
)

// Store loads and saves the whole memory document.
//
// Load returns the canonical empty document when nothing has been saved yet;
// a missing document is never an error. Save replaces whatever was stored.
// Implementations are not required to serialise concurrent Load/Save pairs.
type Store interface {
	Load(ctx context.Context) (*memory.Document, error)
	Save(ctx context.Context, doc *memory.Document) error
}
