package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Strob0t/TripForge/internal/domain/memory"
)

// MemoryStore keeps the whole memory document in the single row of
// travel_memory. It implements memorystore.Store.
type MemoryStore struct {
	pool *pgxpool.Pool
}

// NewMemoryStore creates a MemoryStore backed by the given connection pool.
// The schema must already be migrated.
func NewMemoryStore(pool *pgxpool.Pool) *MemoryStore {
	return &MemoryStore{pool: pool}
}

// Load returns the stored document, or the empty document when no row exists.
func (s *MemoryStore) Load(ctx context.Context) (*memory.Document, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT document FROM travel_memory WHERE id = 1`).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return memory.Empty(), nil
		}
		return nil, fmt.Errorf("load memory: %w", err)
	}

	var doc memory.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode memory: %w", err)
	}
	return &doc, nil
}

// Save replaces the stored document.
func (s *MemoryStore) Save(ctx context.Context, doc *memory.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode memory: %w", err)
	}

	const q = `
		INSERT INTO travel_memory (id, document, updated_at)
		VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`
	if _, err := s.pool.Exec(ctx, q, raw); err != nil {
		return fmt.Errorf("save memory: %w", err)
	}
	return nil
}
