// Package redis stores the memory document as a single JSON string value in
// Redis, for deployments that run more than one TripForge instance.
package redis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	backend "github.com/redis/go-redis/v9"

	"github.com/Strob0t/TripForge/internal/config"
	"github.com/Strob0t/TripForge/internal/domain/memory"
)

// DefaultKey is the Redis key used when none is configured.
const DefaultKey = "tripforge:memory"

// Store implements memorystore.Store using one Redis key.
type Store struct {
	client *backend.Client
	key    string
}

// New creates a Store with its own client built from cfg.
func New(cfg config.Redis, key string) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewFromClient(rdb, key)
}

// NewFromClient creates a Store from an existing client.
func NewFromClient(client *backend.Client, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{client: client, key: key}
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Load returns the stored document, or the empty document if the key is unset.
func (s *Store) Load(ctx context.Context) (*memory.Document, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return memory.Empty(), nil
		}
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}

	var doc memory.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode memory: %w", err)
	}
	return &doc, nil
}

// Save replaces the stored document. No expiry is set.
func (s *Store) Save(ctx context.Context, doc *memory.Document) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode memory: %w", err)
	}

	if err := s.client.Set(ctx, s.key, bytes.TrimSpace(buf.Bytes()), 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}
