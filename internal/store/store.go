// Package store provides corruption-tolerant, typed access to the
// key/value durable storage shared by all storefront services. The
// backing store is treated as an untrusted external resource: it may
// be absent, full, or hold garbage, and none of that ever surfaces to
// callers as an error.
package store

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// probeKey is written and removed by Available.
const probeKey = "__storage_probe__"

// Backend is a raw string key/value store. Implementations exist for
// the filesystem, Redis, and Postgres.
type Backend interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// Store layers JSON (de)serialization and corruption recovery over a
// Backend. It is the only component allowed to swallow storage errors.
type Store struct {
	backend Backend
	logger  *zap.Logger
}

// New creates a Store over the given backend.
func New(backend Backend, logger *zap.Logger) *Store {
	return &Store{backend: backend, logger: logger}
}

// Get reads and decodes the document under key. A missing key returns
// fallback. A document that fails to decode as T is deleted (the store
// self-heals rather than failing forever on the same entry), a warning
// is logged, and fallback is returned.
func Get[T any](ctx context.Context, s *Store, key string, fallback T) T {
	raw, found, err := s.backend.Get(ctx, key)
	if err != nil {
		s.logger.Warn("storage read failed, using fallback",
			zap.String("key", key),
			zap.Error(err),
		)
		return fallback
	}
	if !found {
		return fallback
	}

	var value T
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		s.logger.Warn("corrupted document discarded",
			zap.String("key", key),
			zap.Error(err),
		)
		if delErr := s.backend.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to delete corrupted document",
				zap.String("key", key),
				zap.Error(delErr),
			)
		}
		return fallback
	}

	return value
}

// Set serializes value and replaces the document under key. It returns
// false on failure (full store, unreachable backend) so callers can
// surface a "could not save" outcome instead of crashing.
func (s *Store) Set(ctx context.Context, key string, value any) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("failed to serialize document",
			zap.String("key", key),
			zap.Error(err),
		)
		return false
	}

	if err := s.backend.Set(ctx, key, string(raw)); err != nil {
		s.logger.Warn("storage write failed",
			zap.String("key", key),
			zap.Error(err),
		)
		return false
	}

	return true
}

// Remove deletes the document under key.
func (s *Store) Remove(ctx context.Context, key string) bool {
	if err := s.backend.Delete(ctx, key); err != nil {
		s.logger.Warn("storage delete failed",
			zap.String("key", key),
			zap.Error(err),
		)
		return false
	}
	return true
}

// Available probes whether the backing store can be written to at all,
// so callers can degrade gracefully when it cannot.
func (s *Store) Available(ctx context.Context) bool {
	if err := s.backend.Ping(ctx); err != nil {
		return false
	}
	if err := s.backend.Set(ctx, probeKey, "1"); err != nil {
		return false
	}
	if err := s.backend.Delete(ctx, probeKey); err != nil {
		return false
	}
	return true
}
