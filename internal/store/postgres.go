package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresBackend stores each document as a row in the kv_documents
// table using parameterized queries.
type PostgresBackend struct {
	db *sql.DB
}

// NewPostgresBackend wraps an existing database handle. The
// kv_documents table is created by the goose migrations.
func NewPostgresBackend(db *sql.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

func (b *PostgresBackend) Get(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT doc FROM kv_documents WHERE key = $1`

	var doc string
	err := b.db.QueryRowContext(ctx, query, key).Scan(&doc)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read document: %w", err)
	}
	return doc, true, nil
}

func (b *PostgresBackend) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO kv_documents (key, doc, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at
	`

	if _, err := b.db.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

func (b *PostgresBackend) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM kv_documents WHERE key = $1`

	if _, err := b.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func (b *PostgresBackend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}
