package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileBackend keeps one document file per key under a directory. It is
// the default backend, standing in for a browser origin's durable
// storage.
type FileBackend struct {
	dir string
}

// NewFileBackend creates the directory if needed and returns a backend
// rooted at it.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

// filename maps a logical key to a file name. Keys contain characters
// like ':' that are not safe in file names on every platform.
func (b *FileBackend) filename(key string) string {
	replacer := strings.NewReplacer(":", "__", "/", "_", "\\", "_", "..", "_")
	return filepath.Join(b.dir, replacer.Replace(key)+".json")
}

func (b *FileBackend) Get(_ context.Context, key string) (string, bool, error) {
	data, err := os.ReadFile(b.filename(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read document: %w", err)
	}
	return string(data), true, nil
}

// Set writes to a temp file and renames it into place so a document is
// never observed partially written.
func (b *FileBackend) Set(_ context.Context, key, value string) error {
	path := b.filename(key)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, []byte(value), 0o644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace document: %w", err)
	}
	return nil
}

func (b *FileBackend) Delete(_ context.Context, key string) error {
	if err := os.Remove(b.filename(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func (b *FileBackend) Ping(_ context.Context) error {
	if _, err := os.Stat(b.dir); err != nil {
		return fmt.Errorf("storage directory unavailable: %w", err)
	}
	return nil
}
