package draft

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gosimple/slug"
	"github.com/mark3labs/rentalwizard/internal/logger"
)

// FileStore keeps one JSON file per draft key under dir.
type FileStore struct {
	dir string
}

// NewFileStore returns a store writing to dir. The directory is created on
// first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// path keeps the slug for readability and appends a hash of the raw key, so
// keys that slugify alike ("A B", "a-b") still get their own file.
func (f *FileStore) path(key string) string {
	name := slug.Make(key)
	if name == "" {
		name = "draft"
	}
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(f.dir, name+"-"+hex.EncodeToString(sum[:4])+".json")
}

func (f *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading draft file: %w", err)
	}
	return data, nil
}

// Set writes through a temp file and rename so a crash never leaves a
// half-written draft behind.
func (f *FileStore) Set(_ context.Context, key string, data []byte) error {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("creating draft directory: %w", err)
	}

	path := f.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing draft file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing draft file: %w", err)
	}

	logger.Debug("draft saved to %s", path)
	return nil
}

func (f *FileStore) Remove(_ context.Context, key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing draft file: %w", err)
	}
	return nil
}
