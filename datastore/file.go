package datastore

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type fileEntry struct {
	Data      json.RawMessage `json:"data"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// File is a Store backed by flat files in a directory, one file per key.
type File struct {
	dir string
}

// NewFile creates the cache directory if needed and returns the store.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		return nil, fmt.Errorf("datastore: cache directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("datastore: create cache directory: %w", err)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(key string) string {
	hash := md5.Sum([]byte(key))
	return filepath.Join(f.dir, hex.EncodeToString(hash[:])+".json")
}

func (f *File) Exists(ctx context.Context, key string) bool {
	_, err := f.Read(ctx, key)
	return err == nil
}

func (f *File) Read(_ context.Context, key string) ([]byte, error) {
	raw, err := os.ReadFile(f.path(key))
	if err != nil {
		return nil, ErrNotFound
	}

	var entry fileEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, ErrNotFound
	}
	if !entry.ExpiresAt.IsZero() && time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(f.path(key))
		return nil, ErrNotFound
	}

	var data []byte
	if err := json.Unmarshal(entry.Data, &data); err != nil {
		return nil, ErrNotFound
	}
	return data, nil
}

func (f *File) Write(_ context.Context, key string, value []byte, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	entry := fileEntry{Data: data}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl)
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path(key), raw, 0o644)
}
