package filestore

// Package filestore implements DurableStore as one file per key under a
// base directory. Writes go through a temp file and rename so a crash
// never leaves a partially written value behind.

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/target/todo-sync/internal/errors"
)

// Store implements the DurableStore interface on the local filesystem.
type Store struct {
	dir string
}

// New creates a file-backed store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("file store: directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("file store: create directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := s.keyPath(key)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", apperrors.NotFoundf("no value for key %q", key)
		}
		return "", apperrors.Wrapf(err, apperrors.ErrCodeUnavailable, "read key %q", key)
	}
	return string(data), nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.keyPath(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return apperrors.Wrapf(err, apperrors.ErrCodeUnavailable, "create temp file for key %q", key)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return apperrors.Wrapf(err, apperrors.ErrCodeUnavailable, "write key %q", key)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return apperrors.Wrapf(err, apperrors.ErrCodeUnavailable, "close temp file for key %q", key)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return apperrors.Wrapf(err, apperrors.ErrCodeUnavailable, "commit key %q", key)
	}
	return nil
}

// keyPath maps a key to a file name, escaping separators so keys can
// never traverse outside the base directory.
func (s *Store) keyPath(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", apperrors.Validation("storage key must not be empty")
	}
	return filepath.Join(s.dir, url.PathEscape(key)+".json"), nil
}
