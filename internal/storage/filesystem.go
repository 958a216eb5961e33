package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned for keys or paths that resolve outside the store.
var ErrOutsideRoot = errors.New("storage: path escapes base directory")

// FileStore writes generated videos below a single output directory. The
// directory is created by EnsureDir and again before every write.
type FileStore struct {
	basePath string
}

// NewFileStore returns a FileStore rooted at the absolute form of basePath.
func NewFileStore(basePath string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve base path: %w", err)
	}
	return &FileStore{basePath: abs}, nil
}

// BasePath returns the configured root directory.
func (s *FileStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// EnsureDir creates the root directory if it does not exist yet.
func (s *FileStore) EnsureDir() error {
	if s == nil {
		return errors.New("storage: no store configured")
	}
	if err := os.MkdirAll(s.basePath, 0o755); err != nil {
		return fmt.Errorf("storage: ensure directory: %w", err)
	}
	return nil
}

// Create opens key for writing, truncating any existing file, and returns
// the writer together with the absolute path.
func (s *FileStore) Create(ctx context.Context, key string) (io.WriteCloser, string, error) {
	if s == nil {
		return nil, "", errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, "", err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, "", fmt.Errorf("storage: ensure directory: %w", err)
	}
	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, "", fmt.Errorf("storage: create file: %w", err)
	}
	return f, fullPath, nil
}

// Open returns a reader for a file previously written by this store. Absolute
// paths are accepted when they point inside the base directory.
func (s *FileStore) Open(path string) (*os.File, error) {
	full, err := s.Contains(path)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

// Contains resolves path against the base directory and reports an error if
// it falls outside of it.
func (s *FileStore) Contains(path string) (string, error) {
	if filepath.IsAbs(path) {
		rel, err := filepath.Rel(s.basePath, filepath.Clean(path))
		if err != nil || rel == "." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == ".." {
			return "", ErrOutsideRoot
		}
		return filepath.Join(s.basePath, rel), nil
	}
	return s.resolve(path)
}

func (s *FileStore) resolve(key string) (string, error) {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.basePath, filepath.FromSlash(cleanKey)), nil
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.ToSlash(filepath.Clean(key))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrOutsideRoot
	}
	return cleaned, nil
}
