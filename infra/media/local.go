package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var ErrNotFound = errors.New("media not found")

// LocalStore keeps images on the local filesystem below root.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

func (s *LocalStore) Prepare(_ context.Context, dir string) error {
	path, err := s.resolve(dir)
	if err != nil {
		return err
	}
	return os.MkdirAll(path, 0o755)
}

// Put writes data to key, replacing any existing file. The write is not atomic.
func (s *LocalStore) Put(_ context.Context, key string, data []byte) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *LocalStore) Get(_ context.Context, key string) ([]byte, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// Delete removes key and its directory when it becomes empty.
func (s *LocalStore) Delete(_ context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	dir := filepath.Dir(path)
	if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 && dir != filepath.Clean(s.root) {
		_ = os.Remove(dir)
	}

	return nil
}

func (s *LocalStore) resolve(key string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid media key %q", key)
	}
	return filepath.Join(s.root, cleaned), nil
}
