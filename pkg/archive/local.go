package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage implements Storage on a local directory.
type LocalStorage struct {
	dir string
}

// NewLocalStorage creates a directory-backed artifact store.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, ErrInvalidConfig
	}
	return &LocalStorage{dir: dir}, nil
}

// Put writes the artifact to <dir>/<key>, creating parent directories as
// needed. Path traversal in keys is rejected.
func (l *LocalStorage) Put(ctx context.Context, key, contentType string, data []byte) error {
	clean := filepath.Clean(key)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return fmt.Errorf("%w: invalid key %q", ErrPutFailed, key)
	}

	path := filepath.Join(l.dir, clean)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrPutFailed, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrPutFailed, err)
	}
	return nil
}
