// Package storage keeps uploaded document files on the local filesystem.
// Files are addressed by a slash-separated key relative to the store root;
// the database only records the key.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/consultoria-ambiental/registro/internal/domain"
)

// FS is a filesystem-backed document store rooted at a single directory.
type FS struct {
	root string
	// mu is held exclusively by Remove while it prunes empty directories, and
	// shared by Save while its target directory may still be empty.
	mu sync.RWMutex
}

// NewFS creates the root directory if needed and returns a store over it.
func NewFS(root string) (*FS, error) {
	root = filepath.Clean(root)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage.NewFS: create root: %w", err)
	}
	return &FS{root: root}, nil
}

// Root returns the directory the store writes under.
func (s *FS) Root() string { return s.root }

// Save writes r to key and returns the number of bytes written. The file is
// written to a temporary name first and renamed into place, so a failed
// upload never leaves a partial file behind under key.
func (s *FS) Save(ctx context.Context, key string, r io.Reader) (int64, error) {
	full, err := s.resolve(key)
	if err != nil {
		return 0, fmt.Errorf("storage.FS.Save: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("storage.FS.Save: %w", err)
	}

	tmp, err := s.createTemp(full)
	if err != nil {
		return 0, fmt.Errorf("storage.FS.Save: %w", err)
	}
	// The temp file keeps its directory non-empty, so the copy runs unlocked.
	n, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return 0, fmt.Errorf("storage.FS.Save: write: %w", err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		_ = os.Remove(tmp.Name())
		return 0, fmt.Errorf("storage.FS.Save: rename: %w", err)
	}
	return n, nil
}

// createTemp makes the directory of full and a temporary file inside it.
func (s *FS) createTemp(full string) (*os.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("temp: %w", err)
	}
	return tmp, nil
}

// Open returns a reader over the file stored under key.
// Returns domain.ErrNotFound if nothing is stored there.
func (s *FS) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	full, err := s.resolve(key)
	if err != nil {
		return nil, fmt.Errorf("storage.FS.Open: %w", err)
	}

	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("storage.FS.Open: %s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("storage.FS.Open: %w", err)
	}
	return f, nil
}

// Remove deletes the file stored under key and then any owner directory the
// removal left empty. Returns domain.ErrNotFound if nothing is stored there.
func (s *FS) Remove(ctx context.Context, key string) error {
	full, err := s.resolve(key)
	if err != nil {
		return fmt.Errorf("storage.FS.Remove: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("storage.FS.Remove: %s: %w", key, domain.ErrNotFound)
		}
		return fmt.Errorf("storage.FS.Remove: %w", err)
	}
	// os.Remove refuses non-empty directories, which is exactly the stop condition.
	for dir := filepath.Dir(full); dir != s.root && strings.HasPrefix(dir, s.root); dir = filepath.Dir(dir) {
		if os.Remove(dir) != nil {
			break
		}
	}
	return nil
}

// resolve maps key to a path under root, rejecting keys that would escape it.
func (s *FS) resolve(key string) (string, error) {
	clean := path.Clean("/" + key)[1:]
	if key == "" || clean != key {
		return "", fmt.Errorf("%w: invalid storage key %q", domain.ErrValidation, key)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}
