package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const fileExt = ".json"

// FileStore keeps each entry in <dir>/<namespace>/<key>.json.
//
// Writes go to a temporary file that is renamed into place, so readers never see a
// partial entry and concurrent writers of one key resolve last-write-wins. Entries
// older than MaxAge are treated as misses and removed; when a namespace holds more
// than MaxEntries files the oldest are removed after each Set.
type FileStore struct {
	dir    string
	policy Policy
	mu     sync.Mutex // serializes eviction scans
	now    func() time.Time
}

// NewFileStore creates the directory if needed and returns a store rooted there.
func NewFileStore(dir string, policy Policy) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("cache directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &FileStore{dir: dir, policy: policy.withDefaults(), now: time.Now}, nil
}

// DefaultDir returns ~/.labelingo/cache.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".labelingo", "cache"), nil
}

func (s *FileStore) path(namespace, key string) string {
	return filepath.Join(s.dir, namespace, key+fileExt)
}

// Get implements Store.
func (s *FileStore) Get(_ context.Context, namespace, key string) ([]byte, bool, error) {
	if err := validate(namespace, key); err != nil {
		return nil, false, err
	}
	p := s.path(namespace, key)

	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to stat cache entry: %w", err)
	}
	if s.now().Sub(info.ModTime()) > s.policy.MaxAge {
		_ = os.Remove(p)
		return nil, false, nil
	}

	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return data, true, nil
}

// Set implements Store.
func (s *FileStore) Set(_ context.Context, namespace, key string, value []byte) error {
	if err := validate(namespace, key); err != nil {
		return err
	}
	dir := filepath.Join(s.dir, namespace)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache namespace: %w", err)
	}

	tmp, err := os.CreateTemp(dir, key+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create cache entry: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := os.Rename(tmpName, s.path(namespace, key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to commit cache entry: %w", err)
	}

	return s.evict(namespace)
}

// Delete implements Store.
func (s *FileStore) Delete(_ context.Context, namespace, key string) error {
	if err := validate(namespace, key); err != nil {
		return err
	}
	err := os.Remove(s.path(namespace, key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// evict removes expired entries and the oldest entries beyond MaxEntries.
func (s *FileStore) evict(namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.dir, namespace)
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to list cache namespace: %w", err)
	}

	type file struct {
		path string
		mod  time.Time
	}
	var files []file
	now := s.now()
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), fileExt) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		p := filepath.Join(dir, de.Name())
		if now.Sub(info.ModTime()) > s.policy.MaxAge {
			_ = os.Remove(p)
			continue
		}
		files = append(files, file{path: p, mod: info.ModTime()})
	}

	if len(files) <= s.policy.MaxEntries {
		return nil
	}
	sort.Slice(files, func(i, j int) bool { return files[i].mod.Before(files[j].mod) })
	for _, f := range files[:len(files)-s.policy.MaxEntries] {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to evict cache entry: %w", err)
		}
	}
	return nil
}
