// Package store persists fetched dataset payloads as one JSON document per
// dataset key under a data directory.
package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/morikuni/failure/v2"
)

// ErrorCode defines error types for cache storage operations
type ErrorCode string

const (
	// ErrStorageFailed represents disk I/O failures and corrupt cache files
	ErrStorageFailed ErrorCode = "StorageFailed"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}

// Envelope is the on-disk cache document for one dataset.
type Envelope struct {
	Data    any       `json:"data"`
	Date    time.Time `json:"date"`
	ETag    string    `json:"etag,omitempty"`
	Version string    `json:"version,omitempty"`
}

// Store reads and writes dataset cache files under a single directory.
type Store struct {
	dir string
}

// New creates a store rooted at dir. The directory is created lazily on the
// first write.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// DefaultDir returns the per-user cache directory for dataset files.
func DefaultDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "app-polo")
	}
	return filepath.Join(base, "app-polo")
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the cache file path for a dataset key and optional version
// tag. The same inputs always yield the same path, and a changed version tag
// can never collide with files written under the old tag.
func (s *Store) Path(key, version string) string {
	name := normalizeKey(key)
	if version != "" {
		name += "-" + normalizeKey(version)
	}
	return filepath.Join(s.dir, name+".json")
}

// Write serializes env to the dataset's cache file, creating the data
// directory if needed.
func (s *Store) Write(key, version string, env Envelope) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return failure.New(ErrStorageFailed,
			failure.Message("Could not create the data directory"),
			failure.Context{"dir": s.dir, "error": err.Error()},
		)
	}

	raw, err := json.Marshal(env)
	if err != nil {
		return failure.New(ErrStorageFailed,
			failure.Message("Could not serialize the dataset"),
			failure.Context{"key": key, "error": err.Error()},
		)
	}

	path := s.Path(key, version)
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return failure.New(ErrStorageFailed,
			failure.Message("Could not write the cache file"),
			failure.Context{"path": path, "error": err.Error()},
		)
	}
	return nil
}

// Read deserializes the dataset's cache file. A missing file and a corrupt
// file both fail with ErrStorageFailed; callers treat either as a cache
// miss.
func (s *Store) Read(key, version string) (Envelope, error) {
	path := s.Path(key, version)

	raw, err := os.ReadFile(path)
	if err != nil {
		return Envelope{}, failure.New(ErrStorageFailed,
			failure.Message("Could not read the cache file"),
			failure.Context{"path": path, "error": err.Error()},
		)
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, failure.New(ErrStorageFailed,
			failure.Message("Cache file content is not valid JSON"),
			failure.Context{"path": path, "error": err.Error()},
		)
	}
	return env, nil
}

// Remove deletes the dataset's cache file. Removing a file that does not
// exist is a no-op.
func (s *Store) Remove(key, version string) error {
	path := s.Path(key, version)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return failure.New(ErrStorageFailed,
			failure.Message("Could not delete the cache file"),
			failure.Context{"path": path, "error": err.Error()},
		)
	}
	return nil
}

// Exists reports whether a cache file is present for the dataset.
func (s *Store) Exists(key, version string) bool {
	_, err := os.Stat(s.Path(key, version))
	return err == nil
}

// normalizeKey converts a dataset key into a filesystem-safe file basename
func normalizeKey(key string) string {
	normalized := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') ||
			r == '-' || r == '_' || r == '.' {
			return r
		}
		return '_'
	}, key)

	// Collapse consecutive dots so a key cannot escape the data directory
	for strings.Contains(normalized, "..") {
		normalized = strings.ReplaceAll(normalized, "..", ".")
	}

	return normalized
}
