// Copyright 2024-2026 Aiku AI

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	up "go.mau.fi/util/configupgrade"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned by Load when the config file does not exist.
var ErrNotFound = errors.New("config file not found")

// File owns the loaded Config and the path it is persisted to. Only the
// keyword lists are ever written back; everything else is read once at
// startup.
type File struct {
	path string

	mu  sync.Mutex
	cfg Config
}

// Load reads the config at path, merges it over the example config, decodes
// and validates it.
func Load(path string) (*File, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat config: %w", err)
	}
	data, _, err := up.Do(path, false, Upgrader)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return &File{path: path, cfg: *cfg}, nil
}

// Parse decodes and validates a YAML document without touching the disk.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.PostProcess(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewFile wraps an already decoded config. Saves go to path.
func NewFile(path string, cfg Config) *File {
	return &File{path: path, cfg: cfg}
}

// Path returns the file the config is saved to.
func (f *File) Path() string {
	return f.path
}

// Config returns a copy of the current configuration.
func (f *File) Config() Config {
	f.mu.Lock()
	defer f.mu.Unlock()
	cfg := f.cfg
	cfg.Keyword = KeywordConfig{
		KeywordList: slices.Clone(f.cfg.Keyword.KeywordList),
		ExcludeList: slices.Clone(f.cfg.Keyword.ExcludeList),
	}
	return cfg
}

// SaveKeywords replaces both keyword lists and writes the whole config back
// to disk. The in-memory copy is updated even when the write fails.
func (f *File) SaveKeywords(include, exclude []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cfg.Keyword.KeywordList = slices.Clone(include)
	f.cfg.Keyword.ExcludeList = slices.Clone(exclude)
	data, err := yaml.Marshal(&f.cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return writeFileAtomic(f.path, data)
}

// writeFileAtomic writes data to a temporary file next to path and renames it
// over path, so readers never see a half-written config.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp config: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err = tmp.Write(data); err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write temp config: %w", err)
	}
	if info, statErr := os.Stat(path); statErr == nil {
		_ = os.Chmod(tmpName, info.Mode().Perm())
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace config: %w", err)
	}
	return nil
}
