// audio_config.go - Persisted audio configuration

package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// AudioConfig holds the flags the engine persists across restarts.
type AudioConfig struct {
	Enable       bool `json:"enable"`
	ClickyEnable bool `json:"clickyEnable"`
}

// MemoryConfigStore keeps the config in memory; the default for tests and
// hosts without persistent storage.
type MemoryConfigStore struct {
	cfg AudioConfig
}

func NewMemoryConfigStore(cfg AudioConfig) *MemoryConfigStore {
	return &MemoryConfigStore{cfg: cfg}
}

func (s *MemoryConfigStore) Read() (AudioConfig, error) {
	return s.cfg, nil
}

func (s *MemoryConfigStore) Write(cfg AudioConfig) error {
	s.cfg = cfg
	return nil
}

// FileConfigStore persists the config as JSON on disk.
type FileConfigStore struct {
	path string
}

func NewFileConfigStore(path string) *FileConfigStore {
	return &FileConfigStore{path: path}
}

// DefaultConfigPath returns the per-user config location.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "beepkit", "audio.json"), nil
}

// Read loads the stored config. A missing file yields the defaults (audio
// enabled), not an error.
func (s *FileConfigStore) Read() (AudioConfig, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return AudioConfig{Enable: true}, nil
	}
	if err != nil {
		return AudioConfig{}, err
	}
	var cfg AudioConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return AudioConfig{}, err
	}
	return cfg, nil
}

// Write stores the config atomically: write a sibling temp file, then rename
// over the old one.
func (s *FileConfigStore) Write(cfg AudioConfig) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
