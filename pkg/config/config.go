// Package config persists the launcher's user preferences.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"limeal.fr/cobalt/pkg/logging"
	"limeal.fr/cobalt/pkg/utils"
)

const (
	DefaultJavaArgs    = "-Xmx2G -Xms1G"
	DefaultJavaVersion = "17"
)

// Config is the content of config.json. Nullable keys are pointers.
type Config struct {
	JavaArgs            string  `json:"java_args"`
	SelectedVersion     *string `json:"selected_version"`
	CurrentAccount      *int    `json:"current_account"`
	SeparateVersionDirs bool    `json:"separate_version_dirs"`
	JavaPath            *string `json:"java_path"`
	JavaVersion         string  `json:"java_version"`
}

func Default() *Config {
	return &Config{
		JavaArgs:    DefaultJavaArgs,
		JavaVersion: DefaultJavaVersion,
	}
}

func (c *Config) Selected() string {
	if c.SelectedVersion == nil {
		return ""
	}
	return *c.SelectedVersion
}

func (c *Config) Java() string {
	if c.JavaPath == nil {
		return ""
	}
	return *c.JavaPath
}

// Store reads and writes config.json. Every mutation goes through Update,
// which holds an exclusive file lock across the read-modify-write.
type Store struct {
	path string
	log  *logging.Logger
	mu   sync.Mutex
}

func NewStore(path string, log *logging.Logger) *Store {
	if log == nil {
		log = logging.Default()
	}
	return &Store{path: path, log: log}
}

func (s *Store) Path() string {
	return s.path
}

// Load returns the stored config. A missing file yields defaults. Missing keys
// are backfilled and a malformed file is replaced by defaults.
func (s *Store) Load() (*Config, error) {
	cfg, rewrite, err := s.read()
	if err != nil {
		return nil, err
	}
	if rewrite {
		if err := s.Update(func(*Config) error { return nil }); err != nil {
			s.log.Warnf("could not rewrite %s: %v", s.path, err)
		}
	}
	return cfg, nil
}

// read decodes the file; rewrite reports that the on-disk form should be normalized.
func (s *Store) read() (*Config, bool, error) {
	cfg := Default()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read config: %w", err)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		s.log.Warnf("config %s is corrupt, restoring defaults: %v", s.path, err)
		return Default(), true, nil
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		s.log.Warnf("config %s has invalid values, restoring defaults: %v", s.path, err)
		return Default(), true, nil
	}

	backfill := false
	for _, key := range []string{"java_args", "selected_version", "current_account", "separate_version_dirs", "java_path", "java_version"} {
		if _, ok := keys[key]; !ok {
			backfill = true
		}
	}
	if cfg.JavaVersion == "" {
		cfg.JavaVersion = DefaultJavaVersion
		backfill = true
	}
	return cfg, backfill, nil
}

func (s *Store) write(cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return utils.WriteFileAtomic(s.path, data, 0o644)
}

// Save replaces the stored config.
func (s *Store) Save(cfg *Config) error {
	return s.Update(func(c *Config) error {
		*c = *cfg
		return nil
	})
}

// Update applies fn to the current config under the file lock and persists
// the result. Nothing is written when fn fails.
func (s *Store) Update(fn func(*Config) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := utils.LockFile(s.path)
	if err != nil {
		return err
	}
	defer unlock()

	cfg, _, err := s.read()
	if err != nil {
		return err
	}
	if err := fn(cfg); err != nil {
		return err
	}
	return s.write(cfg)
}

func (s *Store) SetSelectedVersion(id string) error {
	return s.Update(func(c *Config) error {
		c.SelectedVersion = &id
		return nil
	})
}

// SetJavaRuntime records a validated or provisioned Java executable.
func (s *Store) SetJavaRuntime(path string, major int) error {
	return s.Update(func(c *Config) error {
		if path == "" {
			c.JavaPath = nil
		} else {
			c.JavaPath = &path
		}
		if major > 0 {
			c.JavaVersion = strconv.Itoa(major)
		}
		return nil
	})
}

func (s *Store) SetCurrentAccount(id *int) error {
	return s.Update(func(c *Config) error {
		c.CurrentAccount = id
		return nil
	})
}

func (s *Store) SetJavaArgs(args string) error {
	return s.Update(func(c *Config) error {
		c.JavaArgs = args
		return nil
	})
}

// ToggleSeparateVersionDirs flips the per-version directory flag and returns the new value.
func (s *Store) ToggleSeparateVersionDirs() (bool, error) {
	var value bool
	err := s.Update(func(c *Config) error {
		c.SeparateVersionDirs = !c.SeparateVersionDirs
		value = c.SeparateVersionDirs
		return nil
	})
	return value, err
}
