// Package config reads and writes the repository's .R/config file (spec
// §6): a key/value store holding user.name, user.email, and named remote
// URLs.
//
// Grounded on the teacher's pkg/repo/config.go (atomic temp+rename JSON
// config), swapped to the BurntSushi/toml encoding spec §6 implies with its
// git-style "[user]" / "[remote \"origin\"]" section layout rather than the
// teacher's flat JSON map.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// User holds the identity recorded on commits authored in this repository.
type User struct {
	Name  string `toml:"name"`
	Email string `toml:"email"`
}

// Remote is a named remote's location, stored under [remote "<name>"].
type Remote struct {
	URL string `toml:"url"`
}

// Config is the full contents of .R/config.
type Config struct {
	User    User              `toml:"user"`
	Remotes map[string]Remote `toml:"remote"`
}

// empty returns a zero-value Config with its map initialised.
func empty() *Config {
	return &Config{Remotes: make(map[string]Remote)}
}

// Load reads the config file at path. A missing file yields an empty,
// not an error, config (spec §6: config is plain key/value, never required
// to exist before first write).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return empty(), nil
		}
		return nil, fmt.Errorf("config load: %w", err)
	}

	cfg := empty()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config load: unmarshal: %w", err)
	}
	if cfg.Remotes == nil {
		cfg.Remotes = make(map[string]Remote)
	}
	return cfg, nil
}

// Save atomically writes cfg to path: write-to-temp + rename, matching the
// rest of the on-disk metadata in .R (reflog, index, refs).
func (cfg *Config) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("config save: encode: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".config-tmp-*")
	if err != nil {
		return fmt.Errorf("config save: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("config save: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("config save: close: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("config save: rename: %w", err)
	}
	return nil
}

// SetUser records the identity used to author future commits.
func (cfg *Config) SetUser(name, email string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return fmt.Errorf("config: user.name and user.email are both required")
	}
	cfg.User = User{Name: name, Email: email}
	return nil
}

// SetRemote stores or updates a named remote's URL.
func (cfg *Config) SetRemote(name, url string) error {
	name = strings.TrimSpace(name)
	url = strings.TrimSpace(url)
	if name == "" {
		return fmt.Errorf("config: remote name is required")
	}
	if url == "" {
		return fmt.Errorf("config: remote URL is required")
	}
	if cfg.Remotes == nil {
		cfg.Remotes = make(map[string]Remote)
	}
	cfg.Remotes[name] = Remote{URL: url}
	return nil
}

// RemoveRemote deletes a named remote.
func (cfg *Config) RemoveRemote(name string) error {
	name = strings.TrimSpace(name)
	if _, ok := cfg.Remotes[name]; !ok {
		return fmt.Errorf("config: remote %q is not configured", name)
	}
	delete(cfg.Remotes, name)
	return nil
}

// RemoteURL returns the configured URL for name.
func (cfg *Config) RemoteURL(name string) (string, error) {
	name = strings.TrimSpace(name)
	r, ok := cfg.Remotes[name]
	if !ok || strings.TrimSpace(r.URL) == "" {
		return "", fmt.Errorf("config: remote %q is not configured", name)
	}
	return r.URL, nil
}
