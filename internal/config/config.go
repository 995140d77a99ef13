// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all rolodex configuration.
type Config struct {
	Paths  Paths  `yaml:"paths"`
	Search Search `yaml:"search"`
}

// Paths holds filesystem locations.
type Paths struct {
	DataDir  string `yaml:"data_dir"`  // Directory holding CSV files for batch operations.
	AuditLog string `yaml:"audit_log"` // Append-only audit log file.
	Contacts string `yaml:"contacts"`  // JSON snapshot of the phonebook.
}

// Search holds search matching policy.
type Search struct {
	CaseSensitive bool `yaml:"case_sensitive"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Paths: Paths{
			DataDir:  "data",
			AuditLog: ".rolodex/audit.log",
			Contacts: ".rolodex/contacts.json",
		},
	}
}

// Load reads a single YAML config file at path and returns a Config.
// If the file does not exist, defaults are returned without error.
// Invalid YAML or unknown fields return an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return &cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files are skipped.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	if c.Paths.DataDir == "" {
		return errors.New("config: paths.data_dir cannot be empty")
	}
	if c.Paths.AuditLog == "" {
		return errors.New("config: paths.audit_log cannot be empty")
	}
	if c.Paths.Contacts == "" {
		return errors.New("config: paths.contacts cannot be empty")
	}
	return nil
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: ROLODEX_DATA_DIR, ROLODEX_AUDIT_LOG, ROLODEX_CONTACTS.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("ROLODEX_DATA_DIR"); v != "" {
		c.Paths.DataDir = v
	}
	if v := os.Getenv("ROLODEX_AUDIT_LOG"); v != "" {
		c.Paths.AuditLog = v
	}
	if v := os.Getenv("ROLODEX_CONTACTS"); v != "" {
		c.Paths.Contacts = v
	}
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	Paths  *rawPaths  `yaml:"paths"`
	Search *rawSearch `yaml:"search"`
}

type rawPaths struct {
	DataDir  *string `yaml:"data_dir"`
	AuditLog *string `yaml:"audit_log"`
	Contacts *string `yaml:"contacts"`
}

type rawSearch struct {
	CaseSensitive *bool `yaml:"case_sensitive"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if layer.Paths != nil {
		if layer.Paths.DataDir != nil {
			c.Paths.DataDir = *layer.Paths.DataDir
		}
		if layer.Paths.AuditLog != nil {
			c.Paths.AuditLog = *layer.Paths.AuditLog
		}
		if layer.Paths.Contacts != nil {
			c.Paths.Contacts = *layer.Paths.Contacts
		}
	}
	if layer.Search != nil {
		if layer.Search.CaseSensitive != nil {
			c.Search.CaseSensitive = *layer.Search.CaseSensitive
		}
	}
}
