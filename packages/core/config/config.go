package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/callsy/packages/core/env"
	"gopkg.in/yaml.v3"
)

// Config represents the callsy configuration
type Config struct {
	Timeout     string `yaml:"timeout,omitempty"` // duration, e.g. "30s"; empty means no limit
	Proxy       string `yaml:"proxy,omitempty"`
	ValidateSSL *bool  `yaml:"validateSSL,omitempty"`
	UserAgent   string `yaml:"userAgent,omitempty"`
	NoColor     *bool  `yaml:"noColor,omitempty"`
	AssumeYes   *bool  `yaml:"assumeYes,omitempty"`
	HistoryDB   string `yaml:"historyDB,omitempty"`
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetValidateSSL returns the validate SSL setting, defaulting to true
func (c *Config) GetValidateSSL() bool {
	return getBool(c.ValidateSSL, true)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// GetAssumeYes returns the assume yes setting, defaulting to false
func (c *Config) GetAssumeYes() bool {
	return getBool(c.AssumeYes, false)
}

// GetTimeout parses Timeout. An empty value means no timeout.
func (c *Config) GetTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid timeout %q: must not be negative", c.Timeout)
	}
	return d, nil
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".callsy.yaml",
	".callsy.yml",
	"callsy.yaml",
	".callsyrc",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

	// Search for config file in current directory
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	// Return defaults if no config file found
	return DefaultConfig(), nil
}

// loadConfigFromFile loads configuration from a specific file
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	// ${VAR} timeouts are checked after expansion
	if !strings.Contains(config.Timeout, "$") {
		if _, err := config.GetTimeout(); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	return config, nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c // Copy

	if other.Timeout != "" {
		result.Timeout = other.Timeout
	}
	if other.Proxy != "" {
		result.Proxy = other.Proxy
	}
	if other.UserAgent != "" {
		result.UserAgent = other.UserAgent
	}
	if other.HistoryDB != "" {
		result.HistoryDB = other.HistoryDB
	}

	// Boolean flags - only override if explicitly set in other config
	if other.ValidateSSL != nil {
		result.ValidateSSL = other.ValidateSSL
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}
	if other.AssumeYes != nil {
		result.AssumeYes = other.AssumeYes
	}

	return &result
}


// ExpandEnv returns a copy of c with ${VAR} references in its string fields
// expanded from vars and then the OS environment.
func (c *Config) ExpandEnv(vars map[string]string) *Config {
	result := *c
	result.Timeout = env.Expand(c.Timeout, vars)
	result.Proxy = env.Expand(c.Proxy, vars)
	result.UserAgent = env.Expand(c.UserAgent, vars)
	result.HistoryDB = env.Expand(c.HistoryDB, vars)
	return &result
}
