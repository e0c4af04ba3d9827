package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the config file looked up in the working directory.
const DefaultConfigFile = ".ptxref.yaml"

// Config holds all ptxref configuration.
type Config struct {
	// Root is the corpus directory, relative to the working directory.
	Root string `yaml:"root"`

	// Corpus scanning
	Scan ScanConfig `yaml:"scan"`

	// Categories are the reference prefixes that mark a short identifier (e.g. "lst-").
	Categories []string `yaml:"categories"`

	// Workers bounds the per-phase worker pool. 1 runs each phase sequentially.
	Workers int `yaml:"workers"`

	// Strict turns ambiguous declarations into a fatal error before any rewrite.
	Strict bool `yaml:"strict"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Root:       "pretext",
		Scan:       DefaultScanConfig(),
		Categories: []string{"lst-", "fig-"},
		Workers:    defaultWorkers(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func defaultWorkers() int {
	workers := runtime.NumCPU()
	if workers > 16 {
		workers = 16
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Defaults, still subject to the environment
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if root := os.Getenv("PTXREF_ROOT"); root != "" {
		c.Root = root
	}
	if env := os.Getenv("PTXREF_WORKERS"); env != "" {
		if v, err := strconv.Atoi(env); err == nil && v > 0 {
			c.Workers = v
		}
	}
	if env := os.Getenv("PTXREF_STRICT"); env != "" {
		if v, err := strconv.ParseBool(env); err == nil {
			c.Strict = v
		}
	}
	if env := os.Getenv("PTXREF_DEBUG"); env != "" {
		if v, err := strconv.ParseBool(env); err == nil {
			c.Logging.DebugMode = v
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Root) == "" {
		return fmt.Errorf("corpus root not configured (set root or PTXREF_ROOT)")
	}
	if len(c.Scan.Extensions) == 0 {
		return fmt.Errorf("no document extensions configured")
	}
	for _, ext := range c.Scan.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("invalid extension %q: must start with '.'", ext)
		}
	}
	if len(c.Categories) == 0 {
		return fmt.Errorf("no reference categories configured")
	}
	for _, cat := range c.Categories {
		if cat == "" || strings.ContainsAny(cat, "\"<> \t\n") {
			return fmt.Errorf("invalid reference category %q", cat)
		}
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if !ValidLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLevels)
	}
	return nil
}
