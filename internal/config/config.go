// internal/config/config.go
//
// This package loads santa.yaml, the optional settings file that sits next to
// a roster (or wherever --config points). Missing files mean defaults;
// environment variables override the file, and command-line flags override
// both (the flags are applied by cmd/santa).

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	// FileName is the settings file looked up in the working directory.
	FileName = "santa.yaml"

	FormatText = "text"
	FormatJSON = "json"

	defaultMaxAttempts = 100
)

const defaultConfigYAML = `# secret santa configuration
version: 1

matching:
  # Greedy attempts per category before giving up.
  max_attempts: 100
  # Reject categories that cannot be matched (fewer than two people, or one
  # family holding more than half of the category) before spending attempts.
  precheck: true
  # Categories matched at once. 0 matches every category concurrently.
  parallel: 0
  # Fixed seed for reproducible runs. 0 picks a new seed every time.
  seed: 0

output:
  # Where result and debug files go. Empty means next to the roster.
  dir: ""
  # text (one CSV line per giver) or json.
  format: text
  # Write the per-attempt debug log.
  debug: true

ui:
  # Spinner while matching.
  progress: true
  # Ask before writing the result.
  confirm: true
`

// MatchingConfig controls the matching engine.
type MatchingConfig struct {
	MaxAttempts int   `yaml:"max_attempts" env:"SANTA_MAX_ATTEMPTS"`
	Precheck    bool  `yaml:"precheck" env:"SANTA_PRECHECK"`
	Parallel    int   `yaml:"parallel" env:"SANTA_PARALLEL"`
	Seed        int64 `yaml:"seed" env:"SANTA_SEED"`
}

// OutputConfig controls result and debug artifacts.
type OutputConfig struct {
	Dir    string `yaml:"dir" env:"SANTA_OUTPUT_DIR"`
	Format string `yaml:"format" env:"SANTA_OUTPUT_FORMAT"`
	Debug  bool   `yaml:"debug" env:"SANTA_DEBUG"`
}

// UIConfig controls the interactive pieces.
type UIConfig struct {
	Progress bool `yaml:"progress" env:"SANTA_PROGRESS"`
	Confirm  bool `yaml:"confirm" env:"SANTA_CONFIRM"`
}

// Config models santa.yaml.
type Config struct {
	Version  int            `yaml:"version"`
	Matching MatchingConfig `yaml:"matching"`
	Output   OutputConfig   `yaml:"output"`
	UI       UIConfig       `yaml:"ui"`

	path string
}

// Default returns the settings used when no file exists.
func Default() *Config {
	return &Config{
		Version: 1,
		Matching: MatchingConfig{
			MaxAttempts: defaultMaxAttempts,
			Precheck:    true,
		},
		Output: OutputConfig{
			Format: FormatText,
			Debug:  true,
		},
		UI: UIConfig{
			Progress: true,
			Confirm:  true,
		},
	}
}

// Load reads the settings file at path. A missing file yields defaults.
// Environment overrides are applied after the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.path = path
	if err := cfg.loadFile(); err != nil {
		return nil, err
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Path returns the file the settings were loaded from (it may not exist).
func (c *Config) Path() string {
	return c.path
}

// OutputDir returns where artifacts for the given roster should be written.
func (c *Config) OutputDir(rosterPath string) string {
	if c.Output.Dir != "" {
		return c.Output.Dir
	}
	return filepath.Dir(rosterPath)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if c.Matching.MaxAttempts < 1 {
		return fmt.Errorf("matching.max_attempts must be >= 1")
	}
	if c.Matching.Parallel < 0 {
		return fmt.Errorf("matching.parallel must be >= 0")
	}
	switch c.Output.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("output.format must be '%s' or '%s'", FormatText, FormatJSON)
	}
	return nil
}

// Init writes the commented default settings file into dir unless one is
// already there. It reports the path and whether a file was created.
func Init(dir string) (string, bool, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return path, false, fmt.Errorf("config: stat %s: %w", path, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return path, false, fmt.Errorf("config: ensure dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigYAML), 0o644); err != nil {
		return path, false, fmt.Errorf("config: write %s: %w", path, err)
	}
	return path, true, nil
}

// loadFile decodes over the defaults so omitted keys keep their default
// values.
func (c *Config) loadFile() error {
	if c.path == "" {
		return nil
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", c.path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", c.path, err)
	}
	return nil
}

// NormalizeFormat lowercases and trims an output format; empty means text.
func NormalizeFormat(format string) string {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		return FormatText
	}
	return format
}

func (c *Config) normalize() {
	c.Output.Format = NormalizeFormat(c.Output.Format)
	c.Output.Dir = strings.TrimSpace(c.Output.Dir)
	if c.Output.Dir != "" && c.path != "" && !filepath.IsAbs(c.Output.Dir) {
		c.Output.Dir = filepath.Clean(filepath.Join(filepath.Dir(c.path), c.Output.Dir))
	}
}
