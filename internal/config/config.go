// Package config provides configuration loading and validation for the CLI, server and worker.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/daviddd23/job-application-intelligence-engine/internal/types"
)

// Defaults applied by MergeWithDefaults when neither the file nor the flags set a value.
const (
	DefaultProvider         = "gemini"
	DefaultNarrativeTimeout = 45 * time.Second
	DefaultPort             = 8080
	DefaultWorkers          = 5
)

// Config represents the run configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Inputs
	Job     string `json:"job,omitempty" yaml:"job,omitempty"`         // Path, URL or s3:// location of the job description
	CV      string `json:"cv,omitempty" yaml:"cv,omitempty"`           // Path, URL or s3:// location of the CV
	Profile string `json:"profile,omitempty" yaml:"profile,omitempty"` // Path to a scoring profile

	// Model
	Provider         string `json:"provider,omitempty" yaml:"provider,omitempty"` // gemini or genai
	Model            string `json:"model,omitempty" yaml:"model,omitempty"`
	APIKey           string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	NarrativeTimeout string `json:"narrative_timeout,omitempty" yaml:"narrative_timeout,omitempty"` // Go duration, e.g. "45s"

	// Analysis
	Narratives           []string `json:"narratives,omitempty" yaml:"narratives,omitempty"`
	UseModelRequirements bool     `json:"use_model_requirements,omitempty" yaml:"use_model_requirements,omitempty"`

	// Services
	Port    int    `json:"port,omitempty" yaml:"port,omitempty"`
	AMQPURL string `json:"amqp_url,omitempty" yaml:"amqp_url,omitempty"`
	Workers int    `json:"workers,omitempty" yaml:"workers,omitempty"`

	// Behavior
	UseBrowser bool `json:"use_browser,omitempty" yaml:"use_browser,omitempty"` // Use headless browser for SPA job pages
	Verbose    bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`         // Print detailed debug information
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	data, path, err := readFile(path, "config")
	if err != nil {
		return nil, err
	}

	var cfg Config
	if isYAML(path) {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
		return &cfg, nil
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	switch c.Provider {
	case "", "gemini", "genai":
	default:
		return fmt.Errorf("config error: unknown provider %q (want gemini or genai)", c.Provider)
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.Workers < 0 {
		return fmt.Errorf("config error: 'workers' must be non-negative")
	}

	if c.NarrativeTimeout != "" {
		d, err := time.ParseDuration(c.NarrativeTimeout)
		if err != nil {
			return fmt.Errorf("config error: invalid 'narrative_timeout': %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("config error: 'narrative_timeout' must be positive")
		}
	}

	for _, n := range c.Narratives {
		if _, err := types.ParseNarrativeKind(n); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}

	// Validate local input paths exist (if specified)
	inputs := []struct{ field, path string }{{"job", c.Job}, {"cv", c.CV}, {"profile", c.Profile}}
	for _, in := range inputs {
		if in.path == "" || IsRemote(in.path) {
			continue
		}
		if _, err := os.Stat(in.path); os.IsNotExist(err) {
			return fmt.Errorf("config error: %s file not found: %s", in.field, in.path)
		}
	}

	return nil
}

// Timeout returns the narrative timeout, or DefaultNarrativeTimeout when unset or invalid.
func (c *Config) Timeout() time.Duration {
	if c.NarrativeTimeout == "" {
		return DefaultNarrativeTimeout
	}
	d, err := time.ParseDuration(c.NarrativeTimeout)
	if err != nil || d <= 0 {
		return DefaultNarrativeTimeout
	}
	return d
}

// NarrativeKinds parses the configured narrative kinds, skipping unknown names.
func (c *Config) NarrativeKinds() []types.NarrativeKind {
	kinds := make([]types.NarrativeKind, 0, len(c.Narratives))
	for _, n := range c.Narratives {
		if k, err := types.ParseNarrativeKind(n); err == nil {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Job == "" {
		result.Job = defaults.Job
	}
	if result.CV == "" {
		result.CV = defaults.CV
	}
	if result.Profile == "" {
		result.Profile = defaults.Profile
	}
	if result.Provider == "" {
		result.Provider = defaults.Provider
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.NarrativeTimeout == "" {
		result.NarrativeTimeout = defaults.NarrativeTimeout
	}
	if result.AMQPURL == "" {
		result.AMQPURL = defaults.AMQPURL
	}
	if len(result.Narratives) == 0 {
		result.Narratives = defaults.Narratives
	}

	// Int fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// IsRemote reports whether location points at a URL or object store rather than a local file.
func IsRemote(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "s3://")
}

func readFile(path, kind string) ([]byte, string, error) {
	if path == "" {
		return nil, "", fmt.Errorf("%s path is empty", kind)
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, "", fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s file %s: %w", kind, path, err)
	}
	return data, path, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
