package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"

	"github.com/nox-hq/gptcore/assist"
)

// ConfigFileName is the project-level configuration file looked up in the
// working directory.
const ConfigFileName = ".gptcore.yaml"

// Render modes for reply output.
const (
	RenderAuto     = "auto"
	RenderMarkdown = "markdown"
	RenderPlain    = "plain"
)

// Config holds settings loaded from .gptcore.yaml, overridden by environment
// variables.
type Config struct {
	Model             string  `yaml:"model" env:"GPTCORE_MODEL"`
	Temperature       float64 `yaml:"temperature" env:"GPTCORE_TEMPERATURE"`
	Pricing           Pricing `yaml:"pricing"`
	APIKeyEnv         string  `yaml:"api_key_env" env:"GPTCORE_API_KEY_ENV"` // env var holding the API key
	KeyFile           string  `yaml:"key_file" env:"GPTCORE_KEY_FILE"`       // read when the env var is unset
	BaseURL           string  `yaml:"base_url" env:"OPENAI_BASE_URL"`        // custom OpenAI-compatible API base URL
	Timeout           string  `yaml:"timeout" env:"GPTCORE_TIMEOUT"`         // per-request timeout (e.g., "2m", "30s")
	RequestsPerMinute int     `yaml:"requests_per_minute" env:"GPTCORE_RPM"`
	LogLevel          string  `yaml:"log_level" env:"GPTCORE_LOG_LEVEL"`
	Render            string  `yaml:"render" env:"GPTCORE_RENDER"` // auto, markdown or plain
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		Model:       assist.DefaultModel,
		Temperature: DefaultTemperature,
		Pricing:     DefaultPricing(),
		APIKeyEnv:   DefaultAPIKeyEnv,
		KeyFile:     DefaultKeyFile,
		LogLevel:    "warn",
		Render:      RenderAuto,
	}
}

// LoadConfig reads the YAML file at path on top of DefaultConfig and then
// applies environment overrides. An empty path means .gptcore.yaml in the
// working directory. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = filepath.Join(".", ConfigFileName)
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Model == "" {
		return errors.New("config: model must not be empty")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("config: temperature %v outside [0, 2]", c.Temperature)
	}
	if c.Pricing.InputPerToken < 0 || c.Pricing.OutputPerToken < 0 {
		return errors.New("config: token prices must not be negative")
	}
	if c.APIKeyEnv == "" {
		return errors.New("config: api_key_env must not be empty")
	}
	if c.RequestsPerMinute < 0 {
		return fmt.Errorf("config: requests_per_minute %d is negative", c.RequestsPerMinute)
	}
	if _, err := c.RequestTimeout(); err != nil {
		return err
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	switch c.Render {
	case RenderAuto, RenderMarkdown, RenderPlain:
	default:
		return fmt.Errorf("config: unknown render mode %q", c.Render)
	}
	return nil
}

// RequestTimeout parses Timeout. An empty value means no timeout.
func (c *Config) RequestTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("config: invalid timeout %q: %w", c.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("config: timeout %q is negative", c.Timeout)
	}
	return d, nil
}

// YAML returns the configuration as a YAML document.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
