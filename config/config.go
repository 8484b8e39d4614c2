// Package config loads the application configuration.
//
// Priority: defaults, then YAML file, then environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variable names honored by the loader. OPENAI_API_KEY and
// SERPER_API_KEY match what the hosted services themselves document.
const (
	EnvOpenAIAPIKey  = "OPENAI_API_KEY"
	EnvOpenAIBaseURL = "OPENAI_BASE_URL"
	EnvOpenAIModel   = "OPENAI_MODEL"
	EnvSerperAPIKey  = "SERPER_API_KEY"
	EnvOutputDir     = "SCRIBEFLOW_OUTPUT_DIR"
	EnvLogLevel      = "SCRIBEFLOW_LOG_LEVEL"
)

// Config is the full application configuration.
type Config struct {
	OpenAI  OpenAIConfig  `yaml:"openai"`
	Serper  SerperConfig  `yaml:"serper"`
	Agent   AgentConfig   `yaml:"agent"`
	Article ArticleConfig `yaml:"article"`
	Log     LogConfig     `yaml:"log"`
}

// OpenAIConfig configures the LLM provider.
type OpenAIConfig struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// SerperConfig configures the web search provider.
type SerperConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// AgentConfig holds runtime limits shared by all agents.
type AgentConfig struct {
	Temperature   float32 `yaml:"temperature"`
	MaxTokens     int     `yaml:"max_tokens"`
	MaxIterations int     `yaml:"max_iterations"`
	Verbose       bool    `yaml:"verbose"`
}

// ArticleConfig controls where the finished article lands.
type ArticleConfig struct {
	OutputDir string `yaml:"output_dir"`
	Filename  string `yaml:"filename"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration defaults.
func Default() *Config {
	return &Config{
		OpenAI: OpenAIConfig{
			Model:   "gpt-4o-mini",
			Timeout: 60 * time.Second,
		},
		Agent: AgentConfig{
			Temperature:   0.7,
			MaxTokens:     4096,
			MaxIterations: 10,
			Verbose:       true,
		},
		Article: ArticleConfig{
			OutputDir: ".",
			Filename:  "article.md",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Loader builds a Config from defaults, an optional YAML file, and the
// environment.
type Loader struct {
	configPath string
	validators []func(*Config) error
}

// NewLoader creates a loader with no config file.
func NewLoader() *Loader {
	return &Loader{}
}

// WithConfigPath sets the YAML file to load. Empty means skip.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithValidator appends a validation step run after loading.
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load resolves the configuration.
func (l *Loader) Load() (*Config, error) {
	cfg := Default()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}
	l.loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}
	return cfg, nil
}

func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func (l *Loader) loadFromEnv(cfg *Config) {
	setString(&cfg.OpenAI.APIKey, EnvOpenAIAPIKey)
	setString(&cfg.OpenAI.BaseURL, EnvOpenAIBaseURL)
	setString(&cfg.OpenAI.Model, EnvOpenAIModel)
	setString(&cfg.Serper.APIKey, EnvSerperAPIKey)
	setString(&cfg.Article.OutputDir, EnvOutputDir)
	setString(&cfg.Log.Level, EnvLogLevel)

	if v := os.Getenv("SCRIBEFLOW_MAX_ITERATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Agent.MaxIterations = n
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Agent.Temperature < 0 || c.Agent.Temperature > 2 {
		return fmt.Errorf("agent temperature must be in [0, 2], got %v", c.Agent.Temperature)
	}
	if c.Agent.MaxIterations <= 0 {
		return fmt.Errorf("agent max_iterations must be positive, got %d", c.Agent.MaxIterations)
	}
	if c.Article.Filename == "" {
		return fmt.Errorf("article filename must not be empty")
	}
	return nil
}

// MissingKeys lists required credentials that are not configured.
// The OpenAI key is the only hard requirement.
func (c *Config) MissingKeys() []string {
	var missing []string
	if c.OpenAI.APIKey == "" {
		missing = append(missing, EnvOpenAIAPIKey)
	}
	return missing
}

// SearchEnabled reports whether web search can be offered to agents.
func (c *Config) SearchEnabled() bool {
	return c.Serper.APIKey != ""
}
