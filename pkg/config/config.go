package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for seolens-engine. Values come from
// config.yaml with environment variable overrides; secrets (passwords,
// API keys) must only come from environment variables.
type Config struct {
	Env     string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version string `yaml:"-"` // set at load time, not from config

	// Database configuration (PostgreSQL intent store)
	Database DatabaseConfig `yaml:"database"`

	// AI holds the classifier endpoint settings.
	AI AIConfig `yaml:"ai"`

	// Classifier holds the batch-loop settings.
	Classifier ClassifierConfig `yaml:"classifier"`

	// MigrationsPath is the directory holding SQL migrations.
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"seolens"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"seolens"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"10"`
}

// AIConfig holds the model endpoint used for intent classification.
type AIConfig struct {
	// Provider selects the client: "openai" (any OpenAI-compatible
	// endpoint) or "anthropic".
	Provider string `yaml:"provider" env:"AI_PROVIDER" env-default:"openai"`
	Endpoint string `yaml:"endpoint" env:"AI_ENDPOINT" env-default:"https://api.openai.com/v1"`
	Model    string `yaml:"model" env:"AI_MODEL" env-default:"gpt-4o-mini"`
	APIKey   string `yaml:"-" env:"AI_API_KEY"` // Secret - not in YAML
}

// ClassifierConfig holds batch-loop pacing settings.
type ClassifierConfig struct {
	// BatchSize is the number of keywords per classification request.
	BatchSize int `yaml:"batch_size" env:"CLASSIFIER_BATCH_SIZE" env-default:"100"`
	// PacingDelaySeconds is the pause between batches.
	PacingDelaySeconds int `yaml:"pacing_delay_seconds" env:"CLASSIFIER_PACING_DELAY_SECONDS" env-default:"20"`
	// RequestTimeoutSeconds bounds one batch call.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds" env:"CLASSIFIER_REQUEST_TIMEOUT_SECONDS" env-default:"120"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. When no config file exists, environment variables alone are
// used. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	cfg := &Config{Version: version}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment config: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.AI.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("invalid ai provider %q (want openai or anthropic)", c.AI.Provider)
	}
	if c.Classifier.BatchSize <= 0 {
		return fmt.Errorf("classifier batch_size must be positive, got %d", c.Classifier.BatchSize)
	}
	return nil
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
