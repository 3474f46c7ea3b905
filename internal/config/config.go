package config

import (
	"fmt"
	"time"

	"github.com/aescanero/nexus-router/internal/router"
	"github.com/caarlos0/env/v10"
)

// DefaultDiagnosisRule is the porous-exhaustion condition used when
// DIAGNOSIS_RULE is unset
const DefaultDiagnosisRule = router.PorousCondition

// Config holds all configuration for the nexus worker and CLI
type Config struct {
	// Worker configuration
	WorkerID string `env:"WORKER_ID" envDefault:"nexus-1"`

	// Redis configuration
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASS" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Stream configuration
	StreamKey     string        `env:"STREAM_KEY" envDefault:"nexus.requests"`
	ConsumerGroup string        `env:"CONSUMER_GROUP" envDefault:"nexus-routers"`
	ResultStream  string        `env:"RESULT_STREAM" envDefault:"nexus.results"`
	BlockTime     time.Duration `env:"BLOCK_TIME" envDefault:"1s"`

	// Registry configuration; empty means built-in codes only
	RegistryFile string `env:"REGISTRY_FILE"`

	// Diagnosis configuration
	DiagnosisRule string `env:"DIAGNOSIS_RULE"`

	// Health check configuration
	HealthPort int `env:"HEALTH_PORT" envDefault:"8082"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.DiagnosisRule == "" {
		cfg.DiagnosisRule = DefaultDiagnosisRule
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.WorkerID == "" {
		return fmt.Errorf("WORKER_ID is required")
	}

	if c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}

	if c.StreamKey == "" {
		return fmt.Errorf("STREAM_KEY is required")
	}

	if c.ConsumerGroup == "" {
		return fmt.Errorf("CONSUMER_GROUP is required")
	}

	if c.ResultStream == "" {
		return fmt.Errorf("RESULT_STREAM is required")
	}

	if c.ResultStream == c.StreamKey {
		return fmt.Errorf("RESULT_STREAM must differ from STREAM_KEY")
	}

	if c.BlockTime <= 0 {
		return fmt.Errorf("BLOCK_TIME must be positive")
	}

	if c.DiagnosisRule == "" {
		return fmt.Errorf("DIAGNOSIS_RULE is required")
	}

	if c.HealthPort <= 0 || c.HealthPort > 65535 {
		return fmt.Errorf("HEALTH_PORT must be between 1 and 65535")
	}

	if !isValidLogLevel(c.LogLevel) {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error")
	}

	return nil
}

// isValidLogLevel checks if the log level is valid
func isValidLogLevel(level string) bool {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	return validLevels[level]
}

// ErrorStream returns the stream failed requests are published to
func (c *Config) ErrorStream() string {
	return c.ResultStream + ".errors"
}

// String returns a string representation of the config (without sensitive data)
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{WorkerID=%s, RedisAddr=%s, RedisDB=%d, StreamKey=%s, ConsumerGroup=%s, "+
			"ResultStream=%s, RegistryFile=%q, HealthPort=%d, LogLevel=%s}",
		c.WorkerID,
		c.RedisAddr,
		c.RedisDB,
		c.StreamKey,
		c.ConsumerGroup,
		c.ResultStream,
		c.RegistryFile,
		c.HealthPort,
		c.LogLevel,
	)
}
