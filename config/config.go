package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dshills/kernelfn/api"
	"github.com/dshills/kernelfn/core/compute"
	"github.com/dshills/kernelfn/logging"
	"github.com/dshills/kernelfn/persistence"
	"gopkg.in/yaml.v3"
)

// Config represents the complete kernelfn configuration
type Config struct {
	// Server configuration
	Server ServerConfig `yaml:"server" json:"server"`

	// Persistence configuration
	Persistence persistence.PersistenceConfig `yaml:"persistence" json:"persistence"`

	// Compute configuration
	Compute ComputeConfig `yaml:"compute" json:"compute"`

	// Logging configuration
	Logging logging.Config `yaml:"logging" json:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host            string        `yaml:"host" json:"host"`
	Port            int           `yaml:"port" json:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" json:"max_body_bytes"`
}

// ComputeConfig contains the execution policy and input checks
type ComputeConfig struct {
	compute.Config `yaml:",inline"`

	// RequireFinite rejects NaN and Inf inputs instead of propagating them
	RequireFinite bool `yaml:"require_finite" json:"require_finite"`
}

// LoadConfig loads configuration from various sources with the following precedence:
// 1. Environment variables
// 2. Configuration file (~/.kernelfn.yml or specified path)
// 3. Default values
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	// If no config path specified, try default location
	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			configPath = filepath.Join(homeDir, ".kernelfn.yml")
		}
	}

	// Load from file if it exists
	if configPath != "" {
		if err := loadConfigFromFile(configPath, config); err != nil {
			// Only return error if file exists but can't be read
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
			}
		}
	}

	// Override with environment variables
	if err := loadConfigFromEnv(config); err != nil {
		return nil, err
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadConfigFromFile loads configuration from a YAML file
func loadConfigFromFile(path string, config *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, config)
}

// loadConfigFromEnv loads configuration from environment variables
func loadConfigFromEnv(config *Config) error {
	// Server configuration
	if host := os.Getenv("KERNELFN_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("KERNELFN_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid KERNELFN_PORT %q: %w", port, err)
		}
		config.Server.Port = p
	}

	// Persistence configuration
	if backend := os.Getenv("KERNELFN_STORE_BACKEND"); backend != "" {
		config.Persistence.Type = persistence.PersistenceType(backend)
	}
	if path := os.Getenv("KERNELFN_STORE_PATH"); path != "" {
		config.Persistence.Path = path
	}

	// Compute configuration
	if workers := os.Getenv("KERNELFN_WORKERS"); workers != "" {
		w, err := strconv.Atoi(workers)
		if err != nil {
			return fmt.Errorf("invalid KERNELFN_WORKERS %q: %w", workers, err)
		}
		config.Compute.Workers = w
	}

	// Logging configuration
	if level := os.Getenv("KERNELFN_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    32 << 20,
		},
		Persistence: persistence.PersistenceConfig{
			Type:    persistence.PersistenceMemory,
			Path:    "data/kernelfn.db",
			Options: map[string]interface{}{},
		},
		Compute: ComputeConfig{
			Config: compute.DefaultConfig(),
		},
		Logging: logging.DefaultConfig(),
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port number: %d", c.Server.Port)
	}
	if c.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("max_body_bytes must be non-negative, got %d", c.Server.MaxBodyBytes)
	}

	// Validate persistence config
	if err := persistence.ValidateConfig(c.Persistence); err != nil {
		return fmt.Errorf("persistence config validation failed: %w", err)
	}

	// Validate compute config
	if err := c.Compute.Validate(); err != nil {
		return fmt.Errorf("compute config validation failed: %w", err)
	}

	// Validate logging config
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config validation failed: %w", err)
	}

	return nil
}

// ToServerConfig converts to api.ServerConfig
func (c *Config) ToServerConfig() api.ServerConfig {
	return api.ServerConfig{
		Host:            c.Server.Host,
		Port:            c.Server.Port,
		ReadTimeout:     c.Server.ReadTimeout,
		WriteTimeout:    c.Server.WriteTimeout,
		IdleTimeout:     60 * time.Second, // Default idle timeout
		ShutdownTimeout: c.Server.ShutdownTimeout,
		MaxBodyBytes:    c.Server.MaxBodyBytes,
		RequireFinite:   c.Compute.RequireFinite,
	}
}
