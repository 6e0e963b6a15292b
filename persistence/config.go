package persistence

import (
	"fmt"
	"time"
)

// PersistenceType represents the type of result store backend
type PersistenceType string

const (
	PersistenceMemory PersistenceType = "memory"
	PersistenceBolt   PersistenceType = "bolt"
	PersistenceBadger PersistenceType = "badger"
)

// PersistenceConfig holds configuration for result stores
type PersistenceConfig struct {
	// Type of persistence backend
	Type PersistenceType `json:"type" yaml:"type"`

	// Path to database directory/file
	Path string `json:"path" yaml:"path"`

	// Additional options specific to each backend
	Options map[string]interface{} `json:"options,omitempty" yaml:"options,omitempty"`
}

// BoltConfig holds BoltDB-specific configuration
type BoltConfig struct {
	// Timeout for opening the database
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// NoGrowSync disables growing file size synchronization
	NoGrowSync bool `json:"no_grow_sync" yaml:"no_grow_sync"`

	// ReadOnly opens the database in read-only mode
	ReadOnly bool `json:"read_only" yaml:"read_only"`
}

// BadgerConfig holds BadgerDB-specific configuration
type BadgerConfig struct {
	// SyncWrites enables synchronous writes
	SyncWrites bool `json:"sync_writes" yaml:"sync_writes"`

	// InMemory creates a purely in-memory database
	InMemory bool `json:"in_memory" yaml:"in_memory"`

	// NumVersionsToKeep sets how many versions to keep per key
	NumVersionsToKeep int `json:"num_versions_to_keep" yaml:"num_versions_to_keep"`
}

// DefaultPersistenceConfig returns a default configuration for the specified type
func DefaultPersistenceConfig(persistenceType PersistenceType, path string) PersistenceConfig {
	config := PersistenceConfig{
		Type:    persistenceType,
		Path:    path,
		Options: make(map[string]interface{}),
	}

	switch persistenceType {
	case PersistenceBolt:
		config.Options = map[string]interface{}{
			"timeout":      "1s",
			"no_grow_sync": false,
			"read_only":    false,
		}
	case PersistenceBadger:
		config.Options = map[string]interface{}{
			"sync_writes":          false,
			"in_memory":            false,
			"num_versions_to_keep": 1,
		}
	}

	return config
}

// ValidateConfig validates a persistence configuration
func ValidateConfig(config PersistenceConfig) error {
	switch config.Type {
	case PersistenceMemory:
		// Memory persistence doesn't need a path
		return nil
	case PersistenceBadger:
		if config.Path == "" && !parseBool(config.Options, "in_memory", false) {
			return fmt.Errorf("path is required for %s persistence", config.Type)
		}
		return nil
	case PersistenceBolt:
		if config.Path == "" {
			return fmt.Errorf("path is required for %s persistence", config.Type)
		}
		return nil
	default:
		return fmt.Errorf("unsupported persistence type: %s", config.Type)
	}
}

// boltConfig extracts BoltConfig from generic options
func boltConfig(options map[string]interface{}) BoltConfig {
	return BoltConfig{
		Timeout:    parseDuration(options, "timeout", time.Second),
		NoGrowSync: parseBool(options, "no_grow_sync", false),
		ReadOnly:   parseBool(options, "read_only", false),
	}
}

// badgerConfig extracts BadgerConfig from generic options
func badgerConfig(options map[string]interface{}) BadgerConfig {
	return BadgerConfig{
		SyncWrites:        parseBool(options, "sync_writes", false),
		InMemory:          parseBool(options, "in_memory", false),
		NumVersionsToKeep: parseInt(options, "num_versions_to_keep", 1),
	}
}
