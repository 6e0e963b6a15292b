package persistence

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/dshills/kernelfn/core"
)

// DefaultFactory creates result stores from configuration
type DefaultFactory struct{}

// NewDefaultFactory creates a new default persistence factory
func NewDefaultFactory() *DefaultFactory {
	return &DefaultFactory{}
}

// CreateStore creates a result store based on configuration
func (f *DefaultFactory) CreateStore(config PersistenceConfig) (core.ResultStore, error) {
	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid persistence configuration: %w", err)
	}

	switch config.Type {
	case PersistenceMemory:
		return NewMemoryStore(), nil
	case PersistenceBolt:
		return NewBoltStoreWithConfig(config.Path, boltConfig(config.Options))
	case PersistenceBadger:
		return NewBadgerStoreWithConfig(config.Path, badgerConfig(config.Options))
	default:
		return nil, fmt.Errorf("unsupported persistence type: %s", config.Type)
	}
}

// validateResult checks a result before it is written
func validateResult(r core.Result) error {
	if r.ID == "" {
		return fmt.Errorf("result ID cannot be empty")
	}
	if r.Matrix == nil {
		return fmt.Errorf("result %s has no matrix", r.ID)
	}
	return nil
}

// sortInfos orders listings oldest first, breaking ties by ID
func sortInfos(infos []core.ResultInfo) {
	slices.SortFunc(infos, func(a, b core.ResultInfo) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// Helper function to parse duration from config options
func parseDuration(options map[string]interface{}, key string, defaultValue time.Duration) time.Duration {
	if val, exists := options[key]; exists {
		switch v := val.(type) {
		case string:
			if duration, err := time.ParseDuration(v); err == nil {
				return duration
			}
		case time.Duration:
			return v
		}
	}
	return defaultValue
}

// Helper function to parse bool from config options
func parseBool(options map[string]interface{}, key string, defaultValue bool) bool {
	if val, exists := options[key]; exists {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return defaultValue
}

// Helper function to parse int from config options
func parseInt(options map[string]interface{}, key string, defaultValue int) int {
	if val, exists := options[key]; exists {
		if i, ok := val.(int); ok {
			return i
		}
		if f, ok := val.(float64); ok {
			return int(f)
		}
	}
	return defaultValue
}
