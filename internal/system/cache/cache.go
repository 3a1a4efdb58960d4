// Package cache provides a small key/value cache abstraction with in-memory
// (go-cache) and Redis backends.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/wso2/psd2-consent-mgt/internal/system/config"
)

// Client defines the cache operations used by the service.
type Client interface {
	// Get returns the value for key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores a value. A zero ttl uses the backend default.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	Delete(ctx context.Context, key string) error

	Ping(ctx context.Context) error

	Close() error
}

// ErrNotFound is returned by Get when the key is absent or expired.
var ErrNotFound = errors.New("cache: key not found")

// IsNotFound reports whether err signals a cache miss.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// New creates a cache client for the configured driver. Unknown drivers fall back to memory.
func New(cfg config.CacheConfig) (Client, error) {
	switch cfg.Driver {
	case "redis":
		return NewRedis(cfg)
	default:
		return NewMemory(cfg.Prefix, cfg.TTL), nil
	}
}

func prefixed(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + ":" + key
}
