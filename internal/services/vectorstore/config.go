// File: internal/services/vectorstore/config.go
package vectorstore

import (
	"errors"
	"time"
)

type Config struct {
	Host   string
	Port   int // gRPC port
	APIKey string
	UseTLS bool

	CollectionName string
	Dimension      int

	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	BatchSize  int
}

func DefaultConfig() *Config {
	return &Config{
		Host:           "localhost",
		Port:           6334,
		CollectionName: "documents",
		Dimension:      1536,
		Timeout:        30 * time.Second,
		MaxRetries:     3,
		RetryDelay:     2 * time.Second,
		BatchSize:      100,
	}
}

func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("qdrant host is required")
	}
	if c.Port <= 0 {
		return errors.New("qdrant port must be positive")
	}
	if c.CollectionName == "" {
		return errors.New("qdrant collection name is required")
	}
	if c.Dimension <= 0 {
		return errors.New("vector dimension must be positive")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return errors.New("max retries cannot be negative")
	}
	return nil
}
