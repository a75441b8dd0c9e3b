// File: internal/services/chunking/config.go
package chunking

import "errors"

const (
	DefaultChunkSize    = 512
	DefaultChunkOverlap = 50
	DefaultWindowSize   = 3
	DefaultSeparator    = ". "

	WindowMetadataKey       = "window"
	OriginalTextMetadataKey = "original_text"
)

type Config struct {
	// ChunkSize is both the character threshold for dynamic dispatch and the
	// token budget of the sentence splitter.
	ChunkSize    int
	ChunkOverlap int
	WindowSize   int
	Separator    string
}

func DefaultConfig() *Config {
	return &Config{
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
		WindowSize:   DefaultWindowSize,
		Separator:    DefaultSeparator,
	}
}

func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return errors.New("chunk size must be positive")
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return errors.New("chunk overlap must be in [0, chunk size)")
	}
	if c.WindowSize < 0 {
		return errors.New("window size cannot be negative")
	}
	return nil
}
