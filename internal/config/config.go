package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxChunkBytes bounds a single upload-chunk request body (32 MiB).
const DefaultMaxChunkBytes = 32 << 20

// Config holds application configuration.
type Config struct {
	// StorageDir overrides the base directory holding sessions/, tmp/ and
	// exports/. Empty means ~/.reel.
	StorageDir string `json:"storage_dir,omitempty"`

	// AllowedPaths is an allowlist of directories for import/export operations.
	// Paths outside <base>/exports require either being in this list or
	// AllowUnsafePaths=true. Paths should be absolute (relative paths are ignored).
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for import/export.
	// When true, any directory is allowed (but symlink and extension checks
	// still apply). Use with caution.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// MaxChunkBytes is the maximum accepted size of one upload chunk.
	MaxChunkBytes int64 `json:"max_chunk_bytes,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxChunkBytes: DefaultMaxChunkBytes,
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.reel.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.StorageDir = overlay.StorageDir
	if result.StorageDir == "" {
		result.StorageDir = base.StorageDir
	}

	result.MaxChunkBytes = overlay.MaxChunkBytes
	if result.MaxChunkBytes == 0 {
		result.MaxChunkBytes = base.MaxChunkBytes
	}

	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
