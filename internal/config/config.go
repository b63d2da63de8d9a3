// Package config holds the server settings and the two ways they arrive:
// a TOML file on disk and LSP initialization options / configuration
// pushes, which overlay field by field.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	// PathSuggestions gates link-target completion per workspace.
	PathSuggestions bool `json:"path_suggestions" toml:"path_suggestions"`
	// FileExtensions lists the extensions treated as Markdown.
	FileExtensions []string `json:"file_extensions" toml:"file_extensions"`
	// DefaultExtension is appended to extensionless link targets when
	// navigating.
	DefaultExtension string `json:"default_extension" toml:"default_extension"`
	// Index enables the persistent workspace link index.
	Index bool `json:"index" toml:"index"`
	// LogFile receives server logs; empty means no log file.
	LogFile string `json:"log_file" toml:"log_file"`
}

var defaultConfig = Config{
	PathSuggestions:  true,
	FileExtensions:   []string{".md", ".markdown", ".mdx"},
	DefaultExtension: ".md",
	Index:            true,
}

func Default() Config {
	return defaultConfig
}

// Load fills a Config with the defaults overlaid by the fields present
// in v, typically the client's initialization options.
func Load(v any) (Config, error) {
	return Merge(Default(), v)
}

// Merge overlays the fields present in v onto base.
func Merge(base Config, v any) (Config, error) {
	cfg := base

	data, err := json.Marshal(v)
	if err != nil {
		return Config{}, fmt.Errorf("failed to marshal source: %w", err)
	}

	// only fields present in v will overwrite.
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal into Config: %w", err)
	}

	return cfg, nil
}

// LoadFile reads a TOML config file, overlaying the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return cfg, nil
}
