// Package config provides advanced configuration loading with multiple sources.
// This file demonstrates best practices for configuration management including:
//   - Multiple configuration sources (files, environment variables)
//   - Configuration hierarchy and overlays
//   - Type-safe configuration loading
//   - Comprehensive error handling
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ============================================================================
// CONFIGURATION LOADER
// ============================================================================

// Loader handles loading configuration from multiple sources.
// It demonstrates the Strategy pattern for different configuration formats
// and the Chain of Responsibility pattern for layered configuration.
type Loader struct {
	// basePath is the root directory for configuration files
	basePath string

	// environment is the current deployment environment
	environment Environment

	// sources tracks where configuration was loaded from
	sources []string

	// fileLoaders maps file extensions to their loaders
	fileLoaders map[string]FileLoader
}

// FileLoader interface for different configuration file formats.
// This demonstrates the Strategy pattern for handling multiple formats.
type FileLoader interface {
	Load(reader io.Reader, target interface{}) error
	Extension() string
}

// ============================================================================
// LOADER IMPLEMENTATION
// ============================================================================

// NewLoader creates a new configuration loader with sensible defaults.
func NewLoader(basePath string, env Environment) *Loader {
	if basePath == "" {
		basePath = "config"
	}

	loader := &Loader{
		basePath:    basePath,
		environment: env,
		sources:     make([]string, 0),
		fileLoaders: make(map[string]FileLoader),
	}

	// Register default file loaders
	loader.RegisterLoader(&YAMLLoader{})
	loader.RegisterLoader(&JSONLoader{})

	return loader
}

// RegisterLoader registers a new file loader for a specific format.
func (l *Loader) RegisterLoader(loader FileLoader) {
	l.fileLoaders[loader.Extension()] = loader
}

// Load loads configuration using a hierarchy of sources.
// The loading order (from lowest to highest priority):
//   1. Default values (from LoadConfig's env-var loaders)
//   2. Base configuration file (base.yaml)
//   3. Environment-specific file (e.g., production.yaml)
//   4. Local overrides file (local.yaml - for development)
//   5. The environment variables handled by loadEnvironmentVariables
//      (re-applied last); any other env var only affects step 1
func (l *Loader) Load() (*Config, error) {
	// Start with the env-var-driven configuration as the default layer
	cfg := LoadConfig()
	l.sources = append(l.sources, "defaults+env")

	// Load base configuration
	if err := l.loadFile("base", &cfg); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load base config: %w", err)
	}

	// Load environment-specific configuration
	envFile := strings.ToLower(string(l.environment))
	if err := l.loadFile(envFile, &cfg); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load %s config: %w", envFile, err)
	}

	// Load local overrides (primarily for development)
	if l.environment == Development {
		if err := l.loadFile("local", &cfg); err != nil && !os.IsNotExist(err) {
			// Local file errors are warnings in development
			fmt.Fprintf(os.Stderr, "Warning: failed to load local config: %v\n", err)
		}
	}

	// The env vars handled here take priority over file overlays
	l.loadEnvironmentVariables(&cfg)
	l.sources = append(l.sources, "environment")

	// Set metadata
	cfg.LoadedFrom = l.sources

	// Apply environment-specific defaults
	cfg.applyEnvironmentDefaults()

	// Validate the final configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFile loads configuration from a file with automatic format detection.
func (l *Loader) loadFile(name string, cfg *Config) error {
	// Try each supported extension
	for ext, loader := range l.fileLoaders {
		filename := fmt.Sprintf("%s.%s", name, ext)
		path := filepath.Join(l.basePath, filename)

		file, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue // Try next extension
			}
			return err
		}
		defer file.Close()

		if err := loader.Load(file, cfg); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}

		l.sources = append(l.sources, path)
		return nil
	}

	// No file found with any supported extension
	return os.ErrNotExist
}

// loadEnvironmentVariables re-applies a fixed set of environment variables
// after the file overlays: SERVER_PORT, SERVER_HOST, STORAGE_DYNAMODB_TABLE,
// AWS_REGION, ENABLE_METRICS, ENABLE_CACHING, JWT_SECRET and ENABLE_AUTH.
// Any other env var read by LoadConfig is overridden by a file that sets
// the same field.
func (l *Loader) loadEnvironmentVariables(cfg *Config) {
	// Server configuration
	if val := os.Getenv("SERVER_PORT"); val != "" {
		if port := parseInt(val); port > 0 {
			cfg.Server.Port = port
		}
	}
	if val := os.Getenv("SERVER_HOST"); val != "" {
		cfg.Server.Host = val
	}

	// Storage configuration
	if val := os.Getenv("STORAGE_DYNAMODB_TABLE"); val != "" {
		cfg.Storage.DynamoDBTable = val
	}

	// AWS configuration
	if val := os.Getenv("AWS_REGION"); val != "" {
		cfg.AWS.Region = val
	}

	// Feature flags
	if val := os.Getenv("ENABLE_METRICS"); val != "" {
		cfg.Features.EnableMetrics = parseBool(val)
	}
	if val := os.Getenv("ENABLE_CACHING"); val != "" {
		cfg.Features.EnableCaching = parseBool(val)
	}

	// Security
	if val := os.Getenv("JWT_SECRET"); val != "" {
		cfg.Security.JWTSecret = val
	}
	if val := os.Getenv("ENABLE_AUTH"); val != "" {
		cfg.Security.EnableAuth = parseBool(val)
	}
}

// ============================================================================
// FILE LOADERS
// ============================================================================

// YAMLLoader loads configuration from YAML files.
type YAMLLoader struct{}

func (y *YAMLLoader) Load(reader io.Reader, target interface{}) error {
	decoder := yaml.NewDecoder(reader)
	return decoder.Decode(target)
}

func (y *YAMLLoader) Extension() string {
	return "yaml"
}

// JSONLoader loads configuration from JSON files.
type JSONLoader struct{}

func (j *JSONLoader) Load(reader io.Reader, target interface{}) error {
	decoder := json.NewDecoder(reader)
	return decoder.Decode(target)
}

func (j *JSONLoader) Extension() string {
	return "json"
}

// ============================================================================
// HELPER FUNCTIONS
// ============================================================================

func parseInt(s string) int {
	val, _ := strconv.Atoi(s)
	return val
}

func parseBool(s string) bool {
	val, _ := strconv.ParseBool(s)
	return val
}

// LoadWithLoader loads configuration using the file-hierarchy loader: code
// defaults and env vars (LoadConfig), overlaid by base/{env}/local YAML or
// JSON files under basePath, with the env vars handled by
// loadEnvironmentVariables re-applied last so those win over files. This
// is the entrypoint cmd/server actually calls.
func LoadWithLoader(basePath string) (*Config, error) {
	env := getEnvironment()
	loader := NewLoader(basePath, env)
	return loader.Load()
}
