package config

import (
	"os"
	"strconv"

	"gohypo/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Analysis AnalysisConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// AnalysisConfig holds estimation and rendering settings
type AnalysisConfig struct {
	// Workers caps concurrent per-observable estimations; 0 means one
	// goroutine per observable
	Workers int

	// FigureDir is where rendered figures land
	FigureDir string

	// FigureFormat is "png" or "svg"
	FigureFormat string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: loadDatabaseConfig(),
		Server:   loadServerConfig(),
		Analysis: loadAnalysisConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// LoadAnalysis reads only the analysis settings. The CLI runs file-to-file
// without a database, so it skips the full Load.
func LoadAnalysis() AnalysisConfig {
	return loadAnalysisConfig()
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL:     os.Getenv("DATABASE_URL"),
		SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port: getEnvOrDefault("PORT", "8080"),
	}
}

func loadAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		Workers:      getEnvIntOrDefault("ANALYSIS_WORKERS", 0),
		FigureDir:    getEnvOrDefault("FIGURE_DIR", "./figures"),
		FigureFormat: getEnvOrDefault("FIGURE_FORMAT", "png"),
	}
}

func validateConfig(config *Config) error {
	if config.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required")
	}
	if config.Analysis.Workers < 0 {
		return errors.ConfigInvalid("ANALYSIS_WORKERS must be >= 0")
	}
	switch config.Analysis.FigureFormat {
	case "png", "svg":
	default:
		return errors.ConfigInvalid("FIGURE_FORMAT must be png or svg")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
