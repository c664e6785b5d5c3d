// Package config provides centralized configuration management for the HR Pulse system.
// It handles loading configuration from multiple sources, validation, and provides
// a type-safe API for accessing configuration values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration files (JSON/YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern HRPULSE_* for namespacing:
//
//	HRPULSE_SERVER_PORT=8080
//	HRPULSE_PATHS_DATA_DIR=/var/lib/hrpulse/data
//	HRPULSE_PIPELINE_REFERENCE_DATE=2024-01-01
//	HRPULSE_LOGGING_LEVEL=info
//
// # Path Management
//
// The package resolves the data, output and logs directories to absolute
// paths:
//
//	dataDir := cfg.GetDataDir()
//	outputDir := cfg.GetOutputDir()
//
// # Validation
//
// All configuration is validated at load time to ensure:
//
//	- Required fields are present
//	- Values are within acceptable ranges
//	- File paths are accessible
//	- URLs are properly formatted
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Testing
//
// For testing, use config.Default() to create a configuration with
// sensible defaults that don't require environment variables or
// external resources.
package config