// Package config provides centralized configuration management for the
// territory sales system. It handles loading configuration from multiple
// sources, validation, and provides a type-safe API for accessing
// configuration values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration files (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern TERRITORY_* for namespacing:
//
//	TERRITORY_SERVER_PORT=8080
//	TERRITORY_LOGGING_LEVEL=info
//	TERRITORY_PATHS_DATA_DIR=data
//	TERRITORY_INGEST_MAX_UPLOAD_SIZE=10485760
//
// # Path Management
//
// The package provides centralized path management through the Paths type,
// which handles all file system paths relative to the executable location:
//
//	paths, err := config.GetPaths()
//	snapshot := paths.SnapshotFile
//	upload := paths.GetUploadPath("territory.xlsx")
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
