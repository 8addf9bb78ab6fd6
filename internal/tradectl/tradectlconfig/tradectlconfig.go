// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package tradectlconfig provides configuration parsing and validation for tradectl.
//
// Configuration is stored at <dir>/tradectl.yaml, where <dir> is the base
// directory given by the --dir flag.
package tradectlconfig

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bufdev/tradectl/internal/pkg/brokercsv"
	"github.com/bufdev/tradectl/internal/standard/xos"
	"github.com/bufdev/tradectl/internal/tradectl/tradectlpath"
	"gopkg.in/yaml.v3"
)

// DatabaseDSNEnvVar overrides database.dsn when set.
const DatabaseDSNEnvVar = "TRADECTL_DATABASE_DSN"

// DefaultServerAddress is the server address used when server.address is not set.
const DefaultServerAddress = ":5000"

// configTemplate is the default configuration file template with comments.
// yaml.v3 does not preserve comments, so we hardcode the template string.
const configTemplate = `# The configuration file version.
#
# Required. The only current valid version is v1.
version: v1
# Database configuration for saved trades.
#
# Optional. Defaults to a SQLite database at tradectl.db in this directory.
database:
  # The database type: sqlite, postgres, or mysql.
  type: sqlite
  # The data source name.
  #
  # For sqlite, a file path. Relative paths are relative to this directory.
  # For postgres, e.g. "host=localhost user=tradectl dbname=tradectl sslmode=disable".
  # For mysql, e.g. "tradectl:password@tcp(localhost:3306)/tradectl?parseTime=true".
  #
  # Can be overridden with the TRADECTL_DATABASE_DSN environment variable.
  # dsn: tradectl.db
# Import limits.
#
# Optional.
# import:
#   # The maximum size of an export in bytes. Defaults to 10 MiB.
#   max_bytes: 10485760
#   # The maximum number of data rows in an export. Defaults to 100000.
#   max_rows: 100000
# HTTP server configuration for "tradectl serve".
#
# Optional.
# server:
#   # The address to listen on. Defaults to :5000.
#   address: ":5000"
`

// DatabaseType is a supported database type.
type DatabaseType string

const (
	// DatabaseTypeSQLite is a SQLite database file.
	DatabaseTypeSQLite DatabaseType = "sqlite"
	// DatabaseTypePostgres is a PostgreSQL server.
	DatabaseTypePostgres DatabaseType = "postgres"
	// DatabaseTypeMySQL is a MySQL server.
	DatabaseTypeMySQL DatabaseType = "mysql"
)

// ExternalConfig is the YAML-serializable configuration file structure.
type ExternalConfig struct {
	// Version is the configuration file version (must be "v1").
	Version string `yaml:"version"`
	// Database holds the database configuration.
	Database ExternalDatabaseConfig `yaml:"database"`
	// Import holds the import limits.
	Import ExternalImportConfig `yaml:"import"`
	// Server holds the HTTP server configuration.
	Server ExternalServerConfig `yaml:"server"`
}

// ExternalDatabaseConfig holds database configuration.
type ExternalDatabaseConfig struct {
	// Type is the database type.
	Type string `yaml:"type"`
	// DSN is the data source name.
	DSN string `yaml:"dsn"`
}

// ExternalImportConfig holds import limits.
type ExternalImportConfig struct {
	// MaxBytes is the maximum export size in bytes.
	MaxBytes int64 `yaml:"max_bytes"`
	// MaxRows is the maximum number of data rows.
	MaxRows int `yaml:"max_rows"`
}

// ExternalServerConfig holds HTTP server configuration.
type ExternalServerConfig struct {
	// Address is the listen address.
	Address string `yaml:"address"`
}

// Config is the validated runtime configuration derived from the config file.
type Config struct {
	// Database is the database configuration.
	Database DatabaseConfig
	// ImportMaxBytes is the maximum export size in bytes.
	ImportMaxBytes int64
	// ImportMaxRows is the maximum number of data rows in an export.
	ImportMaxRows int
	// ServerAddress is the HTTP server listen address.
	ServerAddress string
}

// DatabaseConfig is the validated database configuration.
type DatabaseConfig struct {
	// Type is the database type.
	Type DatabaseType
	// DSN is the data source name. SQLite DSNs are file paths with ~ expanded.
	DSN string
}

// ReadOptions returns the brokercsv options for the configured import limits.
func (c *Config) ReadOptions() []brokercsv.ReadOption {
	return []brokercsv.ReadOption{
		brokercsv.ReadWithMaxBytes(c.ImportMaxBytes),
		brokercsv.ReadWithMaxRows(c.ImportMaxRows),
	}
}

// NewConfig validates an ExternalConfig and returns a runtime Config.
//
// dirPath is the base directory, used for the default SQLite database and to
// resolve relative SQLite paths.
func NewConfig(dirPath string, externalConfig ExternalConfig) (*Config, error) {
	if externalConfig.Version != "v1" {
		return nil, fmt.Errorf("unsupported config version %q, must be v1", externalConfig.Version)
	}
	databaseConfig, err := newDatabaseConfig(dirPath, externalConfig.Database)
	if err != nil {
		return nil, err
	}
	if externalConfig.Import.MaxBytes < 0 {
		return nil, fmt.Errorf("import.max_bytes must be positive, got %d", externalConfig.Import.MaxBytes)
	}
	if externalConfig.Import.MaxRows < 0 {
		return nil, fmt.Errorf("import.max_rows must be positive, got %d", externalConfig.Import.MaxRows)
	}
	config := &Config{
		Database:       databaseConfig,
		ImportMaxBytes: externalConfig.Import.MaxBytes,
		ImportMaxRows:  externalConfig.Import.MaxRows,
		ServerAddress:  strings.TrimSpace(externalConfig.Server.Address),
	}
	if config.ImportMaxBytes == 0 {
		config.ImportMaxBytes = brokercsv.DefaultMaxBytes
	}
	if config.ImportMaxRows == 0 {
		config.ImportMaxRows = brokercsv.DefaultMaxRows
	}
	if config.ServerAddress == "" {
		config.ServerAddress = DefaultServerAddress
	}
	return config, nil
}

// ReadConfig reads and validates the configuration file from the given base directory.
// Returns a clear error message directing users to run "tradectl config init" if the file is missing.
//
// getenv is used to read DatabaseDSNEnvVar, and may be nil.
func ReadConfig(dirPath string, getenv func(string) string) (*Config, error) {
	filePath := tradectlpath.ConfigFilePath(dirPath)
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found at %s, run \"tradectl config init\" to create one", filePath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var externalConfig ExternalConfig
	if err := unmarshalYAMLStrict(data, &externalConfig); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", filePath, err)
	}
	if getenv != nil {
		if dsn := getenv(DatabaseDSNEnvVar); dsn != "" {
			externalConfig.Database.DSN = dsn
		}
	}
	return NewConfig(dirPath, externalConfig)
}

// InitConfig creates a new configuration file with a documented template.
// Creates the base directory if it does not exist.
// Returns the path to the created file, or an error if the file already exists.
func InitConfig(dirPath string) (string, error) {
	filePath := tradectlpath.ConfigFilePath(dirPath)
	if _, err := os.Stat(filePath); err == nil {
		return "", fmt.Errorf("configuration file already exists: %s", filePath)
	}
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(filePath, []byte(configTemplate), 0o644); err != nil {
		return "", err
	}
	return filePath, nil
}

// ValidateConfig reads and validates the configuration file from the given base directory.
func ValidateConfig(dirPath string, getenv func(string) string) error {
	_, err := ReadConfig(dirPath, getenv)
	return err
}

// *** PRIVATE ***

func newDatabaseConfig(dirPath string, externalDatabaseConfig ExternalDatabaseConfig) (DatabaseConfig, error) {
	databaseType := DatabaseType(strings.ToLower(strings.TrimSpace(externalDatabaseConfig.Type)))
	dsn := strings.TrimSpace(externalDatabaseConfig.DSN)
	switch databaseType {
	case "", DatabaseTypeSQLite:
		if dsn == "" {
			return DatabaseConfig{
				Type: DatabaseTypeSQLite,
				DSN:  tradectlpath.DatabaseFilePath(dirPath),
			}, nil
		}
		filePath, err := resolveSQLitePath(dirPath, dsn)
		if err != nil {
			return DatabaseConfig{}, err
		}
		return DatabaseConfig{
			Type: DatabaseTypeSQLite,
			DSN:  filePath,
		}, nil
	case DatabaseTypePostgres, DatabaseTypeMySQL:
		if dsn == "" {
			return DatabaseConfig{}, fmt.Errorf("database.dsn is required for database type %q", databaseType)
		}
		return DatabaseConfig{
			Type: databaseType,
			DSN:  dsn,
		}, nil
	default:
		return DatabaseConfig{}, fmt.Errorf("unsupported database.type %q, must be one of sqlite, postgres, mysql", externalDatabaseConfig.Type)
	}
}

// resolveSQLitePath expands ~ and resolves relative file paths against dirPath.
// URI and in-memory DSNs are returned unchanged.
func resolveSQLitePath(dirPath string, dsn string) (string, error) {
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return dsn, nil
	}
	dsn, err := xos.ExpandHome(dsn)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(dsn) {
		return dsn, nil
	}
	return filepath.Join(dirPath, dsn), nil
}

// unmarshalYAMLStrict unmarshals the data as YAML with strict field checking.
// If the data length is 0, this is a no-op.
func unmarshalYAMLStrict(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	yamlDecoder := yaml.NewDecoder(bytes.NewReader(data))
	// Reject unknown fields.
	yamlDecoder.KnownFields(true)
	if err := yamlDecoder.Decode(v); err != nil {
		return fmt.Errorf("could not unmarshal as YAML: %w", err)
	}
	return nil
}
