// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package tradectlpath derives file paths from the tradectl base directory.
//
// The base directory (--dir flag) contains:
//
//	tradectl.yaml    Config file
//	tradectl.db      Default SQLite database
//	.env             Optional environment overrides for the server
package tradectlpath

import "path/filepath"

const (
	// ConfigFileName is the well-known config file name within the base directory.
	ConfigFileName = "tradectl.yaml"
	// DatabaseFileName is the default SQLite database file name within the base directory.
	DatabaseFileName = "tradectl.db"
	// EnvFileName is the optional dotenv file name within the base directory.
	EnvFileName = ".env"
)

// ConfigFilePath returns the path to the config file within the base directory.
func ConfigFilePath(dirPath string) string {
	return filepath.Join(dirPath, ConfigFileName)
}

// DatabaseFilePath returns the path to the default SQLite database within the base directory.
func DatabaseFilePath(dirPath string) string {
	return filepath.Join(dirPath, DatabaseFileName)
}

// EnvFilePath returns the path to the dotenv file within the base directory.
func EnvFilePath(dirPath string) string {
	return filepath.Join(dirPath, EnvFileName)
}
