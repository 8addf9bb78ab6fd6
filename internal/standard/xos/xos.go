// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package xos provides extensions to the standard os package.
package xos

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome expands a leading ~ in a path to the user's home directory.
//
// Only "~" and paths starting with "~/" are expanded. Paths naming another
// user's home directory, such as "~other/a", are returned unchanged.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not get home directory: %w", err)
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~")), nil
}
