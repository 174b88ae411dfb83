package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lox/interpreter-go/pkg/driver"
)

var errManifestNotFound = errors.New("package.yml not found")

// resolveLoxHome returns LOX_HOME, defaulting to ~/.lox. It holds the
// dependency cache and REPL history.
func resolveLoxHome() (string, error) {
	if home := strings.TrimSpace(os.Getenv("LOX_HOME")); home != "" {
		abs, err := filepath.Abs(home)
		if err != nil {
			return "", fmt.Errorf("resolve LOX_HOME %q: %w", home, err)
		}
		return abs, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(userHome, ".lox"), nil
}

// searchPathsFromEnv splits LOX_PATH into prelude directories.
func searchPathsFromEnv() []string {
	var paths []string
	for _, p := range filepath.SplitList(os.Getenv("LOX_PATH")) {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// loadManifestFrom finds and parses the manifest governing start.
func loadManifestFrom(start string) (*driver.Manifest, error) {
	path, err := driver.FindManifest(start)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, errManifestNotFound
	}
	return driver.LoadManifest(path)
}

// hasRunnableManifest reports whether the working directory is governed by a
// manifest that names a main script.
func hasRunnableManifest() bool {
	cwd, err := os.Getwd()
	if err != nil {
		return false
	}
	manifest, err := loadManifestFrom(cwd)
	return err == nil && manifest.EntryPath() != ""
}

// loadLockfileForManifest returns nil when the manifest has no lockfile yet;
// git dependencies then fail later with driver.ErrNotInstalled.
func loadLockfileForManifest(manifest *driver.Manifest) (*driver.Lockfile, error) {
	if manifest == nil {
		return nil, nil
	}
	lock, err := driver.LoadLockfile(filepath.Join(manifest.Dir(), driver.LockfileFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read lockfile: %w", err)
	}
	return lock, nil
}
