package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrAlreadyInitialized is returned by Init when a manifest exists.
var ErrAlreadyInitialized = errors.New("project already initialized")

// Init writes a starter gqlmerge.toml into dir, creating dir when missing.
// An existing manifest is never overwritten.
func Init(dir string) (string, error) {
	if st, err := os.Stat(dir); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	} else if !st.IsDir() {
		return "", fmt.Errorf("%q is not a directory", dir)
	}

	manifestPath := filepath.Join(dir, ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return "", fmt.Errorf("%w: %s exists", ErrAlreadyInitialized, manifestPath)
	}
	if err := os.WriteFile(manifestPath, []byte(DefaultManifest()), 0o600); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}
	return manifestPath, nil
}

// DefaultManifest returns the starter manifest text.
func DefaultManifest() string {
	return `# gqlmerge project manifest
[schema]
paths = ["schema/**/*.graphql"]

[operations]
paths = []

[output]
path = ""

[attribution]
# 0 = one probe per CPU
jobs = 0
disk_cache = false
`
}
