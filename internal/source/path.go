package source

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// PathMode specifies how fragment paths are displayed.
type PathMode uint8

const (
	// PathModeAuto keeps short or relative paths and shortens long absolute ones.
	PathModeAuto PathMode = iota
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// ParsePathMode converts a flag value into a PathMode.
func ParsePathMode(s string) (PathMode, bool) {
	switch s {
	case "", "auto":
		return PathModeAuto, true
	case "absolute", "abs":
		return PathModeAbsolute, true
	case "relative", "rel":
		return PathModeRelative, true
	case "basename", "base":
		return PathModeBasename, true
	}
	return PathModeAuto, false
}

// AbsolutePath resolves path against the working directory.
func AbsolutePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(abs), nil
}

// RelativePath returns path relative to baseDir.
func RelativePath(path, baseDir string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil {
		return "", err
	}
	// вне базовой директории показываем абсолютный путь
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return normalizePath(absPath), nil
	}
	return filepath.ToSlash(rel), nil
}

// BaseName returns the last path element.
func BaseName(path string) string {
	return filepath.Base(path)
}

// FormatPath renders a fragment id according to mode.
// Virtual fragments are returned as-is: their id is not a path.
func FormatPath(f *Fragment, mode PathMode, baseDir string) string {
	if f == nil {
		return ""
	}
	if f.Virtual() {
		return f.ID
	}
	switch mode {
	case PathModeAbsolute:
		if abs, err := AbsolutePath(f.ID); err == nil {
			return abs
		}
	case PathModeRelative:
		if baseDir == "" {
			if wd, err := os.Getwd(); err == nil {
				baseDir = wd
			}
		}
		if rel, err := RelativePath(f.ID, baseDir); err == nil {
			return rel
		}
	case PathModeBasename:
		return BaseName(f.ID)
	case PathModeAuto:
		if len(f.ID) < 40 || !filepath.IsAbs(f.ID) {
			return f.ID
		}
		return BaseName(f.ID)
	}
	return f.ID
}

// FileURL renders an absolute file:// link for terminals that make them clickable.
func FileURL(path string) string {
	abs, err := AbsolutePath(path)
	if err != nil {
		abs = filepath.ToSlash(path)
	}
	if len(abs) > 0 && abs[0] != '/' {
		abs = "/" + abs
	}
	u := url.URL{Scheme: "file", Path: abs}
	return u.String()
}
