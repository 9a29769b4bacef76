package project

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Manifest is a loaded gqlmerge.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the manifest sections.
type Config struct {
	Schema      SchemaConfig      `toml:"schema"`
	Operations  OperationsConfig  `toml:"operations"`
	Output      OutputConfig      `toml:"output"`
	Attribution AttributionConfig `toml:"attribution"`
}

type SchemaConfig struct {
	Paths []string `toml:"paths"`
}

type OperationsConfig struct {
	Paths []string `toml:"paths"`
}

type OutputConfig struct {
	Path string `toml:"path"`
}

type AttributionConfig struct {
	Jobs      int  `toml:"jobs"`
	DiskCache bool `toml:"disk_cache"`
}

// Load finds gqlmerge.toml upward from startDir and parses it.
// ok is false when no manifest exists.
func Load(startDir string) (*Manifest, bool, error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

// LoadConfig parses and validates a manifest file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if !meta.IsDefined("schema") {
		return Config{}, fmt.Errorf("%s: missing [schema]", path)
	}
	if !meta.IsDefined("schema", "paths") || len(cfg.Schema.Paths) == 0 {
		return Config{}, fmt.Errorf("%s: missing [schema].paths", path)
	}
	for _, p := range cfg.Schema.Paths {
		if strings.TrimSpace(p) == "" {
			return Config{}, fmt.Errorf("%s: empty entry in [schema].paths", path)
		}
	}
	if cfg.Attribution.Jobs < 0 {
		return Config{}, fmt.Errorf("%s: [attribution].jobs must not be negative", path)
	}
	return cfg, nil
}

// SchemaPatterns returns schema globs resolved against the manifest root.
func (m *Manifest) SchemaPatterns() []string {
	return m.resolveAll(m.Config.Schema.Paths)
}

// OperationPatterns returns operation globs resolved against the manifest root.
func (m *Manifest) OperationPatterns() []string {
	return m.resolveAll(m.Config.Operations.Paths)
}

// OutputPath returns the output file resolved against the root, or "".
func (m *Manifest) OutputPath() string {
	if strings.TrimSpace(m.Config.Output.Path) == "" {
		return ""
	}
	return m.resolve(m.Config.Output.Path)
}

func (m *Manifest) resolveAll(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, m.resolve(p))
	}
	return out
}

func (m *Manifest) resolve(p string) string {
	p = filepath.FromSlash(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Root, p)
}
