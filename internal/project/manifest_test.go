package project

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFindsManifestUpward(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `
[schema]
paths = ["schema/**/*.graphql", "extra.graphql"]

[operations]
paths = ["ops/*.graphql"]

[output]
path = "build/schema.graphql"

[attribution]
jobs = 4
disk_cache = true
`)
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	m, ok, err := Load(nested)
	if err != nil || !ok {
		t.Fatalf("Load = %v, %v", ok, err)
	}
	want := []string{
		filepath.Join(root, "schema", "**", "*.graphql"),
		filepath.Join(root, "extra.graphql"),
	}
	if diff := cmp.Diff(want, m.SchemaPatterns()); diff != "" {
		t.Errorf("SchemaPatterns mismatch (-want +got):\n%s", diff)
	}
	if got := m.OutputPath(); got != filepath.Join(root, "build", "schema.graphql") {
		t.Errorf("OutputPath = %q", got)
	}
	if m.Config.Attribution.Jobs != 4 || !m.Config.Attribution.DiskCache {
		t.Errorf("attribution = %+v", m.Config.Attribution)
	}
}

func TestLoadNoManifest(t *testing.T) {
	_, ok, err := Load(t.TempDir())
	if err != nil || ok {
		t.Fatalf("Load = %v, %v; want not found", ok, err)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"missing schema", "[output]\npath = \"x\"\n", "missing [schema]"},
		{"empty paths", "[schema]\npaths = []\n", "missing [schema].paths"},
		{"negative jobs", "[schema]\npaths = [\"a\"]\n[attribution]\njobs = -1\n", "[attribution].jobs"},
		{"unknown key", "[schema]\npaths = [\"a\"]\ncolour = true\n", "unknown key schema.colour"},
		{"bad toml", "[schema\n", "failed to parse TOML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeManifest(t, t.TempDir(), tt.content)
			_, err := LoadConfig(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want %q", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), path) {
				t.Errorf("error must name the file: %v", err)
			}
		})
	}
}

func TestInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "new-project")
	path, err := Init(dir)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := LoadConfig(path); err != nil {
		t.Fatalf("starter manifest does not load: %v", err)
	}
	if _, err := Init(dir); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("second Init err = %v", err)
	}
}
