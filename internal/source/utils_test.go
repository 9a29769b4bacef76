package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRelativePathOutsideBaseFallsBackToAbsolute(t *testing.T) {
	tmp := t.TempDir()

	baseDir := filepath.Join(tmp, "base")
	otherDir := filepath.Join(tmp, "other")
	for _, dir := range []string{baseDir, otherDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}

	target := filepath.Join(otherDir, "schema.graphql")
	got, err := RelativePath(target, baseDir)
	if err != nil {
		t.Fatalf("RelativePath returned error: %v", err)
	}
	if want := normalizePath(target); got != want {
		t.Fatalf("expected absolute fallback %q, got %q", want, got)
	}
}

func TestRelativePathInsideBaseStaysRelative(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "schema", "types.graphql")

	got, err := RelativePath(target, tmp)
	if err != nil {
		t.Fatalf("RelativePath returned error: %v", err)
	}
	if got != "schema/types.graphql" {
		t.Fatalf("expected relative path, got %q", got)
	}
}

func TestNormalizeCRLF(t *testing.T) {
	got, changed := normalizeCRLF([]byte("a\r\nb\rc\r\n"))
	if !changed {
		t.Error("Expected CRLF normalization to be detected")
	}
	// одиночный \r остаётся
	if string(got) != "a\nb\rc\n" {
		t.Errorf("normalizeCRLF = %q", got)
	}

	same, changed := normalizeCRLF([]byte("plain\n"))
	if changed || string(same) != "plain\n" {
		t.Errorf("unexpected change for LF-only input: %q", same)
	}
}

func TestRemoveBOM(t *testing.T) {
	out, had := removeBOM([]byte{0xEF, 0xBB, 0xBF, 'x'})
	if !had || string(out) != "x" {
		t.Errorf("removeBOM = %q, %v", out, had)
	}
	out, had = removeBOM([]byte{0xEF})
	if had || len(out) != 1 {
		t.Errorf("short input must be left alone, got %q, %v", out, had)
	}
}

func TestFileURL(t *testing.T) {
	got := FileURL("/tmp/my schema/a.graphql")
	if got != "file:///tmp/my%20schema/a.graphql" {
		t.Errorf("FileURL = %q", got)
	}
}
