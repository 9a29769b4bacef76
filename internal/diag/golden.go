package diag

import (
	"path/filepath"
	"strings"
)

// FormatGolden renders diagnostics one per line as
// "<severity> <stage> <location> <message>" for golden comparisons.
// Order is kept; an unknown location prints as "-". Paths under baseDir
// are made relative and slash-separated.
func FormatGolden(items []Diagnostic, baseDir string) string {
	var b strings.Builder
	for i, d := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		loc := d.Location
		loc.File = goldenPath(loc.File, baseDir)
		where := loc.String()
		if where == "" {
			where = "-"
		}
		b.WriteString(d.Severity.Label())
		b.WriteByte(' ')
		b.WriteString(d.Stage.String())
		b.WriteByte(' ')
		b.WriteString(where)
		b.WriteByte(' ')
		b.WriteString(SanitizeMessage(d.Message))
	}
	return b.String()
}

func goldenPath(path, baseDir string) string {
	if path == "" {
		return ""
	}
	if baseDir != "" && filepath.IsAbs(path) {
		if rel, err := filepath.Rel(baseDir, path); err == nil && !strings.HasPrefix(rel, "..") {
			path = rel
		}
	}
	p := filepath.ToSlash(path)
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return p
}
