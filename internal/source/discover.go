package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
)

// ErrNoMatches is returned when a pattern set matches no files.
var ErrNoMatches = errors.New("no matching files")

// Discover expands glob patterns (with ** support) into a deduplicated file list.
// Matches of one pattern are sorted lexically; pattern order is preserved.
func Discover(patterns ...string) ([]string, error) {
	var (
		files []string
		seen  = make(map[string]struct{})
	)
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		matches, err := doublestar.FilepathGlob(filepath.Clean(pattern), doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad glob %q: %w", pattern, err)
		}
		// Сортируем для детерминированного порядка
		sort.Strings(matches)
		for _, m := range matches {
			key := normalizePath(m)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w with glob: %s", ErrNoMatches, strings.Join(patterns, ", "))
	}
	return files, nil
}

// LoadFiles reads files concurrently and returns a set in the given order.
func LoadFiles(ctx context.Context, files []string, jobs int) (*FragmentSet, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	contents := make([][]byte, len(files))
	flags := make([]FragmentFlags, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(files))))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := readFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			// индекс i уникален, мьютекс не нужен
			contents[i], flags[i] = normalizeContent(content)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := NewFragmentSet()
	for i, path := range files {
		if _, err := set.Add(path, contents[i], flags[i]); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// LoadGlob discovers files for patterns and loads them into a FragmentSet.
func LoadGlob(ctx context.Context, jobs int, patterns ...string) (*FragmentSet, error) {
	files, err := Discover(patterns...)
	if err != nil {
		return nil, err
	}
	return LoadFiles(ctx, files, jobs)
}

func readFile(path string) ([]byte, error) {
	// #nosec G304 -- path comes from glob expansion chosen by the caller
	return os.ReadFile(path)
}
