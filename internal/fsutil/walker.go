// Package fsutil discovers the set of Markdown documents a batch mdp
// invocation should process, walking directories in parallel and matching
// include/exclude glob patterns.
package fsutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// Scope bounds one Walk call.
type Scope struct {
	Path           string
	Include        []string // defaults to ["**/*.md"] when empty
	Exclude        []string
	FollowSymlinks bool
	MaxDepth       int
	MaxFiles       int
}

// Result is one discovered file.
type Result struct {
	Path  string
	Error error
}

// Walker performs parallel directory traversal with glob filtering.
type Walker struct {
	workers    int
	bufferSize int
}

// New creates a Walker sized for I/O-bound directory scanning.
func New() *Walker {
	return &Walker{workers: runtime.NumCPU() * 2, bufferSize: 1000}
}

// Walk streams every matching file under scope.Path.
func (w *Walker) Walk(ctx context.Context, scope Scope) (<-chan Result, error) {
	if err := w.validateScope(scope); err != nil {
		return nil, err
	}
	if len(scope.Include) == 0 {
		scope.Include = []string{"**/*.md"}
	}

	results := make(chan Result, w.bufferSize)
	paths := make(chan string, w.bufferSize)

	var wg sync.WaitGroup
	for i := 0; i < w.workers; i++ {
		wg.Add(1)
		go w.worker(ctx, paths, results, &wg)
	}

	go func() {
		defer close(paths)
		processed := 0
		var visited map[string]struct{}
		if scope.FollowSymlinks {
			visited = make(map[string]struct{})
		}
		w.scanDirectory(ctx, scope.Path, scope, paths, 0, &processed, visited)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return results, nil
}

func (w *Walker) worker(ctx context.Context, paths <-chan string, results chan<- Result, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-paths:
			if !ok {
				return
			}
			_, err := os.Stat(path)
			select {
			case <-ctx.Done():
				return
			case results <- Result{Path: path, Error: err}:
			}
		}
	}
}

func (w *Walker) scanDirectory(ctx context.Context, dirPath string, scope Scope, paths chan<- string, depth int, processed *int, visited map[string]struct{}) {
	if scope.MaxFiles > 0 && *processed >= scope.MaxFiles {
		return
	}
	select {
	case <-ctx.Done():
		return
	default:
	}
	if scope.MaxDepth > 0 && depth > scope.MaxDepth {
		return
	}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return
	}

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return
		default:
		}

		fullPath := filepath.Join(dirPath, entry.Name())
		if w.isExcluded(fullPath, scope.Exclude) {
			continue
		}

		if entry.IsDir() {
			realPath := fullPath
			if visited != nil {
				if resolved, err := filepath.EvalSymlinks(fullPath); err == nil {
					realPath = resolved
				}
				if _, seen := visited[realPath]; seen {
					continue
				}
				visited[realPath] = struct{}{}
			}
			w.scanDirectory(ctx, fullPath, scope, paths, depth+1, processed, visited)
			continue
		}

		if w.isIncluded(fullPath, scope.Include) {
			if scope.MaxFiles > 0 && *processed >= scope.MaxFiles {
				return
			}
			select {
			case <-ctx.Done():
				return
			case paths <- fullPath:
				*processed++
			}
		}
	}
}

func (w *Walker) isIncluded(path string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if w.matchPattern(path, p) {
			return true
		}
	}
	return false
}

func (w *Walker) isExcluded(path string, patterns []string) bool {
	for _, p := range patterns {
		if w.matchPattern(path, p) {
			return true
		}
	}
	return false
}

func (w *Walker) matchPattern(path, pattern string) bool {
	if matched, err := doublestar.PathMatch(pattern, path); err == nil && matched {
		return true
	}
	if !strings.Contains(pattern, "/") {
		if matched, err := doublestar.PathMatch(pattern, filepath.Base(path)); err == nil && matched {
			return true
		}
	}
	return false
}

func (w *Walker) validateScope(scope Scope) error {
	if scope.Path == "" {
		return fmt.Errorf("path is required")
	}
	info, err := os.Stat(scope.Path)
	if err != nil {
		return fmt.Errorf("cannot access path %s: %w", scope.Path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path %s is not a directory", scope.Path)
	}
	return nil
}

// Scan collects every matching path under scope.Path into a slice.
func (w *Walker) Scan(ctx context.Context, scope Scope) ([]string, error) {
	results, err := w.Walk(ctx, scope)
	if err != nil {
		return nil, err
	}
	var files []string
	for r := range results {
		if r.Error != nil {
			continue
		}
		files = append(files, r.Path)
	}
	return files, nil
}

// ExpandGlobs expands a mix of literal paths and glob patterns passed
// directly on the command line (as opposed to a directory Walk).
func ExpandGlobs(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid glob %q: %w", arg, err)
		}
		if len(matches) == 0 {
			out = append(out, arg)
			continue
		}
		out = append(out, matches...)
	}
	return out, nil
}
