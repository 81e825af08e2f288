// Package driver fans a set of artifacts out over the per-artifact control
// loop and gathers the results into one run report.
package driver

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"maestro/internal/artifact"
	"maestro/internal/errors"
)

// Directories never worth descending into.
var skippedDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
}

// Select walks root and returns the artifacts whose slash-separated
// relative paths match any include pattern and no exclude pattern.
// Patterns use glob syntax with '/' as the separator, so "**/*.go"
// matches at any depth. Results come back in path order.
func Select(root string, include, exclude []string) ([]artifact.Artifact, error) {
	includes, err := compileAll(include, "run.include")
	if err != nil {
		return nil, err
	}
	excludes, err := compileAll(exclude, "run.exclude")
	if err != nil {
		return nil, err
	}

	var selected []artifact.Artifact
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skippedDirs[d.Name()] || (d.Name() != "." && strings.HasPrefix(d.Name(), ".") && path != root) {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if !matchAny(includes, rel) || matchAny(excludes, rel) {
			return nil
		}

		a, err := artifact.Load(root, path)
		if err != nil {
			return err
		}
		selected = append(selected, a)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "selecting artifacts")
	}

	sort.Slice(selected, func(i, j int) bool {
		return selected[i].Name < selected[j].Name
	})
	return selected, nil
}

func compileAll(patterns []string, field string) ([]glob.Glob, error) {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, errors.NewValidationError("invalid glob pattern").
				WithField(field).WithValue(p).WithCause(err)
		}
		compiled = append(compiled, g)
	}
	return compiled, nil
}

func matchAny(globs []glob.Glob, path string) bool {
	for _, g := range globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}
