// Package includes maps include specs, as written between quotes or angle
// brackets, to the files they name inside a set of search directories.
package includes

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/mattn/go-zglob"
	"github.com/mitchellh/go-homedir"

	"github.com/fwessels/amalgamate/internal/errors"
)

// Map resolves an include spec to an absolute file path. Every file is
// reachable by its absolute path, its slash-separated path relative to the
// search directory, and its bare name.
type Map map[string]string

// Resolve returns the absolute path an include spec refers to.
func (m Map) Resolve(spec string) (string, bool) {
	path, ok := m[spec]
	return path, ok
}

// TopLevel returns the sorted absolute paths of all indexed files.
func (m Map) TopLevel() []string {
	var paths []string
	for key, path := range m {
		if key == path {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}

// Add indexes file, found below the search directory root. Relative keys of
// later search directories win over earlier ones; a bare name only claims a
// key nobody else has.
func (m Map) Add(root, file string) error {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return errors.WithStackTrace(err)
	}
	m[file] = file
	m[filepath.ToSlash(rel)] = file
	if base := filepath.Base(file); m[base] == "" {
		m[base] = file
	}
	return nil
}

// Build indexes every regular file below the given search directories.
// Directories that cannot be indexed are reported together.
func Build(dirs []string) (Map, error) {
	m := Map{}
	var result *multierror.Error
	for _, dir := range dirs {
		if err := m.addDir(dir); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return m, result.ErrorOrNil()
}

func (m Map) addDir(dir string) error {
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return errors.WithStackTraceAndPrefix(err, "search path %q", dir)
	}
	root, err := filepath.Abs(expanded)
	if err != nil {
		return errors.WithStackTraceAndPrefix(err, "search path %q", dir)
	}
	st, err := os.Stat(root)
	if err != nil {
		return errors.WithStackTraceAndPrefix(err, "search path %q", dir)
	}
	if !st.IsDir() {
		return errors.Errorf("search path %q is not a directory", dir)
	}

	// filepath.Glob cannot match "**" across directory levels.
	matches, err := zglob.Glob(filepath.Join(root, "**", "*"))
	if err != nil {
		return errors.WithStackTraceAndPrefix(err, "search path %q", dir)
	}
	sort.Strings(matches)
	for _, match := range matches {
		if !isFile(match) {
			continue
		}
		if err := m.Add(root, filepath.Clean(match)); err != nil {
			return err
		}
	}
	return nil
}

func isFile(p string) bool {
	st, err := os.Stat(p)
	return err == nil && st.Mode().IsRegular()
}
