package store

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/cockroachdb/errors"

	errUtils "github.com/strata-config/strata/errors"
)

// DefaultExcludeGlobs hides private fragments (any path segment starting
// with an underscore) and schema files from profile discovery.
func DefaultExcludeGlobs() []string {
	return []string{"**/_*", "**/_*/**", "**/*schema*"}
}

// Discover lists the profile names available in a Settings-mode store,
// walking subdirectories recursively and skipping paths matched by the
// exclusion globs. Names are relative to the base directory, without the
// .json extension, in sorted order.
func (s *Store) Discover() ([]string, error) {
	if s.mode != ModeSettings {
		return nil, errors.Wrapf(errUtils.ErrInvalidArgument, "category %q does not hold discoverable profiles", s.baseDir)
	}

	var names []string
	err := filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(s.baseDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		excluded, err := s.excludedPath(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		if excluded {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() || !strings.HasSuffix(rel, profileExtension) {
			return nil
		}

		names = append(names, filepath.ToSlash(strings.TrimSuffix(rel, profileExtension)))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(names)
	return names, nil
}

func (s *Store) excludedPath(rel string) (bool, error) {
	for _, glob := range s.exclude {
		matched, err := doublestar.Match(glob, rel)
		if err != nil {
			return false, errors.Wrapf(errUtils.ErrInvalidArgument, "bad exclusion glob %q", glob)
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}

// isWithin reports whether child is inside parent after both have been
// made absolute.
func isWithin(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
