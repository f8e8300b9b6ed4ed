package store

import (
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	errUtils "github.com/strata-config/strata/errors"
)

// ReadTable reads a delimited state document as rows of fields. Tables are
// flat string data and carry no schema, so no sanitization applies; a
// missing table is created empty, matching the State-mode policy for JSON
// documents.
func (s *Store) ReadTable(name string) ([][]string, error) {
	if s.mode != ModeState {
		return nil, errors.Wrapf(errUtils.ErrInvalidArgument, "category %q does not hold tables", s.baseDir)
	}

	path, err := s.tablePath(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(path, nil, defaultFileMode); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, errUtils.WrapFile(err, path)
	}
	return rows, nil
}

// WriteTable writes rows of fields as a delimited state document.
func (s *Store) WriteTable(name string, rows [][]string) error {
	if s.mode != ModeState {
		return errors.Wrapf(errUtils.ErrInvalidArgument, "category %q does not hold tables", s.baseDir)
	}

	path, err := s.tablePath(name)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return errUtils.WrapFile(err, path)
	}
	return nil
}

// tablePath validates the table name against the base-directory trust
// boundary the same way profile paths are validated.
func (s *Store) tablePath(name string) (string, error) {
	if name == "" {
		return "", errors.Wrap(errUtils.ErrInvalidArgument, "table name is empty")
	}
	path := filepath.Join(s.baseDir, name+tableExtension)
	if !isWithin(s.baseDir, path) {
		return "", &errUtils.PathEscapeError{Path: name, BaseDir: s.baseDir}
	}
	return path, nil
}
