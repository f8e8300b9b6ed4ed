// Package store applies per-category behavior policy on top of the profile
// resolver and the schema sanitizer.
//
// Three document categories exist, each with a fixed policy selected when
// the store is opened:
//
//   - Settings: a missing file is fatal (a defaulted file is written for
//     review first), and any drift found on read is surfaced as a
//     structured error instead of being fixed silently.
//   - State: a missing file is created silently, and drift is fixed in
//     place without interrupting the caller.
//   - Output: write-only; documents are written without validation and no
//     read path is exposed.
package store

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"

	errUtils "github.com/strata-config/strata/errors"
	"github.com/strata-config/strata/pkg/diff"
	"github.com/strata-config/strata/pkg/document"
	log "github.com/strata-config/strata/pkg/logger"
	"github.com/strata-config/strata/pkg/profile"
	"github.com/strata-config/strata/pkg/schema"
)

// Mode is the behavior policy of a document category.
type Mode string

const (
	ModeSettings Mode = "settings"
	ModeState    Mode = "state"
	ModeOutput   Mode = "output"
)

const (
	dirMode         os.FileMode = 0o755
	defaultFileMode os.FileMode = 0o644

	profileExtension = ".json"
	tableExtension   = ".csv"

	// timestampLayout names timestamped output files and run directories.
	timestampLayout = "2006-01-02_15-04-05"
)

// Store is one opened document category. The mode never changes for the
// lifetime of the store.
type Store struct {
	mode     Mode
	baseDir  string
	desc     *schema.Descriptor
	resolver *profile.Resolver
	exclude  []string

	// now is stubbed in tests of timestamped output naming.
	now func() time.Time
}

// Option configures a store.
type Option func(*Store)

// WithExcludeGlobs overrides the discovery exclusion globs.
func WithExcludeGlobs(globs ...string) Option {
	return func(s *Store) {
		s.exclude = globs
	}
}

// NewSettings opens a Settings-mode store rooted at baseDir, creating the
// directory on first use.
func NewSettings(baseDir string, desc *schema.Descriptor, opts ...Option) (*Store, error) {
	return newStore(ModeSettings, baseDir, desc, opts...)
}

// NewState opens a State-mode store rooted at baseDir.
func NewState(baseDir string, desc *schema.Descriptor, opts ...Option) (*Store, error) {
	return newStore(ModeState, baseDir, desc, opts...)
}

// NewOutput opens an Output-mode store rooted at baseDir. Output stores
// have no schema: documents are written as given.
func NewOutput(baseDir string, opts ...Option) (*Store, error) {
	return newStore(ModeOutput, baseDir, nil, opts...)
}

func newStore(mode Mode, baseDir string, desc *schema.Descriptor, opts ...Option) (*Store, error) {
	resolver, err := profile.NewResolver(baseDir, desc)
	if err != nil {
		return nil, err
	}

	s := &Store{
		mode:     mode,
		baseDir:  resolver.BaseDir(),
		desc:     desc,
		resolver: resolver,
		exclude:  DefaultExcludeGlobs(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(s.baseDir, dirMode); err != nil {
		return nil, err
	}
	return s, nil
}

// Mode returns the store's behavior policy.
func (s *Store) Mode() Mode {
	return s.mode
}

// BaseDir returns the category root directory.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// Read resolves, sanitizes and validates the named document according to
// the store's policy. See the package comment for the per-mode behavior.
func (s *Store) Read(name string) (map[string]any, error) {
	switch s.mode {
	case ModeSettings:
		return s.readSettings(name)
	case ModeState:
		return s.readState(name)
	default:
		return nil, errors.Wrapf(errUtils.ErrReadOnlyStore, "category %q", s.baseDir)
	}
}

func (s *Store) readSettings(name string) (map[string]any, error) {
	path, err := s.resolver.ProfilePath(name)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		// Write the defaults so the user has something concrete to
		// review, then fail: proceeding on defaults the user has never
		// seen is how configuration silently rots.
		if s.desc != nil {
			if writeErr := document.WriteFile(path, s.desc.DefaultDocument()); writeErr != nil {
				return nil, writeErr
			}
		}
		return nil, errUtils.WrapFile(errUtils.ErrMissingRequiredFile, path)
	}

	resolved, err := s.resolver.Resolve(name)
	if err != nil {
		return nil, err
	}
	if s.desc == nil {
		return resolved, nil
	}

	sanitized, report := s.desc.Sanitize(resolved)
	if !report.Empty() {
		return nil, &errUtils.DriftError{
			File:              path,
			AddedProperties:   report.AddedProperties,
			RemovedProperties: report.RemovedProperties,
			AppliedMigrations: report.AppliedMigrations,
		}
	}

	if err := s.desc.Validate(sanitized, path); err != nil {
		return nil, err
	}
	return sanitized, nil
}

func (s *Store) readState(name string) (map[string]any, error) {
	path, err := s.resolver.ProfilePath(name)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		defaults := map[string]any{}
		if s.desc != nil {
			defaults = s.desc.DefaultDocument()
		}
		log.Debug("creating default state file", "path", path)
		if err := document.WriteFile(path, defaults); err != nil {
			return nil, err
		}
		return defaults, nil
	}

	resolved, err := s.resolver.Resolve(name)
	if err != nil {
		return nil, err
	}
	if s.desc == nil {
		return resolved, nil
	}

	sanitized, report := s.desc.Sanitize(resolved)
	if !report.Empty() {
		// State drift is fixed in place without interrupting the caller.
		log.Debug("sanitized state file",
			"path", path,
			"added", len(report.AddedProperties),
			"removed", len(report.RemovedProperties),
			"migrated", len(report.AppliedMigrations))
		if err := document.WriteFile(path, sanitized); err != nil {
			return nil, err
		}
	}
	return sanitized, nil
}

// Write persists a document under the given name. Settings-mode documents
// are written through SaveEdited instead, so plain Write is reserved for
// State and Output categories.
func (s *Store) Write(name string, doc map[string]any) error {
	if s.mode == ModeSettings {
		return errors.Wrap(errUtils.ErrInvalidArgument, "settings documents are saved as child profiles; use SaveEdited")
	}
	path, err := s.resolver.ProfilePath(name)
	if err != nil {
		return err
	}
	return document.WriteFile(path, doc)
}

// SaveEdited saves an edited document as a minimal child profile of
// parent: only the sparse diff against the resolved parent is persisted,
// wrapped with a $extends reference.
func (s *Store) SaveEdited(name, parent string, edited map[string]any) error {
	if s.mode != ModeSettings {
		return errors.Wrapf(errUtils.ErrInvalidArgument, "category %q does not hold profiles", s.baseDir)
	}

	base, err := s.resolver.Resolve(parent)
	if err != nil {
		return err
	}

	patch := diff.Objects(base, edited)
	path, err := s.resolver.ProfilePath(name)
	if err != nil {
		return err
	}
	return document.WriteFile(path, diff.AsChildProfile(parent, patch))
}

// WriteTimestamped writes an output document under a timestamped name,
// <name>_<YYYY-MM-DD_HH-mm-ss>.json, and returns the profile name used.
func (s *Store) WriteTimestamped(name string, doc map[string]any) (string, error) {
	if s.mode != ModeOutput {
		return "", errors.Wrap(errUtils.ErrInvalidArgument, "timestamped writes are an output-category operation")
	}
	stamped := name + "_" + s.now().Format(timestampLayout)
	return stamped, s.Write(stamped, doc)
}

// Run creates a timestamped run subdirectory and returns an output store
// rooted in it.
func (s *Store) Run() (*Store, error) {
	if s.mode != ModeOutput {
		return nil, errors.Wrap(errUtils.ErrInvalidArgument, "run directories are an output-category operation")
	}
	sub, err := s.Subdirectory(s.now().Format(timestampLayout))
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Subdirectory opens a store of the same mode rooted in a subdirectory,
// validating the name against the base-directory trust boundary.
func (s *Store) Subdirectory(name string) (*Store, error) {
	if name == "" {
		return nil, errors.Wrap(errUtils.ErrInvalidArgument, "subdirectory name is empty")
	}
	target := filepath.Join(s.baseDir, name)
	// Boundary check runs before the subdirectory is created.
	if !isWithin(s.baseDir, target) {
		return nil, &errUtils.PathEscapeError{Path: name, BaseDir: s.baseDir}
	}
	return newStore(s.mode, target, s.desc, WithExcludeGlobs(s.exclude...))
}
