package errors

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// CycleError reports an $extends chain that revisited a profile. Chain
// holds the profile names in resolution order, ending with the repeated
// name.
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("profile inheritance cycle: %s", strings.Join(e.Chain, " -> "))
}

// Unwrap makes errors.Is(err, ErrCompositionCycle) work.
func (e *CycleError) Unwrap() error {
	return ErrCompositionCycle
}

// NewCycleError builds a CycleError from the resolution stack.
func NewCycleError(chain []string) error {
	c := make([]string, len(chain))
	copy(c, chain)
	return &CycleError{Chain: c}
}

// PathEscapeError reports a path that resolved outside the base directory.
type PathEscapeError struct {
	Path    string
	BaseDir string
}

func (e *PathEscapeError) Error() string {
	return fmt.Sprintf("path %q escapes base directory %q", e.Path, e.BaseDir)
}

func (e *PathEscapeError) Unwrap() error {
	return ErrPathEscape
}

// ValidationError reports one or more schema violations in a document.
type ValidationError struct {
	File       string
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema validation failed for %q: %d violation(s)", e.File, len(e.Violations))
}

func (e *ValidationError) Unwrap() error {
	return ErrSchemaValidation
}

// DriftError reports configuration drift found while sanitizing a document:
// properties inserted from schema defaults, unknown properties removed, and
// migrations applied. In Settings mode this is surfaced to force review.
type DriftError struct {
	File              string
	AddedProperties   []string
	RemovedProperties []string
	AppliedMigrations []string
}

func (e *DriftError) Error() string {
	return fmt.Sprintf("configuration drift in %q: %d added, %d removed, %d migrated",
		e.File, len(e.AddedProperties), len(e.RemovedProperties), len(e.AppliedMigrations))
}

func (e *DriftError) Unwrap() error {
	return ErrSanitizationDrift
}

// Report renders the full drift triple as a human-readable multi-line
// summary for the caller to display.
func (e *DriftError) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Configuration drift detected in %q.\n", e.File)
	fmt.Fprintf(&b, "The file was reconciled against the current schema; review the changes below.\n")
	writeSection(&b, "Added properties (schema defaults inserted)", e.AddedProperties)
	writeSection(&b, "Removed properties (unknown to the schema)", e.RemovedProperties)
	writeSection(&b, "Applied migrations", e.AppliedMigrations)
	return b.String()
}

func writeSection(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "  - %s\n", item)
	}
}

// Fatal packages an error for the intentionally-unrecoverable pathway: it
// attaches the structured details as safe error hints and marks the error
// so GetExitCode reports a hard failure.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return WithExitCode(errors.WithDetail(err, "unrecoverable"), 2)
}
