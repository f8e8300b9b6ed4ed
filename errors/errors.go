// Package errors defines the error taxonomy for the strata engine.
//
// Package-level sentinel errors are matched with errors.Is; structured
// error types (see types.go) carry the machine-readable payload (cycle
// chains, offending paths, sanitization reports) and are matched with
// errors.As. Everything is built on cockroachdb/errors so wrapped errors
// keep their chain across package boundaries.
package errors

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrMissingRequiredFile indicates a Settings-mode file was absent.
	// The engine writes a freshly-defaulted file before returning this,
	// so the user can review the defaults and retry.
	ErrMissingRequiredFile = errors.New("required configuration file does not exist")

	// ErrCompositionCycle indicates an $extends chain revisited a profile
	// already being resolved.
	ErrCompositionCycle = errors.New("profile inheritance cycle detected")

	// ErrPathEscape indicates a path resolved outside the configured base
	// directory. Rejected before any file access.
	ErrPathEscape = errors.New("path escapes the configuration directory")

	// ErrMissingIncludeTarget indicates an $include referenced a file that
	// does not exist.
	ErrMissingIncludeTarget = errors.New("include target does not exist")

	// ErrSchemaValidation indicates a document value violates a type or
	// enumerated-value constraint.
	ErrSchemaValidation = errors.New("schema validation failed")

	// ErrSanitizationDrift indicates added/removed properties or applied
	// migrations were detected while reconciling a document against the
	// current schema.
	ErrSanitizationDrift = errors.New("configuration drift detected")

	// ErrInvalidArgument indicates a malformed directive or an invalid
	// name/path supplied by the caller.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidDirective indicates a malformed $extends or $include value.
	ErrInvalidDirective = errors.New("malformed directive")

	// ErrNotAnObject indicates a document whose top level is not a JSON
	// object where one is required.
	ErrNotAnObject = errors.New("document is not a JSON object")

	// ErrMerge wraps failures inside the merge engine.
	ErrMerge = errors.New("merge error")

	// ErrReadOnlyStore indicates a read was attempted on an Output-mode
	// store, which is write-only.
	ErrReadOnlyStore = errors.New("store is write-only")

	// ErrLoadConfig wraps failures loading the engine's own configuration.
	ErrLoadConfig = errors.New("failed to load strata configuration")
)

// WrapFile annotates an error with the file path it concerns.
func WrapFile(err error, path string) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, "file %q", path)
}
