// Package profile resolves configuration profiles into flattened documents.
//
// A profile is a JSON file that may name a parent via a top-level
// "$extends" key and may reference fragment files via {"$include": path}
// items inside include-capable array properties. Resolution follows the
// extends chain depth-first, merges it in base-to-child order, then splices
// includes over the fully composed arrays. Fragments are flat content: they
// cannot extend or include further.
//
// Every Resolve call re-reads from disk so edits are always reflected;
// callers needing a cache must layer one above this package.
package profile

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	errUtils "github.com/strata-config/strata/errors"
	"github.com/strata-config/strata/pkg/document"
	log "github.com/strata-config/strata/pkg/logger"
	"github.com/strata-config/strata/pkg/merge"
	"github.com/strata-config/strata/pkg/schema"
)

// Reserved directive keys.
const (
	ExtendsKey = "$extends"
	IncludeKey = "$include"
)

const profileExtension = ".json"

// Resolver loads and flattens profiles from a single base directory. The
// base directory is the trust boundary: every file the resolver touches
// must resolve inside it.
type Resolver struct {
	baseDir string
	desc    *schema.Descriptor
}

// NewResolver creates a resolver rooted at baseDir. The descriptor flags
// which array properties are include-capable; with a nil descriptor every
// array property accepts include directives.
func NewResolver(baseDir string, desc *schema.Descriptor) (*Resolver, error) {
	if baseDir == "" {
		return nil, errors.Wrap(errUtils.ErrInvalidArgument, "base directory is empty")
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, err
	}
	return &Resolver{baseDir: abs, desc: desc}, nil
}

// BaseDir returns the absolute base directory.
func (r *Resolver) BaseDir() string {
	return r.baseDir
}

// Resolve flattens the named profile: the $extends chain is merged
// base-to-child, then $include directives are spliced into the composed
// arrays. The returned document contains no directives.
func (r *Resolver) Resolve(name string) (map[string]any, error) {
	body, err := r.resolveChain(name, nil)
	if err != nil {
		return nil, err
	}
	return r.expandIncludes(body)
}

// ProfilePath returns the on-disk path for a profile name after verifying
// it stays inside the base directory.
func (r *Resolver) ProfilePath(name string) (string, error) {
	if name == "" {
		return "", errors.Wrap(errUtils.ErrInvalidArgument, "profile name is empty")
	}
	return r.securePath(name + profileExtension)
}

// resolveChain merges the $extends chain for a profile, depth-first. The
// stack holds the names currently being resolved; a name reappearing on it
// is a composition cycle.
func (r *Resolver) resolveChain(name string, stack []string) (map[string]any, error) {
	if slices.Contains(stack, name) {
		return nil, errUtils.NewCycleError(append(stack, name))
	}

	path, err := r.ProfilePath(name)
	if err != nil {
		return nil, err
	}

	raw, err := document.ReadObjectFile(path)
	if err != nil {
		return nil, err
	}

	parentName, body, err := splitExtends(raw, path)
	if err != nil {
		return nil, err
	}
	if parentName == "" {
		return body, nil
	}

	log.Debug("resolving parent profile", "profile", name, "extends", parentName)

	parent, err := r.resolveChain(parentName, append(stack, name))
	if err != nil {
		return nil, err
	}
	return merge.Objects(parent, body), nil
}

// splitExtends extracts the $extends reference and returns the profile body
// without it.
func splitExtends(raw map[string]any, path string) (string, map[string]any, error) {
	v, present := raw[ExtendsKey]
	if !present {
		return "", raw, nil
	}

	parentName, ok := v.(string)
	if !ok || parentName == "" {
		return "", nil, errUtils.WrapFile(
			errors.Wrap(errUtils.ErrInvalidDirective, "$extends must be a non-empty profile name"), path)
	}

	body := make(map[string]any, len(raw)-1)
	for k, val := range raw {
		if k != ExtendsKey {
			body[k] = val
		}
	}
	return parentName, body, nil
}

// expandIncludes walks the composed document and splices fragments into
// include-capable array properties.
func (r *Resolver) expandIncludes(obj map[string]any) (map[string]any, error) {
	var props []*schema.Property
	if r.desc != nil {
		props = r.desc.Properties()
	}
	return r.expandObject(obj, props)
}

func (r *Resolver) expandObject(obj map[string]any, props []*schema.Property) (map[string]any, error) {
	byName := make(map[string]*schema.Property, len(props))
	for _, p := range props {
		byName[p.Name] = p
	}

	result := make(map[string]any, len(obj))
	for k, v := range obj {
		p := byName[k]

		switch t := v.(type) {
		case []any:
			if r.includeCapable(p) {
				expanded, err := r.spliceArray(t)
				if err != nil {
					return nil, err
				}
				result[k] = expanded
				continue
			}
			result[k] = document.Clone(v)
		case map[string]any:
			var childProps []*schema.Property
			if p != nil {
				childProps = p.Properties
			}
			expanded, err := r.expandObject(t, childProps)
			if err != nil {
				return nil, err
			}
			result[k] = expanded
		default:
			result[k] = v
		}
	}
	return result, nil
}

// includeCapable reports whether an array property accepts directives.
// Without a descriptor every array property does.
func (r *Resolver) includeCapable(p *schema.Property) bool {
	if r.desc == nil {
		return true
	}
	return p != nil && p.IncludeCapable
}

// spliceArray replaces every include directive in the array with the
// referenced fragment's contents, in place and in order.
func (r *Resolver) spliceArray(arr []any) ([]any, error) {
	result := make([]any, 0, len(arr))
	for _, item := range arr {
		ref, isDirective, err := includeReference(item)
		if err != nil {
			return nil, err
		}
		if !isDirective {
			result = append(result, document.Clone(item))
			continue
		}

		fragment, err := r.loadFragment(ref)
		if err != nil {
			return nil, err
		}
		result = append(result, fragment...)
	}
	return result, nil
}

// includeReference detects an {"$include": "<path>"} directive. An object
// carrying $include alongside other keys, or with a non-string path, is
// malformed rather than silently treated as data.
func includeReference(item any) (string, bool, error) {
	obj, ok := item.(map[string]any)
	if !ok {
		return "", false, nil
	}
	v, present := obj[IncludeKey]
	if !present {
		return "", false, nil
	}
	ref, ok := v.(string)
	if !ok || ref == "" || len(obj) != 1 {
		return "", false, errors.Wrap(errUtils.ErrInvalidDirective, "$include must be an object with a single non-empty string path")
	}
	return ref, true, nil
}

// loadFragment reads an included file and returns the elements to splice:
// all elements of a top-level array, or the file's single document.
func (r *Resolver) loadFragment(ref string) ([]any, error) {
	path, err := r.securePath(ref + profileExtension)
	if err != nil {
		return nil, err
	}

	v, err := document.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errUtils.WrapFile(errUtils.ErrMissingIncludeTarget, path)
		}
		return nil, err
	}

	if items, ok := v.([]any); ok {
		return items, nil
	}
	return []any{v}, nil
}

// securePath joins a relative reference onto the base directory and
// verifies the result does not escape it. Runs before any file access.
func (r *Resolver) securePath(rel string) (string, error) {
	abs, err := filepath.Abs(filepath.Join(r.baseDir, rel))
	if err != nil {
		return "", err
	}
	relative, err := filepath.Rel(r.baseDir, abs)
	if err != nil || relative == ".." || strings.HasPrefix(relative, ".."+string(filepath.Separator)) {
		return "", &errUtils.PathEscapeError{Path: rel, BaseDir: r.baseDir}
	}
	return abs, nil
}
