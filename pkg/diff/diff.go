// Package diff computes the sparse patch between a resolved base document
// and an edited document, so edits can be re-saved as a minimal child
// profile.
//
// Diff is the approximate inverse of merge: Merge(base, Diff(base, edited))
// reproduces edited for every key that is not an array produced by a prior
// concatenation merge. Arrays are compared, never diffed element-wise; a
// changed array appears in the patch as a full replacement. This asymmetry
// with the merge engine's concatenation is intentional: a diff cannot
// reconstruct which elements of a concatenated array came from which side.
package diff

import (
	"github.com/strata-config/strata/pkg/document"
)

// ExtendsKey is the reserved top-level key naming a parent profile.
const ExtendsKey = "$extends"

// Objects computes the sparse patch that, merged onto base, reproduces
// edited. Keys absent from edited become explicit nulls (deletion markers),
// unchanged keys are omitted, and unchanged nested objects produce no entry
// at all rather than an empty object.
func Objects(base, edited map[string]any) map[string]any {
	patch := map[string]any{}

	for k := range base {
		if _, present := edited[k]; !present {
			patch[k] = nil
		}
	}

	for k, ev := range edited {
		bv, inBase := base[k]
		if !inBase {
			patch[k] = document.Clone(ev)
			continue
		}

		if bObj, ok := bv.(map[string]any); ok {
			if eObj, ok := ev.(map[string]any); ok {
				child := Objects(bObj, eObj)
				if len(child) > 0 {
					patch[k] = child
				}
				continue
			}
		}

		if !document.Equal(bv, ev) {
			patch[k] = document.Clone(ev)
		}
	}

	return patch
}

// AsChildProfile wraps a patch with a leading $extends reference so it can
// be written directly as a child profile file.
func AsChildProfile(parent string, patch map[string]any) map[string]any {
	profile := make(map[string]any, len(patch)+1)
	profile[ExtendsKey] = parent
	for k, v := range patch {
		profile[k] = v
	}
	return profile
}
