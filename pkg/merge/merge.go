// Package merge deep-merges configuration documents.
//
// The merge contract is the heart of profile inheritance:
//
//   - an explicit null in the child deletes the key from the result
//   - objects present on both sides are merged recursively
//   - arrays present on both sides are concatenated, base elements first
//   - anything else the child wins (scalars, type mismatches)
//
// The merge is not commutative and chains are order-sensitive: inputs are
// always applied in base-to-child order and must never be reordered.
// Inputs are never mutated; the result is a freshly built tree.
package merge

import (
	"fmt"

	errUtils "github.com/strata-config/strata/errors"
	"github.com/strata-config/strata/pkg/document"
)

// List merge strategies. Profile composition always uses append, which is
// the contract child profiles are written against; replace is available to
// library callers that layer unrelated documents.
const (
	ListMergeStrategyAppend  = "append"
	ListMergeStrategyReplace = "replace"
)

// Merge combines the inputs in order, first input is the base, last input
// wins. Arrays are concatenated.
func Merge(inputs []map[string]any) (map[string]any, error) {
	return MergeWithStrategy(inputs, ListMergeStrategyAppend)
}

// MergeWithStrategy combines the inputs in order using the given list
// merge strategy.
func MergeWithStrategy(inputs []map[string]any, strategy string) (map[string]any, error) {
	if strategy != ListMergeStrategyAppend && strategy != ListMergeStrategyReplace {
		return nil, fmt.Errorf("%w: unknown list merge strategy %q", errUtils.ErrMerge, strategy)
	}

	result := map[string]any{}
	for _, input := range inputs {
		if input == nil {
			continue
		}
		result = mergePair(result, input, strategy)
	}
	return result, nil
}

// Objects merges a single child onto a base with the append strategy. This
// is the two-document form the diff engine is the inverse of.
func Objects(base, child map[string]any) map[string]any {
	return mergePair(base, child, ListMergeStrategyAppend)
}

func mergePair(base, child map[string]any, strategy string) map[string]any {
	result := make(map[string]any, len(base)+len(child))

	for k, bv := range base {
		if _, overridden := child[k]; overridden {
			continue
		}
		result[k] = document.Clone(bv)
	}

	for k, cv := range child {
		// Explicit null is a deletion marker: the key is omitted from the
		// result regardless of what the base held.
		if cv == nil {
			continue
		}

		bv, inBase := base[k]
		if !inBase {
			result[k] = document.Clone(cv)
			continue
		}

		if bObj, ok := bv.(map[string]any); ok {
			if cObj, ok := cv.(map[string]any); ok {
				result[k] = mergePair(bObj, cObj, strategy)
				continue
			}
		}

		if bArr, ok := bv.([]any); ok {
			if cArr, ok := cv.([]any); ok && strategy == ListMergeStrategyAppend {
				merged := make([]any, 0, len(bArr)+len(cArr))
				for _, item := range bArr {
					merged = append(merged, document.Clone(item))
				}
				for _, item := range cArr {
					merged = append(merged, document.Clone(item))
				}
				result[k] = merged
				continue
			}
		}

		// Scalars and type mismatches: child replaces base entirely.
		result[k] = document.Clone(cv)
	}

	return result
}
