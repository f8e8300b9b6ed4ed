package schema

import (
	"github.com/strata-config/strata/pkg/document"
)

// Report lists the drift found while reconciling a persisted document
// against the current descriptor.
type Report struct {
	AddedProperties   []string
	RemovedProperties []string
	AppliedMigrations []string
}

// Empty reports whether the sanitization changed nothing.
func (r *Report) Empty() bool {
	return len(r.AddedProperties) == 0 && len(r.RemovedProperties) == 0 && len(r.AppliedMigrations) == 0
}

// Sanitize reconciles a persisted document against the descriptor: missing
// properties are inserted with their schema defaults, properties unknown to
// the schema are removed, and matching migrations are applied first so a
// renamed property migrates instead of being dropped and re-defaulted.
//
// The input document is never mutated; the reconciled copy and the drift
// report are returned. Policy on a non-empty report belongs to the caller.
func (d *Descriptor) Sanitize(doc map[string]any) (map[string]any, *Report) {
	report := &Report{}
	working := document.CloneObject(doc)

	for _, m := range d.migrations {
		if m.Matches(working) {
			m.Apply(working)
			report.AppliedMigrations = append(report.AppliedMigrations, m.ID)
		}
	}

	sanitized := reconcile(working, d.properties, "", report)
	return sanitized, report
}

// reconcile walks one object level against its known properties, recursing
// into object-kind properties. Arrays are left untouched: their element
// shape is enforced by validation, not sanitization.
func reconcile(obj map[string]any, properties []*Property, prefix string, report *Report) map[string]any {
	known := make(map[string]*Property, len(properties))
	for _, p := range properties {
		known[p.Name] = p
	}

	result := make(map[string]any, len(properties))

	for _, key := range document.SortedKeys(obj) {
		p, ok := known[key]
		if !ok {
			report.RemovedProperties = append(report.RemovedProperties, joinPath(prefix, key))
			continue
		}
		value := obj[key]
		if p.Kind == KindObject && len(p.Properties) > 0 {
			if child, isObj := value.(map[string]any); isObj {
				result[key] = reconcile(child, p.Properties, joinPath(prefix, key), report)
				continue
			}
		}
		result[key] = document.Clone(value)
	}

	for _, p := range properties {
		if _, present := result[p.Name]; present {
			continue
		}
		result[p.Name] = p.defaultValue()
		report.AddedProperties = append(report.AddedProperties, joinPath(prefix, p.Name))
	}

	return result
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
