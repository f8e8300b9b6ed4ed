package errors

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Format renders an error for terminal display. Structured errors
// (sanitization drift, schema violations, inheritance cycles) expand into
// their full multi-line report; everything else renders as a single line.
func Format(err error) string {
	if err == nil {
		return ""
	}

	var drift *DriftError
	if errors.As(err, &drift) {
		return strings.TrimRight(drift.Report(), "\n")
	}

	var validation *ValidationError
	if errors.As(err, &validation) {
		var b strings.Builder
		b.WriteString(validation.Error())
		for _, v := range validation.Violations {
			b.WriteString("\n  - ")
			b.WriteString(v)
		}
		return b.String()
	}

	var cycle *CycleError
	if errors.As(err, &cycle) {
		return cycle.Error()
	}

	return err.Error()
}
