// Package builtin contains the reusable transformers used by the pipeline
// stages.
package builtin

import (
	"strings"

	"github.com/martin-ngigi/University-Of-East-London-Assignments/pkg/records"
)

// Normalize trims surrounding whitespace from every string value. Run it
// before Coerce and DeDup so that keys and numbers are compared consistently.
type Normalize struct{}

func (Normalize) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		for k, v := range r {
			if s, ok := v.(string); ok {
				r[k] = strings.TrimSpace(s)
			}
		}
	}
	return in
}
