// Package records defines the row representation shared by the parser and the
// transformer chain. A Record is a loosely-typed map keyed by canonical column
// name; values start as strings (or nil for empty cells) and are narrowed by
// the coerce transformer before schema validation.
package records

// Record is one parsed row.
type Record map[string]any

// String returns the value for key as a string, or "" when the value is
// missing, nil, or not a string.
func (r Record) String(key string) string {
	if v, ok := r[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
