package builtin

import "github.com/martin-ngigi/University-Of-East-London-Assignments/pkg/records"

// Require removes any record missing a value for one of the listed fields.
type Require struct {
	Fields []string
}

func (r Require) Apply(in []records.Record) []records.Record {
	out := in[:0]
	for _, rec := range in {
		ok := true
		for _, f := range r.Fields {
			v, exists := rec[f]
			if !exists || v == nil || v == "" {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out
}

// Keep retains only records whose Field value is one of In. It is used for
// the record-status and property-type filters, where the admissible codes are
// a small fixed set.
type Keep struct {
	Field string
	In    []string
}

func (k Keep) Apply(in []records.Record) []records.Record {
	allowed := make(map[string]struct{}, len(k.In))
	for _, v := range k.In {
		allowed[v] = struct{}{}
	}
	out := in[:0]
	for _, rec := range in {
		s, ok := rec[k.Field].(string)
		if !ok {
			continue
		}
		if _, ok := allowed[s]; ok {
			out = append(out, rec)
		}
	}
	return out
}
