package builtin

import (
	"strconv"
	"time"

	"github.com/martin-ngigi/University-Of-East-London-Assignments/pkg/records"
)

// Coerce converts string field values to typed values in place. Values that
// fail to parse are left as strings; schema validation at table construction
// reports them with the field name attached, which gives a clearer error than
// failing here mid-batch.
type Coerce struct {
	// Types maps field name to one of: "int", "float", "bool", "date".
	Types map[string]string

	// DateLayouts lists the accepted date formats in priority order. Source
	// files mix layouts (the price-paid file uses "2006-01-02 15:04" while
	// chained stage outputs use plain dates), so the first matching layout
	// wins.
	DateLayouts []string
}

func (c Coerce) Apply(in []records.Record) []records.Record {
	if len(c.Types) == 0 {
		return in
	}
	for _, r := range in {
		for field, typ := range c.Types {
			v, ok := r[field]
			if !ok || v == nil {
				continue
			}
			s, isStr := v.(string)
			if !isStr {
				continue
			}
			switch typ {
			case "int":
				if i, err := strconv.ParseInt(s, 10, 64); err == nil {
					r[field] = i
				}
			case "float":
				if f, err := strconv.ParseFloat(s, 64); err == nil {
					r[field] = f
				}
			case "bool":
				if b, err := strconv.ParseBool(s); err == nil {
					r[field] = b
				}
			case "date":
				for _, layout := range c.DateLayouts {
					if t, err := time.Parse(layout, s); err == nil {
						r[field] = t
						break
					}
				}
			}
		}
	}
	return in
}
