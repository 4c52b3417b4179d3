package builtin

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/martin-ngigi/University-Of-East-London-Assignments/pkg/records"
)

// DeDup collapses records sharing the same business key, keeping either the
// first or the last occurrence. Monthly price-paid extracts occasionally
// repeat a transaction when the publisher re-issues a row, so the sales stage
// dedupes on transaction ID before counting.
//
// Keys are hashed with xxh3 over the concatenated key fields; a 64-bit hash
// key is cheaper to hold than the joined strings for large extracts.
type DeDup struct {
	// Keys are the field names forming the business key.
	Keys []string

	// Policy selects the winner among duplicates: "keep-first" or
	// "keep-last" (default).
	Policy string
}

func (d DeDup) Apply(in []records.Record) []records.Record {
	if len(in) == 0 || len(d.Keys) == 0 {
		return in
	}
	policy := strings.ToLower(strings.TrimSpace(d.Policy))
	if policy == "" {
		policy = "keep-last"
	}

	keyOf := func(r records.Record) (uint64, bool) {
		var b strings.Builder
		for _, k := range d.Keys {
			v, ok := r[k]
			if !ok || v == nil {
				// Records without a complete key cannot be deduped; keep them.
				return 0, false
			}
			fmt.Fprintf(&b, "%v\x00", v)
		}
		return xxh3.HashString(b.String()), true
	}

	type slot struct {
		rec   records.Record
		index int
	}
	winners := make(map[uint64]slot, len(in))
	var unkeyed []slot

	for i, rec := range in {
		h, ok := keyOf(rec)
		if !ok {
			unkeyed = append(unkeyed, slot{rec: rec, index: i})
			continue
		}
		prev, seen := winners[h]
		if !seen {
			winners[h] = slot{rec: rec, index: i}
			continue
		}
		if policy == "keep-last" {
			winners[h] = slot{rec: rec, index: prev.index}
		}
	}

	dropped := len(in) - len(winners) - len(unkeyed)
	if dropped > 0 {
		log.Printf("dedup: dropped %d duplicate record(s) by key %v", dropped, d.Keys)
	}

	// Rebuild in original input order.
	all := make([]slot, 0, len(winners)+len(unkeyed))
	for _, s := range winners {
		all = append(all, s)
	}
	all = append(all, unkeyed...)
	sort.Slice(all, func(i, j int) bool { return all[i].index < all[j].index })

	out := make([]records.Record, 0, len(all))
	for _, s := range all {
		out = append(out, s.rec)
	}
	return out
}
