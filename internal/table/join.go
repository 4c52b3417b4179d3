package table

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// Mode selects join behavior for unmatched rows.
type Mode int

const (
	// Left keeps every left row; right-side columns are filled where no
	// match exists.
	Left Mode = iota
	// Outer keeps every row from both sides.
	Outer
)

// Fill names the policy for cells that have no counterpart after a join.
// It is an explicit parameter rather than an ambient default so that both
// behaviors stay testable.
type Fill int

const (
	// FillNull leaves unmatched cells as nil.
	FillNull Fill = iota
	// FillZero fills unmatched cells with the zero of the column kind
	// (0, 0.0, "", false). Used where an absent counterpart means a real
	// zero, e.g. a region with no recorded sales.
	FillZero
)

// JoinOptions configures an equi-join.
type JoinOptions struct {
	// LeftKeys and RightKeys pair up positionally. RightKeys defaults to
	// LeftKeys when empty.
	LeftKeys  []string
	RightKeys []string

	// Take lists the right-side columns to carry into the result; defaults
	// to every non-key right column.
	Take []string

	Mode Mode
	Fill Fill

	// NormalizeKeys compares keys after trimming whitespace and
	// uppercasing, tolerating inconsistent formatting between sources
	// (district names arrive in mixed case).
	NormalizeKeys bool

	// DropUnmatched omits unmatched left rows from the result. They are
	// still returned in the unmatched list so the caller can report them;
	// they are never silently merged with wrong data. Only meaningful in
	// Left mode.
	DropUnmatched bool
}

// Unmatched describes a left-side row that found no right-side counterpart.
type Unmatched struct {
	// Key is the display form of the join key.
	Key string
	// Row holds the left row's cells by column name, so diagnostics can
	// show associated counts.
	Row map[string]any
}

// Join equi-joins two tables on the configured key columns. The result's
// columns are the left columns followed by the taken right columns; right key
// columns are never duplicated. Duplicate keys on the right side are a lookup
// defect: the first occurrence wins and a warning is logged.
func Join(left, right *Table, opt JoinOptions) (*Table, []Unmatched, error) {
	if len(opt.LeftKeys) == 0 {
		return nil, nil, fmt.Errorf("table: join: no key columns")
	}
	rightKeys := opt.RightKeys
	if len(rightKeys) == 0 {
		rightKeys = opt.LeftKeys
	}
	if len(rightKeys) != len(opt.LeftKeys) {
		return nil, nil, fmt.Errorf("table: join: %d left keys vs %d right keys", len(opt.LeftKeys), len(rightKeys))
	}

	lKeyCols := make([][]any, len(opt.LeftKeys))
	for i, k := range opt.LeftKeys {
		col, err := left.mustCol(k)
		if err != nil {
			return nil, nil, err
		}
		lKeyCols[i] = col
	}
	rKeyCols := make([][]any, len(rightKeys))
	rightKeySet := make(map[string]struct{}, len(rightKeys))
	for i, k := range rightKeys {
		col, err := right.mustCol(k)
		if err != nil {
			return nil, nil, err
		}
		rKeyCols[i] = col
		rightKeySet[k] = struct{}{}
	}

	take := opt.Take
	if len(take) == 0 {
		for _, f := range right.fields {
			if _, isKey := rightKeySet[f.Name]; !isKey {
				take = append(take, f.Name)
			}
		}
	}
	takeCols := make([][]any, len(take))
	takeFields := make([]Field, len(take))
	for i, name := range take {
		col, err := right.mustCol(name)
		if err != nil {
			return nil, nil, err
		}
		j := right.index[name]
		takeCols[i] = col
		takeFields[i] = right.fields[j]
	}

	keyOf := func(cols [][]any, r int) string {
		var b strings.Builder
		for _, col := range cols {
			s := keyString(col[r])
			if opt.NormalizeKeys {
				s = strings.ToUpper(strings.TrimSpace(s))
			}
			b.WriteString(s)
			b.WriteByte('\x00')
		}
		return b.String()
	}

	// Index the right side.
	rIndex := make(map[string]int, right.nrows)
	for r := 0; r < right.nrows; r++ {
		k := keyOf(rKeyCols, r)
		if _, dup := rIndex[k]; dup {
			log.Printf("join: duplicate right-side key %v; keeping first occurrence", displayKey(rKeyCols, r))
			continue
		}
		rIndex[k] = r
	}

	fields := make([]Field, 0, len(left.fields)+len(takeFields))
	fields = append(fields, left.fields...)
	for _, f := range takeFields {
		if _, dup := left.index[f.Name]; dup {
			return nil, nil, fmt.Errorf("table: join: column %q exists on both sides", f.Name)
		}
		fields = append(fields, f)
	}
	out, err := New(fields...)
	if err != nil {
		return nil, nil, err
	}

	var unmatched []Unmatched
	rightSeen := make(map[int]bool, right.nrows)

	for r := 0; r < left.nrows; r++ {
		row := make([]any, 0, len(fields))
		for _, col := range left.cols {
			row = append(row, col[r])
		}
		ri, ok := rIndex[keyOf(lKeyCols, r)]
		if ok {
			rightSeen[ri] = true
			for _, col := range takeCols {
				row = append(row, col[ri])
			}
		} else {
			unmatched = append(unmatched, Unmatched{
				Key: displayKey(lKeyCols, r),
				Row: left.rowMap(r),
			})
			if opt.Mode == Left && opt.DropUnmatched {
				continue
			}
			for _, f := range takeFields {
				row = append(row, fillValue(opt.Fill, f.Kind))
			}
		}
		if err := out.AppendRow(row...); err != nil {
			return nil, nil, err
		}
	}

	if opt.Mode == Outer {
		// Append right-only rows: key values land in the left key columns,
		// remaining left columns follow the fill policy.
		for r := 0; r < right.nrows; r++ {
			// Only the canonical (first) occurrence of each right key
			// produces a row.
			if rIndex[keyOf(rKeyCols, r)] != r || rightSeen[r] {
				continue
			}
			row := make([]any, len(fields))
			for i, f := range left.fields {
				row[i] = fillValue(opt.Fill, f.Kind)
				for ki, lk := range opt.LeftKeys {
					if f.Name == lk {
						row[i] = rKeyCols[ki][r]
					}
				}
			}
			for i, col := range takeCols {
				row[len(left.fields)+i] = col[r]
			}
			if err := out.AppendRow(row...); err != nil {
				return nil, nil, err
			}
		}
	}
	return out, unmatched, nil
}

// rowMap snapshots one row as a name-to-value map.
func (t *Table) rowMap(r int) map[string]any {
	m := make(map[string]any, len(t.fields))
	for i, f := range t.fields {
		m[f.Name] = t.cols[i][r]
	}
	return m
}

// keyString renders a key cell for comparison.
func keyString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return x.Format("2006-01-02")
	default:
		return fmt.Sprintf("%v", x)
	}
}

// displayKey renders a key tuple for diagnostics.
func displayKey(cols [][]any, r int) string {
	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = keyString(col[r])
	}
	return strings.Join(parts, "/")
}

// fillValue resolves a fill policy for one cell.
func fillValue(f Fill, k Kind) any {
	if f == FillZero {
		return zeroOf(k)
	}
	return nil
}
