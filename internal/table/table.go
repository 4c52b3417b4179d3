// Package table implements the in-memory tabular model shared by the pipeline
// stages: an ordered list of named, typed columns of equal length, plus the
// reshape operations the stages are built from (pivot, crosstab, join,
// group-by, percentage derivation).
//
// Tables are constructed from cleaned records against an explicit Schema and
// fail fast on missing or mistyped columns, rather than letting a typo'd
// column name surface as a confusing error three transforms later.
//
// Mutation contract: reshaping operations (Pivot, Crosstab, Join, GroupSum)
// return new Tables and leave their inputs untouched. Column-adding builders
// (AddSumColumn, DerivePercent, FlagMaxima, AppendGrandTotal) extend the
// receiver in place; they are meant for the construction phase of a stage,
// before the table is handed to a writer.
package table

import (
	"fmt"
	"time"

	"github.com/martin-ngigi/University-Of-East-London-Assignments/pkg/records"
)

// Kind enumerates the value types a column can hold.
type Kind int

const (
	String Kind = iota
	Int
	Float
	Date
	Bool
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Int:
		return "int"
	case Float:
		return "float"
	case Date:
		return "date"
	case Bool:
		return "bool"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Field describes one column: its canonical name, value kind, and whether a
// value must be present in every row.
type Field struct {
	Name     string
	Kind     Kind
	Required bool
}

// Schema is the ordered column layout a stage expects from its input.
type Schema []Field

// Table is an ordered collection of equally long typed columns. Cells hold
// string, int64, float64, time.Time, bool, or nil (missing).
type Table struct {
	fields []Field
	cols   [][]any
	index  map[string]int
	nrows  int
}

// New returns an empty table with the given column layout.
func New(fields ...Field) (*Table, error) {
	t := &Table{
		fields: make([]Field, len(fields)),
		cols:   make([][]any, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	copy(t.fields, fields)
	for i, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("table: column %d has empty name", i)
		}
		if _, dup := t.index[f.Name]; dup {
			return nil, fmt.Errorf("table: duplicate column %q", f.Name)
		}
		t.index[f.Name] = i
	}
	return t, nil
}

// FromRecords builds a table from cleaned records, validating every record
// against the schema. A record missing a required field, or carrying a value
// of the wrong type, fails the whole construction with the field and row
// identified.
func FromRecords(schema Schema, recs []records.Record) (*Table, error) {
	t, err := New(schema...)
	if err != nil {
		return nil, err
	}
	for i, rec := range recs {
		row := make([]any, len(schema))
		for j, f := range schema {
			v, ok := rec[f.Name]
			if !ok || v == nil {
				if f.Required {
					return nil, fmt.Errorf("table: row %d: missing required field %q", i, f.Name)
				}
				row[j] = nil
				continue
			}
			cv, err := checkKind(v, f.Kind)
			if err != nil {
				return nil, fmt.Errorf("table: row %d, field %q: %w", i, f.Name, err)
			}
			row[j] = cv
		}
		if err := t.AppendRow(row...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// checkKind validates v against k, promoting int64 to float64 for Float
// columns.
func checkKind(v any, k Kind) (any, error) {
	switch k {
	case String:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case Int:
		if n, ok := v.(int64); ok {
			return n, nil
		}
	case Float:
		switch n := v.(type) {
		case float64:
			return n, nil
		case int64:
			return float64(n), nil
		}
	case Date:
		if d, ok := v.(time.Time); ok {
			return d, nil
		}
	case Bool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	}
	return nil, fmt.Errorf("have %T, want %s", v, k)
}

// Len returns the row count.
func (t *Table) Len() int { return t.nrows }

// Fields returns a copy of the column layout.
func (t *Table) Fields() []Field {
	out := make([]Field, len(t.fields))
	copy(out, t.fields)
	return out
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.fields))
	for i, f := range t.fields {
		out[i] = f.Name
	}
	return out
}

// Has reports whether a column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Kind returns the kind of the named column.
func (t *Table) Kind(name string) (Kind, error) {
	i, ok := t.index[name]
	if !ok {
		return 0, fmt.Errorf("table: no column %q", name)
	}
	return t.fields[i].Kind, nil
}

// Value returns the cell at (row, column name); nil for missing cells.
func (t *Table) Value(row int, name string) (any, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("table: no column %q", name)
	}
	if row < 0 || row >= t.nrows {
		return nil, fmt.Errorf("table: row %d out of range (%d rows)", row, t.nrows)
	}
	return t.cols[i][row], nil
}

// mustCol returns the backing slice for a column, which callers within the
// package treat as read-only unless they own the table.
func (t *Table) mustCol(name string) ([]any, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("table: no column %q", name)
	}
	return t.cols[i], nil
}

// AppendRow appends one row; values must match the column kinds (nil allowed
// for any column).
func (t *Table) AppendRow(vals ...any) error {
	if len(vals) != len(t.fields) {
		return fmt.Errorf("table: AppendRow got %d values, want %d", len(vals), len(t.fields))
	}
	for i, v := range vals {
		if v == nil {
			continue
		}
		cv, err := checkKind(v, t.fields[i].Kind)
		if err != nil {
			return fmt.Errorf("table: column %q: %w", t.fields[i].Name, err)
		}
		vals[i] = cv
	}
	for i, v := range vals {
		t.cols[i] = append(t.cols[i], v)
	}
	t.nrows++
	return nil
}

// Select returns a new table containing the named columns in the given order.
func (t *Table) Select(names ...string) (*Table, error) {
	fields := make([]Field, len(names))
	for i, name := range names {
		j, ok := t.index[name]
		if !ok {
			return nil, fmt.Errorf("table: select: no column %q", name)
		}
		fields[i] = t.fields[j]
	}
	out, err := New(fields...)
	if err != nil {
		return nil, err
	}
	for i, name := range names {
		src := t.cols[t.index[name]]
		col := make([]any, len(src))
		copy(col, src)
		out.cols[i] = col
	}
	out.nrows = t.nrows
	return out, nil
}

// Rename changes a column's name in place.
func (t *Table) Rename(old, new string) error {
	i, ok := t.index[old]
	if !ok {
		return fmt.Errorf("table: rename: no column %q", old)
	}
	if _, dup := t.index[new]; dup && new != old {
		return fmt.Errorf("table: rename: column %q already exists", new)
	}
	delete(t.index, old)
	t.fields[i].Name = new
	t.index[new] = i
	return nil
}

// SetNames renames all columns positionally. It is used after a pivot, where
// category labels from the source become column names and the stage assigns
// its canonical names instead.
func (t *Table) SetNames(names ...string) error {
	if len(names) != len(t.fields) {
		return fmt.Errorf("table: SetNames got %d names, want %d", len(names), len(t.fields))
	}
	index := make(map[string]int, len(names))
	for i, name := range names {
		if name == "" {
			return fmt.Errorf("table: SetNames: empty name at %d", i)
		}
		if _, dup := index[name]; dup {
			return fmt.Errorf("table: SetNames: duplicate name %q", name)
		}
		index[name] = i
	}
	for i, name := range names {
		t.fields[i].Name = name
	}
	t.index = index
	return nil
}

// AddSumColumn appends an Int or Float column holding the row-wise sum of the
// listed numeric columns. The result is Float if any source column is Float,
// Int otherwise. Missing cells count as zero.
func (t *Table) AddSumColumn(name string, cols ...string) error {
	if t.Has(name) {
		return fmt.Errorf("table: column %q already exists", name)
	}
	kind := Int
	srcs := make([][]any, len(cols))
	for i, c := range cols {
		j, ok := t.index[c]
		if !ok {
			return fmt.Errorf("table: sum: no column %q", c)
		}
		switch t.fields[j].Kind {
		case Int:
		case Float:
			kind = Float
		default:
			return fmt.Errorf("table: sum: column %q is %s, want numeric", c, t.fields[j].Kind)
		}
		srcs[i] = t.cols[j]
	}

	col := make([]any, t.nrows)
	for r := 0; r < t.nrows; r++ {
		var sum float64
		for _, src := range srcs {
			sum += numeric(src[r])
		}
		if kind == Int {
			col[r] = int64(sum)
		} else {
			col[r] = sum
		}
	}
	t.appendColumn(Field{Name: name, Kind: kind}, col)
	return nil
}

// appendColumn attaches a prebuilt column of length nrows.
func (t *Table) appendColumn(f Field, col []any) {
	t.index[f.Name] = len(t.fields)
	t.fields = append(t.fields, f)
	t.cols = append(t.cols, col)
}

// numeric converts an Int/Float cell to float64; nil counts as zero.
func numeric(v any) float64 {
	switch n := v.(type) {
	case int64:
		return float64(n)
	case float64:
		return n
	default:
		return 0
	}
}

// zeroOf returns the zero value for a column kind, used by zero-fill
// policies.
func zeroOf(k Kind) any {
	switch k {
	case String:
		return ""
	case Int:
		return int64(0)
	case Float:
		return float64(0)
	case Bool:
		return false
	default:
		return nil
	}
}
