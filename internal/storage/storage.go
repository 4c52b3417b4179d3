// Package storage contains the storage-agnostic contracts for loading final
// tables into a database, so downstream analysis can query the prepared data
// instead of re-parsing CSV output. Backends register themselves with the
// factory at init time; callers select one by kind and never import driver
// packages directly.
package storage

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/table"
)

// Config selects and configures a storage backend.
type Config struct {
	// Kind names a registered backend ("sqlite", "postgres", "mssql").
	Kind string

	// DSN is passed to the backend's driver.
	DSN string

	// Table is the destination table name.
	Table string

	// BatchSize caps rows per bulk insert; defaults to 500.
	BatchSize int
}

// ColumnDef describes one destination column in backend-agnostic terms; each
// backend maps the table kind to its own SQL type.
type ColumnDef struct {
	Name string
	Kind table.Kind
}

// TableDef is the destination table layout derived from a table's schema.
type TableDef struct {
	Name    string
	Columns []ColumnDef
}

// Repository is the minimal backend contract: create the destination table if
// needed, bulk-insert rows, release the connection.
type Repository interface {
	EnsureTable(ctx context.Context, def TableDef) error
	CopyFrom(ctx context.Context, def TableDef, rows [][]any) (int64, error)
	Close() error
}

// Factory mints a Repository for a Config.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) a backend factory for the given kind.
// Typically called from backend packages' init functions.
func Register(kind string, fn Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = fn
}

// New opens a Repository for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	fn, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return fn(ctx, cfg)
}

// ListKinds returns a snapshot of the registered backend kinds, sorted.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DefFor derives the destination table layout from t's schema.
func DefFor(name string, t *table.Table) TableDef {
	fields := t.Fields()
	cols := make([]ColumnDef, len(fields))
	for i, f := range fields {
		cols[i] = ColumnDef{Name: f.Name, Kind: f.Kind}
	}
	return TableDef{Name: name, Columns: cols}
}

// LoadTable ensures the destination table exists and bulk-inserts every row
// of t in batches, logging per-batch progress. It returns the total number of
// rows the backend reported inserted.
func LoadTable(ctx context.Context, repo Repository, cfg Config, t *table.Table) (int64, error) {
	def := DefFor(cfg.Table, t)
	if err := repo.EnsureTable(ctx, def); err != nil {
		return 0, err
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 500
	}

	cols := t.Columns()
	var (
		total int64
		batch = make([][]any, 0, batchSize)
		start = time.Now()
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := repo.CopyFrom(ctx, def, batch)
		total += n
		batch = batch[:0]
		if err != nil {
			return err
		}
		log.Printf("storage: %s: inserted=%d total=%d elapsed=%s",
			cfg.Table, n, total, time.Since(start).Truncate(time.Millisecond))
		return nil
	}

	for r := 0; r < t.Len(); r++ {
		row := make([]any, len(cols))
		for i, name := range cols {
			v, err := t.Value(r, name)
			if err != nil {
				return total, err
			}
			row[i] = v
		}
		batch = append(batch, row)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}
