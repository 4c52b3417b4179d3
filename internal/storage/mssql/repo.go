// Package mssql implements a SQL Server storage.Repository via database/sql
// and the go-mssqldb driver. SQL Server lacks a portable COPY equivalent
// through database/sql, so CopyFrom issues batched parameterized INSERTs
// inside a transaction.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/microsoft/go-mssqldb"

	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/storage"
	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/table"
)

func init() {
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, cfg)
	})
}

// Repository is a SQL Server-backed implementation of storage.Repository.
type Repository struct {
	db *sql.DB
}

// NewRepository opens a connection using a sqlserver:// DSN.
func NewRepository(ctx context.Context, cfg storage.Config) (*Repository, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("mssql: DSN must not be empty")
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("mssql: open: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mssql: ping: %w", err)
	}
	return &Repository{db: db}, nil
}

// EnsureTable creates the destination table if it does not exist.
func (r *Repository) EnsureTable(ctx context.Context, def storage.TableDef) error {
	if _, err := r.db.ExecContext(ctx, CreateTableSQL(def)); err != nil {
		return fmt.Errorf("mssql: ensure table %s: %w", def.Name, err)
	}
	return nil
}

// CopyFrom inserts rows with a prepared statement inside one transaction.
func (r *Repository) CopyFrom(ctx context.Context, def storage.TableDef, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	cols := make([]string, len(def.Columns))
	marks := make([]string, len(def.Columns))
	for i, c := range def.Columns {
		cols[i] = msIdent(c.Name)
		marks[i] = fmt.Sprintf("@p%d", i+1)
	}
	stmtSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		msIdent(def.Name), strings.Join(cols, ", "), strings.Join(marks, ", "))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mssql: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("mssql: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, row := range rows {
		if len(row) != len(def.Columns) {
			_ = tx.Rollback()
			return inserted, fmt.Errorf("mssql: row length %d != %d columns", len(row), len(def.Columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = tx.Rollback()
			return inserted, fmt.Errorf("mssql: insert: %w", err)
		}
		inserted++
	}
	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("mssql: commit: %w", err)
	}
	return inserted, nil
}

// Close releases the connection pool.
func (r *Repository) Close() error { return r.db.Close() }

// CreateTableSQL renders a guarded CREATE TABLE for the T-SQL dialect.
func CreateTableSQL(def storage.TableDef) string {
	parts := make([]string, len(def.Columns))
	for i, c := range def.Columns {
		parts[i] = fmt.Sprintf("%s %s", msIdent(c.Name), sqlType(c.Kind))
	}
	return fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL CREATE TABLE %s (%s)",
		strings.ReplaceAll(def.Name, "'", "''"),
		msIdent(def.Name),
		strings.Join(parts, ", "),
	)
}

func sqlType(k table.Kind) string {
	switch k {
	case table.Int:
		return "BIGINT"
	case table.Float:
		return "FLOAT"
	case table.Date:
		return "DATE"
	case table.Bool:
		return "BIT"
	default:
		return "NVARCHAR(400)"
	}
}

// msIdent bracket-quotes an identifier for SQL Server.
func msIdent(s string) string {
	return "[" + strings.ReplaceAll(s, "]", "]]") + "]"
}
