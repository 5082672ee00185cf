package orm

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/fhirmeds/fhirmeds/internal/dbx"
	"github.com/fhirmeds/fhirmeds/internal/logging"
)

// Executor runs SQL statements against a shared *sql.DB handle. A mutex
// serializes the execute-then-commit sequence so concurrent callers cannot
// interleave statements. Mutating statements run inside an explicit
// transaction and are committed before Exec returns; uniqueness violations
// are mapped to *DuplicateValueError, all other failures propagate wrapped.
type Executor struct {
	mu      sync.Mutex
	db      *sql.DB
	dialect Dialect
	log     logging.Logger
}

func NewExecutor(db *sql.DB, dialect Dialect, log logging.Logger) *Executor {
	return &Executor{
		db:      db,
		dialect: dialect,
		log:     log.With("component", "executor", "dialect", dialect.Name()),
	}
}

// Dialect returns the dialect this executor was built with.
func (e *Executor) Dialect() Dialect { return e.dialect }

// Exec runs a mutating statement inside a transaction. table names the
// target for duplicate-value reporting. No retry is attempted.
func (e *Executor) Exec(ctx context.Context, table, query string, args ...any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.log.Debug(ctx, "executing statement", "query", query)

	err := dbx.WithTx(ctx, e.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := tx.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		if e.dialect.IsDuplicate(err) {
			return &DuplicateValueError{Table: table, Err: err}
		}
		return fmt.Errorf("error performing sql request: %w", err)
	}

	return nil
}

// Query runs a SELECT and returns the column names plus the raw rows as
// scanned by the driver. Coercion back to declared field types happens in
// the engine.
func (e *Executor) Query(ctx context.Context, query string, args ...any) ([]string, [][]any, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.log.Debug(ctx, "executing query", "query", query)

	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		out = append(out, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	return cols, out, nil
}
