package orm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect abstracts the SQL differences between the supported drivers:
// placeholder style, column type names, the auto-incrementing identifier
// column, the upsert clause, and duplicate-key error detection.
type Dialect interface {
	// Name identifies the dialect in logs.
	Name() string

	// DriverName is the database/sql driver to open connections with.
	DriverName() string

	// Placeholder renders the n-th bound-value placeholder (1-based).
	Placeholder(n int) string

	// ColumnType maps a field's abstract type to a concrete column type.
	// Consulted only at schema-generation time.
	ColumnType(f Field) (string, error)

	// PrimaryKeyColumn returns the definition of the store-assigned
	// auto-incrementing identifier column and an optional trailing table
	// constraint (empty when the column definition already carries it).
	PrimaryKeyColumn(name string) (column string, constraint string)

	// UpsertClause renders the on-conflict clause overwriting every
	// non-key column with the newly supplied value.
	UpsertClause(pk string, columns []string) string

	// IsDuplicate reports whether err is a uniqueness-constraint violation.
	IsDuplicate(err error) bool
}

// DialectForDSN picks the dialect from the DSN scheme: postgres:// (or
// postgresql://) selects pgx, anything else the embedded sqlite store.
func DialectForDSN(dsn string) Dialect {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return PostgresDialect{}
	}
	return SQLiteDialect{}
}

func upsertAssignments(columns []string) string {
	assignments := make([]string, 0, len(columns))
	for _, c := range columns {
		assignments = append(assignments, fmt.Sprintf("%s = excluded.%s", c, c))
	}
	return strings.Join(assignments, ", ")
}

// SQLiteDialect targets the pure-Go sqlite driver (modernc.org/sqlite).
type SQLiteDialect struct{}

func (SQLiteDialect) Name() string       { return "sqlite" }
func (SQLiteDialect) DriverName() string { return "sqlite" }

func (SQLiteDialect) Placeholder(int) string { return "?" }

func (SQLiteDialect) ColumnType(f Field) (string, error) {
	switch f.Type {
	case Integer:
		return "INTEGER", nil
	case Text:
		return "VARCHAR(255)", nil
	case Decimal:
		return "DECIMAL(10,2)", nil
	case Boolean:
		return "BOOLEAN", nil
	case Timestamp:
		return "DATETIME", nil
	}
	return "", &UnsupportedTypeError{Field: f.Name, Type: f.Type}
}

func (SQLiteDialect) PrimaryKeyColumn(name string) (string, string) {
	// sqlite requires AUTOINCREMENT inline with the pk column, so no
	// trailing PRIMARY KEY constraint is emitted.
	return name + " INTEGER PRIMARY KEY AUTOINCREMENT", ""
}

func (SQLiteDialect) UpsertClause(pk string, columns []string) string {
	return fmt.Sprintf("ON CONFLICT(%s) DO UPDATE SET %s", pk, upsertAssignments(columns))
}

func (SQLiteDialect) IsDuplicate(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

// PostgresDialect targets PostgreSQL through the pgx stdlib driver.
type PostgresDialect struct{}

func (PostgresDialect) Name() string       { return "postgres" }
func (PostgresDialect) DriverName() string { return "pgx" }

func (PostgresDialect) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

func (PostgresDialect) ColumnType(f Field) (string, error) {
	switch f.Type {
	case Integer:
		return "INTEGER", nil
	case Text:
		return "VARCHAR(255)", nil
	case Decimal:
		return "NUMERIC(10,2)", nil
	case Boolean:
		return "BOOLEAN", nil
	case Timestamp:
		return "TIMESTAMP", nil
	}
	return "", &UnsupportedTypeError{Field: f.Name, Type: f.Type}
}

func (PostgresDialect) PrimaryKeyColumn(name string) (string, string) {
	// SERIAL rather than an identity column: upserts must be able to
	// carry the identifier explicitly.
	return name + " SERIAL", fmt.Sprintf("PRIMARY KEY (%s)", name)
}

func (PostgresDialect) UpsertClause(pk string, columns []string) string {
	return fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s", pk, upsertAssignments(columns))
}

// pgUniqueViolation is the PostgreSQL error code for unique_violation.
const pgUniqueViolation = "23505"

func (PostgresDialect) IsDuplicate(err error) bool {
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe.Code == pgUniqueViolation
	}
	return false
}
