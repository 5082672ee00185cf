package orm

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/fhirmeds/fhirmeds/internal/cryptox"
	"github.com/fhirmeds/fhirmeds/internal/logging"
)

// Engine turns entity descriptors into SQL schema and CRUD statements.
// It holds no per-row state between calls.
type Engine struct {
	exec *Executor
	log  logging.Logger
}

func NewEngine(exec *Executor, log logging.Logger) *Engine {
	return &Engine{exec: exec, log: log.With("component", "engine")}
}

// CreateTable emits the descriptor's schema statement. The identifier column
// is store-assigned and added exactly once, never duplicated from the field
// list; fields tagged Unique get a uniqueness constraint. Safe to call when
// the table already exists.
func (g *Engine) CreateTable(ctx context.Context, d *Descriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}

	pk, ok := d.PrimaryKey()
	if !ok {
		return fmt.Errorf("table %s has no primary key field", d.Table)
	}

	dialect := g.exec.Dialect()

	pkCol, pkConstraint := dialect.PrimaryKeyColumn(pk.Name)
	defs := []string{pkCol}
	for _, f := range d.Fields {
		if f.PrimaryKey {
			continue
		}
		col, err := dialect.ColumnType(f)
		if err != nil {
			return err
		}
		def := f.Name + " " + col
		if f.Unique {
			def += " UNIQUE"
		}
		defs = append(defs, def)
	}
	if pkConstraint != "" {
		defs = append(defs, pkConstraint)
	}

	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", d.Table, strings.Join(defs, ", "))

	g.log.Info(ctx, "ensuring table exists", "table", d.Table)
	return g.exec.Exec(ctx, d.Table, query)
}

// Insert writes one record: a plain insert when the identifier is unset, an
// upsert overwriting every non-key column when it carries a positive value.
//
// The credential protocol is an explicit two-step: when the descriptor has a
// salt field, a fresh salt is generated first; the hashed field is then
// replaced by a one-way hash of (raw value, salt). Every write recomputes
// both, so an upsert never preserves the prior credential unless the caller
// resupplies the same raw value.
func (g *Engine) Insert(ctx context.Context, d *Descriptor, rec Record) error {
	if err := d.Validate(); err != nil {
		return err
	}

	pk, ok := d.PrimaryKey()
	if !ok {
		return fmt.Errorf("table %s has no primary key field", d.Table)
	}

	// The caller's record stays untouched; salt and hash are applied to a copy.
	rec = maps.Clone(rec)
	upsert := recID(rec, pk) > 0

	if salt, ok := d.SaltField(); ok {
		s, err := cryptox.NewSalt()
		if err != nil {
			return fmt.Errorf("salt generation failed: %w", err)
		}
		rec[salt.Name] = s

		if hashed, ok := d.HashedField(); ok {
			raw, err := toText(rec[hashed.Name])
			if err != nil {
				return fmt.Errorf("field %s: %w", hashed.Name, err)
			}
			rec[hashed.Name] = cryptox.HashPassword(raw, s)
		}
	}

	dialect := g.exec.Dialect()

	var cols []string
	var vals []any
	for _, f := range d.Fields {
		if f.PrimaryKey {
			// The identifier is store-assigned for new rows and carried
			// explicitly only for upserts.
			if upsert {
				cols = append(cols, f.Name)
				vals = append(vals, recID(rec, pk))
			}
			continue
		}
		v, err := bindValue(f, rec[f.Name])
		if err != nil {
			return err
		}
		cols = append(cols, f.Name)
		vals = append(vals, v)
	}

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = dialect.Placeholder(i + 1)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.Table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	if upsert {
		nonKey := make([]string, 0, len(cols))
		for _, c := range cols {
			if c != pk.Name {
				nonKey = append(nonKey, c)
			}
		}
		query += " " + dialect.UpsertClause(pk.Name, nonKey)
	}

	g.log.Debug(ctx, "writing record", "table", d.Table, "upsert", upsert)
	return g.exec.Exec(ctx, d.Table, query, vals...)
}

// Read selects rows matching the filter and materializes one typed record
// per row, coercing every column back to its declared field type.
func (g *Engine) Read(ctx context.Context, d *Descriptor, f Filter) (*Result, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	where, args, err := f.render(d, g.exec.Dialect())
	if err != nil {
		return nil, err
	}

	query := "SELECT * FROM " + d.Table + where

	cols, rows, err := g.exec.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec := make(Record, len(cols))
		for i, col := range cols {
			fld, ok := d.FieldByName(col)
			if !ok {
				return nil, fmt.Errorf("table %s returned unknown column %s", d.Table, col)
			}
			v, err := coerce(fld, row[i])
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", fld.Name, err)
			}
			rec[fld.Name] = v
		}
		records = append(records, rec)
	}

	return &Result{table: d.Table, records: records}, nil
}
