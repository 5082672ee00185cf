package orm

import (
	"fmt"
	"maps"
)

// FieldType is the abstract storage type of a descriptor field.
// The concrete column type is decided per dialect at schema-generation time.
type FieldType int

const (
	Integer FieldType = iota
	Text
	Decimal
	Boolean
	Timestamp
)

func (t FieldType) String() string {
	switch t {
	case Integer:
		return "integer"
	case Text:
		return "text"
	case Decimal:
		return "decimal"
	case Boolean:
		return "boolean"
	case Timestamp:
		return "timestamp"
	}
	return fmt.Sprintf("FieldType(%d)", int(t))
}

// Field describes one column of a table.
type Field struct {
	Name string
	Type FieldType

	// PrimaryKey marks the store-assigned integer row identifier.
	// At most one field per descriptor may carry it.
	PrimaryKey bool

	// Unique adds a uniqueness constraint to the column; collisions on
	// write surface as *DuplicateValueError.
	Unique bool

	// Salt designates the column holding the per-row random salt.
	// A fresh value is generated on every write and never reused.
	Salt bool

	// Hashed marks the credential column. Its stored value is always a
	// one-way hash of the raw input under the row's salt, never the raw
	// input itself.
	Hashed bool

	// Sensitive marks PII. Advisory only: the engine does not enforce it,
	// but Redact masks these values for logging.
	Sensitive bool
}

// Descriptor is the static, ordered schema metadata for one table.
// Field order is the column order on both the write and read paths.
type Descriptor struct {
	Table  string
	Fields []Field
}

// Record holds one row's values keyed by field name.
type Record map[string]any

// PrimaryKey returns the identifier field, if declared.
func (d *Descriptor) PrimaryKey() (Field, bool) {
	for _, f := range d.Fields {
		if f.PrimaryKey {
			return f, true
		}
	}
	return Field{}, false
}

// SaltField returns the designated salt field, if declared.
func (d *Descriptor) SaltField() (Field, bool) {
	for _, f := range d.Fields {
		if f.Salt {
			return f, true
		}
	}
	return Field{}, false
}

// HashedField returns the credential field, if declared.
func (d *Descriptor) HashedField() (Field, bool) {
	for _, f := range d.Fields {
		if f.Hashed {
			return f, true
		}
	}
	return Field{}, false
}

// FieldByName looks a field up by its column name.
func (d *Descriptor) FieldByName(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Validate checks the structural invariants of the descriptor: a table name,
// unique non-empty field names, at most one integer-typed primary key, at
// most one hashed field, and a salt field whenever a hashed field exists.
func (d *Descriptor) Validate() error {
	if d.Table == "" {
		return fmt.Errorf("descriptor has no table name")
	}

	seen := make(map[string]struct{}, len(d.Fields))
	var pks, salts, hashed int
	for _, f := range d.Fields {
		if f.Name == "" {
			return fmt.Errorf("table %s: field with empty name", d.Table)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("table %s: duplicate field %s", d.Table, f.Name)
		}
		seen[f.Name] = struct{}{}

		if f.PrimaryKey {
			pks++
			if f.Type != Integer {
				return fmt.Errorf("table %s: primary key %s must be integer-typed", d.Table, f.Name)
			}
		}
		if f.Salt {
			salts++
			if f.Type != Text {
				return fmt.Errorf("table %s: salt field %s must be text-typed", d.Table, f.Name)
			}
		}
		if f.Hashed {
			hashed++
		}
	}

	if pks > 1 {
		return fmt.Errorf("table %s: more than one primary key field", d.Table)
	}
	if salts > 1 {
		return fmt.Errorf("table %s: more than one salt field", d.Table)
	}
	if hashed > 1 {
		return fmt.Errorf("table %s: more than one hashed field", d.Table)
	}
	if hashed == 1 && salts == 0 {
		return fmt.Errorf("table %s: hashed field declared without a salt field", d.Table)
	}

	return nil
}

// Redact returns a copy of rec with salt, hashed and sensitive field values
// masked, suitable for operator-facing logs.
func (d *Descriptor) Redact(rec Record) Record {
	out := maps.Clone(rec)
	for _, f := range d.Fields {
		if !f.Sensitive && !f.Hashed && !f.Salt {
			continue
		}
		if _, ok := out[f.Name]; ok {
			out[f.Name] = "[redacted]"
		}
	}
	return out
}
