package orm

import (
	"fmt"
	"strings"
)

// Filter selects rows for Read. Exactly one selection mode is active per
// call: a raw Where expression, when present, takes precedence over the Eq
// equality conditions. An empty Filter matches all rows.
type Filter struct {
	// Where is a raw SQL filter expression (without the WHERE keyword).
	// Use dialect placeholders for values and pass them in Args.
	Where string

	// Args holds bound values for placeholders in Where.
	Args []any

	// Eq matches columns for equality; conditions are ANDed together in
	// descriptor field order.
	Eq map[string]any
}

// ByID returns a filter matching the descriptor's identifier column.
func ByID(d *Descriptor, id int64) Filter {
	pk, _ := d.PrimaryKey()
	return Filter{Eq: map[string]any{pk.Name: id}}
}

// ByField returns a filter matching a single column for equality.
func ByField(name string, value any) Filter {
	return Filter{Eq: map[string]any{name: value}}
}

// render builds the WHERE clause and its bound values.
func (f Filter) render(d *Descriptor, dialect Dialect) (string, []any, error) {
	if f.Where != "" {
		return " WHERE " + f.Where, f.Args, nil
	}
	if len(f.Eq) == 0 {
		return "", nil, nil
	}

	// Walking the descriptor keeps the rendered SQL deterministic.
	conds := make([]string, 0, len(f.Eq))
	args := make([]any, 0, len(f.Eq))
	for _, fld := range d.Fields {
		v, ok := f.Eq[fld.Name]
		if !ok {
			continue
		}
		conds = append(conds, fmt.Sprintf("%s = %s", fld.Name, dialect.Placeholder(len(args)+1)))
		args = append(args, v)
	}
	if len(args) != len(f.Eq) {
		return "", nil, fmt.Errorf("filter references a column unknown to table %s", d.Table)
	}

	return " WHERE " + strings.Join(conds, " AND "), args, nil
}
