package orm

import "fmt"

// Result is the uniform outcome of a Read. The engine always produces the
// full sequence of matched records; the caller states its cardinality
// expectation through One or All instead of branching on the result shape.
type Result struct {
	table   string
	records []Record
}

// All returns every matched record; the slice may be empty.
func (r *Result) All() []Record { return r.records }

// Len reports the number of matched records.
func (r *Result) Len() int { return len(r.records) }

// One returns the single matched record. It fails with *LookupMissError
// when nothing matched and ErrAmbiguousResult when more than one row did.
func (r *Result) One() (Record, error) {
	switch len(r.records) {
	case 0:
		return nil, &LookupMissError{Table: r.table}
	case 1:
		return r.records[0], nil
	default:
		return nil, fmt.Errorf("%d rows matched in table %s: %w", len(r.records), r.table, ErrAmbiguousResult)
	}
}
