package orm

import (
	"errors"
	"fmt"
)

// DuplicateValueError reports a uniqueness-constraint violation on write.
// The row was not inserted and no partial state persists.
type DuplicateValueError struct {
	Table string
	Err   error
}

func (e *DuplicateValueError) Error() string {
	return fmt.Sprintf("duplicate value entered for table %s, please choose a different value", e.Table)
}

func (e *DuplicateValueError) Unwrap() error { return e.Err }

// UnsupportedTypeError reports a descriptor field whose abstract type has no
// registered column mapping. It indicates a programming error and is fatal
// at schema-generation time.
type UnsupportedTypeError struct {
	Field string
	Type  FieldType
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported data type %s for field %s", e.Type, e.Field)
}

// LookupMissError reports a read that expected exactly one row but matched
// none.
type LookupMissError struct {
	Table string
}

func (e *LookupMissError) Error() string {
	return fmt.Sprintf("no row in table %s matched the filter", e.Table)
}

// ErrAmbiguousResult is returned by Result.One when more than one row
// matched a filter the caller expected to be unique.
var ErrAmbiguousResult = errors.New("more than one row matched")
