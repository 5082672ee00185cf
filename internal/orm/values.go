package orm

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// timeLayout is the canonical rendering of Timestamp values on the write
// path; the read path parses it back.
const timeLayout = "2006-01-02 15:04:05"

// recID extracts the identifier from a record, tolerating the integer widths
// a caller may reasonably supply. Absent or non-numeric values read as zero,
// i.e. "new row".
func recID(rec Record, pk Field) int64 {
	v, ok := rec[pk.Name]
	if !ok {
		return 0
	}
	id, err := toInt64(v)
	if err != nil {
		return 0
	}
	return id
}

// bindValue converts a record value into its driver-appropriate bound form.
// Absent values bind as the declared type's zero value.
func bindValue(f Field, v any) (any, error) {
	if v == nil {
		v = zeroValue(f.Type)
	}

	switch f.Type {
	case Integer:
		return toInt64(v)
	case Text:
		return toText(v)
	case Decimal:
		return toFloat64(v)
	case Boolean:
		return toBool(v)
	case Timestamp:
		t, err := toTime(v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		return t.UTC().Format(timeLayout), nil
	}
	return nil, &UnsupportedTypeError{Field: f.Name, Type: f.Type}
}

// coerce converts a raw driver value back to the field's declared type, so
// no raw-string leakage reaches typed instance fields.
func coerce(f Field, v any) (any, error) {
	if v == nil {
		return zeroValue(f.Type), nil
	}

	switch f.Type {
	case Integer:
		return toInt64(v)
	case Text:
		return toText(v)
	case Decimal:
		return toFloat64(v)
	case Boolean:
		return toBool(v)
	case Timestamp:
		return toTime(v)
	}
	return nil, &UnsupportedTypeError{Field: f.Name, Type: f.Type}
}

func zeroValue(t FieldType) any {
	switch t {
	case Integer:
		return int64(0)
	case Text:
		return ""
	case Decimal:
		return float64(0)
	case Boolean:
		return false
	case Timestamp:
		return time.Time{}
	}
	return nil
}

func toInt64(v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		return int64(x), nil
	case float64:
		return int64(x), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case []byte:
		return strconv.ParseInt(string(x), 10, 64)
	case string:
		return strconv.ParseInt(x, 10, 64)
	}
	return 0, fmt.Errorf("cannot convert %T to integer", v)
}

func toFloat64(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int:
		return float64(x), nil
	case []byte:
		return strconv.ParseFloat(string(x), 64)
	case string:
		return strconv.ParseFloat(x, 64)
	}
	return 0, fmt.Errorf("cannot convert %T to decimal", v)
}

func toBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case int64:
		return x != 0, nil
	case int:
		return x != 0, nil
	case []byte:
		return strconv.ParseBool(string(x))
	case string:
		return strconv.ParseBool(x)
	}
	return false, fmt.Errorf("cannot convert %T to boolean", v)
}

func toText(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	}
	return "", fmt.Errorf("cannot convert %T to text", v)
}

// timeLayouts are the temporal renderings accepted on the read path; drivers
// differ in how they hand DATETIME columns back.
var timeLayouts = []string{
	timeLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02",
}

func toTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case []byte:
		return parseTime(string(x))
	case string:
		return parseTime(x)
	case int64:
		return time.Unix(x, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("cannot convert %T to timestamp", v)
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as timestamp", s)
}
