package journal

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Snapshot is a field-name to value record of an entity's state before a mutation.
// Values are read back by name only; after a round trip through the store numbers may come
// back as float64 or json.Number, so the accessors coerce.
type Snapshot map[string]any

// Has reports whether the field was captured
func (s Snapshot) Has(field string) bool {
	_, ok := s[field]
	return ok
}

// String reads a string field
func (s Snapshot) String(field string) (string, error) {
	v, ok := s[field]
	if !ok {
		return "", missingField(field)
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case nil:
		return "", nil
	default:
		return "", wrongType(field, "string", v)
	}
}

// Int reads an integer field
func (s Snapshot) Int(field string) (int, error) {
	v, ok := s[field]
	if !ok {
		return 0, missingField(field)
	}
	switch t := v.(type) {
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case float64:
		if t != math.Trunc(t) {
			return 0, wrongType(field, "integer", v)
		}
		return int(t), nil
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, wrongType(field, "integer", v)
		}
		return int(n), nil
	case string:
		n, err := strconv.Atoi(t)
		if err != nil {
			return 0, wrongType(field, "integer", v)
		}
		return n, nil
	default:
		return 0, wrongType(field, "integer", v)
	}
}

// Decimal reads a decimal field, stored as a string to keep precision
func (s Snapshot) Decimal(field string) (decimal.Decimal, error) {
	v, ok := s[field]
	if !ok {
		return decimal.Zero, missingField(field)
	}
	switch t := v.(type) {
	case string:
		d, err := decimal.NewFromString(t)
		if err != nil {
			return decimal.Zero, wrongType(field, "decimal", v)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(t), nil
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return decimal.Zero, wrongType(field, "decimal", v)
		}
		return d, nil
	case decimal.Decimal:
		return t, nil
	default:
		return decimal.Zero, wrongType(field, "decimal", v)
	}
}

// UUID reads an identifier field
func (s Snapshot) UUID(field string) (uuid.UUID, error) {
	v, ok := s[field]
	if !ok {
		return uuid.Nil, missingField(field)
	}
	switch t := v.(type) {
	case string:
		id, err := uuid.Parse(t)
		if err != nil {
			return uuid.Nil, wrongType(field, "uuid", v)
		}
		return id, nil
	case uuid.UUID:
		return t, nil
	default:
		return uuid.Nil, wrongType(field, "uuid", v)
	}
}

// Bool reads a boolean field
func (s Snapshot) Bool(field string) (bool, error) {
	v, ok := s[field]
	if !ok {
		return false, missingField(field)
	}
	b, ok := v.(bool)
	if !ok {
		return false, wrongType(field, "bool", v)
	}
	return b, nil
}

// Records reads a list of nested records, such as the lines of a transaction
func (s Snapshot) Records(field string) ([]Snapshot, error) {
	v, ok := s[field]
	if !ok {
		return nil, missingField(field)
	}
	switch t := v.(type) {
	case []Snapshot:
		return t, nil
	case []map[string]any:
		out := make([]Snapshot, len(t))
		for i, m := range t {
			out[i] = Snapshot(m)
		}
		return out, nil
	case []any:
		out := make([]Snapshot, len(t))
		for i, item := range t {
			switch m := item.(type) {
			case map[string]any:
				out[i] = Snapshot(m)
			case Snapshot:
				out[i] = m
			default:
				return nil, wrongType(field, "list of records", v)
			}
		}
		return out, nil
	default:
		return nil, wrongType(field, "list of records", v)
	}
}

func missingField(field string) error {
	return fmt.Errorf("snapshot field %q missing", field)
}

func wrongType(field, want string, got any) error {
	return fmt.Errorf("snapshot field %q: want %s, got %T", field, want, got)
}
