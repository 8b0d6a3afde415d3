package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Attributes holds fields written to a record that are not part of its schema.
// It is stored as a JSON object in a text column.
type Attributes map[string]string

// Value implements driver.Valuer.
func (a Attributes) Value() (driver.Value, error) {
	if len(a) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(map[string]string(a))
	if err != nil {
		return nil, fmt.Errorf("marshal attributes: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (a *Attributes) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*a = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("scan attributes: unsupported type %T", src)
	}
	if len(raw) == 0 {
		*a = nil
		return nil
	}
	m := make(map[string]string)
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("unmarshal attributes: %w", err)
	}
	*a = m
	return nil
}

// Merge returns a copy of a with fields overlaid.
func (a Attributes) Merge(fields map[string]string) Attributes {
	out := make(Attributes, len(a)+len(fields))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range fields {
		out[k] = v
	}
	return out
}
