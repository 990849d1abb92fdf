package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// FieldMap maps document field names to string values. A missing key means
// the field was not found, which is a valid outcome rather than an error.
type FieldMap map[string]string

// Clone returns a copy of the map; nil stays nil.
func (m FieldMap) Clone() FieldMap {
	if m == nil {
		return nil
	}
	c := make(FieldMap, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// Value marshals the map for a JSONB column; nil maps store SQL NULL.
func (m FieldMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal field map: %w", err)
	}
	return b, nil
}

// Scan reads a JSONB column back into the map.
func (m *FieldMap) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported field map source type %T", src)
	}

	if err := json.Unmarshal(data, m); err != nil {
		return fmt.Errorf("failed to unmarshal field map: %w", err)
	}
	return nil
}
