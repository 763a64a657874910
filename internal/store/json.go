package store

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// marshalJSONB marshals a value for a jsonb column. Nil pointers map to SQL
// NULL rather than the JSON literal null.
func marshalJSONB(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal jsonb value: %w", err)
	}
	return data, nil
}

// unmarshalJSONB decodes a jsonb column into dst, treating NULL as a no-op.
func unmarshalJSONB(data []byte, dst any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to unmarshal jsonb value: %w", err)
	}
	return nil
}
