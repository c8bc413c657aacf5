package ingest

import (
	"fmt"
	"strconv"

	json "github.com/json-iterator/go"
)

// IDKeys are the field names that may carry a record identity
var IDKeys = []string{"id", "_id", "ID", "uuid"}

// List extracts an array of records named key
func List(body []byte, key string) ([]map[string]any, Match, error) {
	m := Run(body, ListStrategies(key))
	if !m.Found() {
		return nil, m, nil
	}

	var raw []any
	if err := json.UnmarshalFromString(m.Value.Raw, &raw); err != nil {
		return nil, m, fmt.Errorf("decode %s: %w", m.Strategy.Name, err)
	}

	items := make([]map[string]any, 0, len(raw))
	for _, r := range raw {
		if obj, ok := r.(map[string]any); ok {
			items = append(items, obj)
		}
	}
	return items, m, nil
}

// Object extracts a single record named key
func Object(body []byte, key string) (map[string]any, Match, error) {
	m := Run(body, ObjectStrategies(key))
	if !m.Found() {
		return nil, m, nil
	}

	var obj map[string]any
	if err := json.UnmarshalFromString(m.Value.Raw, &obj); err != nil {
		return nil, m, fmt.Errorf("decode %s: %w", m.Strategy.Name, err)
	}
	return obj, m, nil
}

// IDOf returns the first usable identity in fields, or ""
func IDOf(fields map[string]any) string {
	for _, k := range IDKeys {
		switch v := fields[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case json.Number:
			return v.String()
		}
	}
	return ""
}
