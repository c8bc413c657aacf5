package cache

import (
	"maps"
	"strconv"
	"strings"

	json "github.com/json-iterator/go"
	"github.com/kazem-mohamed/socialhub-app/pkg/ingest"
)

// OptimisticPrefix marks ids minted locally before the server confirmed them
const OptimisticPrefix = "optimistic-"

// Record is one post, comment, reply, notification or profile as the client
// knows it. Fields holds the server's display fields verbatim.
type Record struct {
	ID         string
	Fields     map[string]any
	Optimistic bool
}

// NewRecord builds a record from decoded JSON, taking the id from the usual
// identity keys.
func NewRecord(fields map[string]any) Record {
	return Record{ID: ingest.IDOf(fields), Fields: fields}
}

// Clone returns a copy whose Fields map can be changed independently
func (r Record) Clone() Record {
	r.Fields = maps.Clone(r.Fields)
	return r
}

// With returns a copy with fields shallow-merged in
func (r Record) With(fields map[string]any) Record {
	out := r.Clone()
	if out.Fields == nil {
		out.Fields = make(map[string]any, len(fields))
	}
	for k, v := range fields {
		out.Fields[k] = v
	}
	return out
}

// Has reports whether any of keys is present
func (r Record) Has(keys ...string) bool {
	for _, k := range keys {
		if _, ok := r.Fields[k]; ok {
			return true
		}
	}
	return false
}

// String returns the first non-empty string among keys
func (r Record) String(keys ...string) string {
	for _, k := range keys {
		if s, ok := r.Fields[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// Int returns the first numeric value among keys
func (r Record) Int(keys ...string) int {
	for _, k := range keys {
		switch v := r.Fields[k].(type) {
		case int:
			return v
		case int64:
			return int(v)
		case float64:
			return int(v)
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return n
			}
		}
	}
	return 0
}

// Bool returns the first boolean-like value among keys
func (r Record) Bool(keys ...string) bool {
	for _, k := range keys {
		if v, ok := ingest.FlagOf(r.Fields[k]); ok {
			return v
		}
	}
	return false
}

// FirstKey returns the first of keys present on the record, or keys[0]
func (r Record) FirstKey(keys ...string) string {
	for _, k := range keys {
		if _, ok := r.Fields[k]; ok {
			return k
		}
	}
	if len(keys) == 0 {
		return ""
	}
	return keys[0]
}

// Decode converts the record's fields into a typed value
func (r Record) Decode(v any) error {
	raw, err := json.Marshal(r.Fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
