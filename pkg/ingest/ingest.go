// Package ingest pulls records, pagination metadata and flags out of API
// responses whose nesting is not consistent (data.data.X, data.X, bare arrays).
//
// Every lookup is an ordered list of named strategies. The first strategy
// whose path exists with the expected shape wins.
package ingest

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Shape is the JSON shape a strategy expects to find
type Shape int

const (
	ShapeArray Shape = iota
	ShapeObject
	ShapeNumber
	ShapeFlag
	ShapeString
)

func (s Shape) String() string {
	switch s {
	case ShapeArray:
		return "array"
	case ShapeObject:
		return "object"
	case ShapeNumber:
		return "number"
	case ShapeFlag:
		return "flag"
	case ShapeString:
		return "string"
	}
	return "unknown"
}

// Strategy is one candidate location for a value
type Strategy struct {
	Name  string
	Path  string
	Shape Shape
}

// Match is the outcome of running a strategy list
type Match struct {
	Strategy Strategy
	Value    gjson.Result
}

// Found reports whether any strategy matched
func (m Match) Found() bool {
	return m.Strategy.Name != ""
}

// Run tries strategies in order against body
func Run(body []byte, strategies []Strategy) Match {
	if !gjson.ValidBytes(body) {
		return Match{}
	}
	for _, s := range strategies {
		v := gjson.GetBytes(body, s.Path)
		if v.Exists() && fits(v, s.Shape) {
			return Match{Strategy: s, Value: v}
		}
	}
	return Match{}
}

func fits(v gjson.Result, shape Shape) bool {
	switch shape {
	case ShapeArray:
		return v.IsArray()
	case ShapeObject:
		return v.IsObject()
	case ShapeNumber:
		if v.Type == gjson.Number {
			return true
		}
		if v.Type == gjson.String {
			_, err := strconv.Atoi(strings.TrimSpace(v.Str))
			return err == nil
		}
		return false
	case ShapeFlag:
		_, ok := FlagValue(v)
		return ok
	case ShapeString:
		return v.Type == gjson.String && strings.TrimSpace(v.Str) != ""
	}
	return false
}

// ListStrategies returns the lookup order for an array of records named key
func ListStrategies(key string) []Strategy {
	out := make([]Strategy, 0, 7)
	if key != "" {
		out = append(out,
			Strategy{"data.data." + key, "data.data." + esc(key), ShapeArray},
			Strategy{"data." + key, "data." + esc(key), ShapeArray},
			Strategy{key, esc(key), ShapeArray},
		)
	}
	return append(out,
		Strategy{"data.data", "data.data", ShapeArray},
		Strategy{"data.items", "data.items", ShapeArray},
		Strategy{"data", "data", ShapeArray},
		Strategy{"bare", "@this", ShapeArray},
	)
}

// ObjectStrategies returns the lookup order for a single record named key
func ObjectStrategies(key string) []Strategy {
	out := make([]Strategy, 0, 6)
	if key != "" {
		out = append(out,
			Strategy{"data.data." + key, "data.data." + esc(key), ShapeObject},
			Strategy{"data." + key, "data." + esc(key), ShapeObject},
			Strategy{key, esc(key), ShapeObject},
		)
	}
	return append(out,
		Strategy{"data.data", "data.data", ShapeObject},
		Strategy{"data", "data", ShapeObject},
		Strategy{"bare", "@this", ShapeObject},
	)
}

// Fields builds strategies for a scalar looked up under several containers.
// Each field name is tried in every container before moving to the next name.
func Fields(shape Shape, containers []string, names ...string) []Strategy {
	out := make([]Strategy, 0, len(containers)*len(names))
	for _, name := range names {
		for _, c := range containers {
			path := esc(name)
			if c != "" {
				path = c + "." + path
			}
			out = append(out, Strategy{Name: path, Path: path, Shape: shape})
		}
	}
	return out
}

// ResponseContainers are the usual wrappers a scalar may sit in
var ResponseContainers = []string{"data.data", "data", ""}

var metaContainers = []string{
	"data.metadata", "data.pagination", "data.meta",
	"metadata", "pagination", "meta",
	"data", "",
}

var (
	totalPagesStrategies = Fields(ShapeNumber, metaContainers, "numberOfPages", "pages", "totalPages", "total_pages")
	totalCountStrategies = Fields(ShapeNumber, metaContainers, "total", "count", "totalCount", "total_count")
	pageStrategies       = Fields(ShapeNumber, metaContainers, "currentPage", "current_page", "page")
)

// Meta is pagination metadata. Nil fields were not reported.
type Meta struct {
	Page       *int
	TotalPages *int
	TotalCount *int
}

// ExtractMeta probes body for pagination metadata
func ExtractMeta(body []byte) Meta {
	var m Meta
	if v, ok := Int(body, totalPagesStrategies); ok {
		m.TotalPages = &v
	}
	if v, ok := Int(body, totalCountStrategies); ok {
		m.TotalCount = &v
	}
	if v, ok := Int(body, pageStrategies); ok {
		m.Page = &v
	}
	return m
}

// Int runs strategies and converts the match to int
func Int(body []byte, strategies []Strategy) (int, bool) {
	m := Run(body, strategies)
	if !m.Found() {
		return 0, false
	}
	if m.Value.Type == gjson.String {
		n, err := strconv.Atoi(strings.TrimSpace(m.Value.Str))
		return n, err == nil
	}
	return int(m.Value.Int()), true
}

// Flag runs strategies and converts the match to a boolean
func Flag(body []byte, strategies []Strategy) (bool, bool) {
	m := Run(body, strategies)
	if !m.Found() {
		return false, false
	}
	return FlagValue(m.Value)
}

// String runs strategies and returns the first non-empty string
func String(body []byte, strategies []Strategy) (string, bool) {
	m := Run(body, strategies)
	if !m.Found() {
		return "", false
	}
	return m.Value.Str, true
}

var trueTokens = map[string]bool{
	"true": true, "yes": true, "1": true, "y": true, "on": true,
	"saved": true, "bookmarked": true, "liked": true, "following": true,
	"followed": true, "shared": true, "read": true,
}

var falseTokens = map[string]bool{
	"false": true, "no": true, "0": true, "n": true, "off": true,
	"unsaved": true, "unbookmarked": true, "removed": true, "unliked": true,
	"unfollowed": true, "not_following": true, "unshared": true, "unread": true,
}

// FlagValue interprets booleans, 0/1 and recognized string tokens
func FlagValue(v gjson.Result) (bool, bool) {
	switch v.Type {
	case gjson.True:
		return true, true
	case gjson.False:
		return false, true
	case gjson.Number:
		switch v.Num {
		case 1:
			return true, true
		case 0:
			return false, true
		}
	case gjson.String:
		token := strings.ToLower(strings.TrimSpace(v.Str))
		if trueTokens[token] {
			return true, true
		}
		if falseTokens[token] {
			return false, true
		}
	}
	return false, false
}

// FlagOf interprets an already-decoded value the same way FlagValue does
func FlagOf(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case float64:
		return FlagValue(gjson.Result{Type: gjson.Number, Num: t})
	case int:
		return FlagValue(gjson.Result{Type: gjson.Number, Num: float64(t)})
	case string:
		return FlagValue(gjson.Result{Type: gjson.String, Str: t})
	}
	return false, false
}

// esc escapes gjson path metacharacters in a literal key
func esc(key string) string {
	var sb strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', '!', '=', '<', '>', '%':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
