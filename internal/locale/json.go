package locale

import (
	"encoding/json"
	"strings"
)

// List and Object are the decoded shapes of catalog JSON fields.
type (
	List   []interface{}
	Object map[string]interface{}
)

// EmptyList and EmptyObject are returned when a field is blank or cannot
// be decoded. They encode as [] and {} rather than null.
func EmptyList() List     { return List{} }
func EmptyObject() Object { return Object{} }

// ParseOr decodes raw into a T, returning fallback when raw is blank or
// malformed. Legacy catalog rows contain hand-edited JSON, so decoding
// failures are absorbed here instead of failing the request.
func ParseOr[T any](raw string, fallback T) T {
	if strings.TrimSpace(raw) == "" {
		return fallback
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return fallback
	}
	return v
}

// ParseList decodes a JSON array. A JSON null also yields the empty list.
func ParseList(raw string) List {
	l := ParseOr(raw, EmptyList())
	if l == nil {
		return EmptyList()
	}
	return l
}

func ParseObject(raw string) Object {
	o := ParseOr(raw, EmptyObject())
	if o == nil {
		return EmptyObject()
	}
	return o
}

// PickList selects the locale variant first and then decodes it.
func PickList(loc, en, es string) List {
	return ParseList(Pick(loc, en, es))
}

func PickObject(loc, en, es string) Object {
	return ParseObject(Pick(loc, en, es))
}
