package utils

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONText is a JSON document stored in a text column and emitted verbatim
// in API responses.
type JSONText string

func (j JSONText) Value() (driver.Value, error) {
	if j == "" {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSONText) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*j = ""
	case string:
		*j = JSONText(v)
	case []byte:
		*j = JSONText(v)
	default:
		return fmt.Errorf("JSONText: unsupported type %T", src)
	}
	return nil
}

func (j JSONText) MarshalJSON() ([]byte, error) {
	if j == "" || !json.Valid([]byte(j)) {
		return []byte("null"), nil
	}
	return []byte(j), nil
}

func (j *JSONText) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*j = ""
		return nil
	}
	*j = JSONText(b)
	return nil
}

// GormDataType maps the type to a text column.
func (JSONText) GormDataType() string {
	return "text"
}

// ToJSONText marshals v; nil yields an empty document.
func ToJSONText(v interface{}) (JSONText, error) {
	if v == nil {
		return "", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return JSONText(b), nil
}
