// Package typeconv provides numeric and boolean coercions used when checking
// raw config values against the schema and decoding validated JSON trees into
// config structs.
package typeconv

import (
	"fmt"
	"reflect"
)

// ToInt converts a decoded JSON scalar (float64, int, json.Number-free) to an int.
// JSON numbers decode to float64 by default, so override patches and raw config
// maps carry float64 even for fields the schema calls "int"; this is the single
// place that narrowing happens.
func ToInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("cannot convert %v to int: not a whole number", v)
		}
		return int(v), nil
	case float32:
		return ToInt(float64(v))
	default:
		rv := reflect.ValueOf(value)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return int(rv.Int()), nil
		case reflect.Float32, reflect.Float64:
			return ToInt(rv.Float())
		default:
			return 0, fmt.Errorf("cannot convert %T to int", value)
		}
	}
}

// IsWholeNumber reports whether value decodes to an integral JSON number,
// matching the source format's "floats are not permitted in config" rule.
func IsWholeNumber(value any) bool {
	switch v := value.(type) {
	case int, int64:
		return true
	case float64:
		return v == float64(int64(v))
	case float32:
		return float64(v) == float64(int64(v))
	default:
		return false
	}
}

// ToBool coerces a decoded JSON scalar to bool.
func ToBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	default:
		return false, fmt.Errorf("cannot convert %T to bool", value)
	}
}

// KindName returns the schema type-table name ("string", "int", "bool",
// "list", "mapping") for a decoded JSON value, mirroring the source's
// type(value).__name__ checks used for "Invalid type for keyword" messages.
func KindName(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case map[string]any:
		return "mapping"
	case []any:
		return "list"
	case int, int64:
		_ = v
		return "int"
	case float64:
		if IsWholeNumber(v) {
			return "int"
		}
		return "float"
	case float32:
		if IsWholeNumber(v) {
			return "int"
		}
		return "float"
	default:
		return reflect.TypeOf(value).String()
	}
}
