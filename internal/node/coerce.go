package node

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

func asString(name string, value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	}
	return "", fmt.Errorf("%s: expected %s, got %T", name, TypeString, value)
}

func asFloat(name string, value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%s: %w", name, err)
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("%s: expected %s, got %q", name, TypeFloat, v)
		}
		return f, nil
	}
	return 0, fmt.Errorf("%s: expected %s, got %T", name, TypeFloat, value)
}

func asBool(name string, value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, fmt.Errorf("%s: expected %s, got %q", name, TypeBoolean, v)
		}
		return b, nil
	}
	return false, fmt.Errorf("%s: expected %s, got %T", name, TypeBoolean, value)
}

// coerce converts value to the Go type matching t.
func coerce(name string, t ValueType, value any) (any, error) {
	switch t {
	case TypeString:
		return asString(name, value)
	case TypeFloat:
		return asFloat(name, value)
	case TypeBoolean:
		return asBool(name, value)
	}
	return nil, fmt.Errorf("%s: unsupported type %s", name, t)
}
