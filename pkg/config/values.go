package config

import (
	"fmt"
	"time"
)

// Stored values arrive as float64 from JSON and as int from YAML; these
// helpers accept both.

func intValue(key string, value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("invalid value for %s: %v is not a whole number", key, v)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("invalid value type for %s: expected number, got %T", key, value)
	}
}

func stringValue(key string, value interface{}) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("invalid value type for %s: expected string, got %T", key, value)
	}
	return s, nil
}

func boolValue(key string, value interface{}) (bool, error) {
	b, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("invalid value type for %s: expected bool, got %T", key, value)
	}
	return b, nil
}

func stringSliceValue(key string, value interface{}) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []string:
		return append([]string(nil), v...), nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("invalid value type for %s[%d]: expected string, got %T", key, i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("invalid value type for %s: expected list of strings, got %T", key, value)
	}
}

func durationValue(key string, value interface{}) (time.Duration, error) {
	switch v := value.(type) {
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid duration string for %s: %w", key, err)
		}
		return d, nil
	case float64:
		return time.Duration(v), nil
	case int:
		return time.Duration(v), nil
	case int64:
		return time.Duration(v), nil
	default:
		return 0, fmt.Errorf("invalid value type for %s: expected string or number, got %T", key, value)
	}
}
