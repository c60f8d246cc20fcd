package builtin

import (
	"fmt"
	"math"
)

// Options are the decoded options of one configured step.
type Options map[string]any

// String returns key as a string or def when absent.
func (o Options) String(key, def string) (string, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", invalidType(key, "string")
	}
	return s, nil
}

// Bool returns key as a bool or def when absent.
func (o Options) Bool(key string, def bool) (bool, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, invalidType(key, "bool")
	}
	return b, nil
}

// Int returns key as an int or def when absent.
func (o Options) Int(key string, def int) (int, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return def, nil
	}
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case float64:
		if x == math.Trunc(x) {
			return int(x), nil
		}
	case interface{ Int64() (int64, error) }:
		if n, err := x.Int64(); err == nil {
			return int(n), nil
		}
	case interface{ IsInt64() bool }:
		if x.IsInt64() {
			if n, ok := v.(interface{ Int64() int64 }); ok {
				return int(n.Int64()), nil
			}
		}
	}
	return 0, invalidType(key, "int")
}

// Strings accepts a single string or a list of strings.
func (o Options) Strings(key string) ([]string, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch x := v.(type) {
	case string:
		return []string{x}, nil
	case []string:
		return append([]string(nil), x...), nil
	case []any:
		out := make([]string, 0, len(x))
		for _, it := range x {
			s, ok := it.(string)
			if !ok {
				return nil, invalidType(key, "list of strings")
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, invalidType(key, "list of strings")
}

// StringMap returns key as a string-to-string mapping.
func (o Options) StringMap(key string) (map[string]string, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch x := v.(type) {
	case map[string]string:
		out := make(map[string]string, len(x))
		for k, s := range x {
			out[k] = s
		}
		return out, nil
	case map[string]any:
		out := make(map[string]string, len(x))
		for k, it := range x {
			s, ok := it.(string)
			if !ok {
				return nil, invalidType(key+"."+k, "string")
			}
			out[k] = s
		}
		return out, nil
	}
	return nil, invalidType(key, "mapping of strings")
}

// List returns key as a list of option mappings.
func (o Options) List(key string) ([]Options, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, invalidType(key, "list")
	}
	out := make([]Options, 0, len(items))
	for i, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			return nil, invalidType(fmt.Sprintf("%s[%d]", key, i), "mapping")
		}
		out = append(out, Options(m))
	}
	return out, nil
}

// Sub returns key as a nested mapping, empty when absent.
func (o Options) Sub(key string) (Options, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return Options{}, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, invalidType(key, "mapping")
	}
	return Options(m), nil
}

func invalidType(key, want string) error {
	return fmt.Errorf("invalid type for option: %s (expected %s)", key, want)
}
