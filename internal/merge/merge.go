package merge

import (
	"maps"
	"reflect"
	"slices"
	"strings"
)

// Config is a webpack configuration or a fragment of one.
type Config map[string]any

// Merge returns a new configuration holding fragment folded into acc
// according to table. Neither acc nor fragment is modified.
//
// Merging the same fragment twice is idempotent for Replace paths and
// duplicates entries for Append and Prepend paths.
func Merge(acc, fragment Config, table Table) Config {
	out := Clone(acc)
	if out == nil {
		out = Config{}
	}
	mergeInto(out, fragment, "", table)
	return out
}

func mergeInto(dst, src map[string]any, prefix string, table Table) {
	for _, key := range slices.Sorted(maps.Keys(src)) {
		path := joinPath(prefix, key)
		value := cloneValue(src[key])
		existing, exists := dst[key]

		strategy, listed := table.Lookup(path)
		if !listed && exists {
			dm, dok := asMap(existing)
			sm, sok := asMap(value)
			if dok && sok {
				mergeInto(dm, sm, path, table)
				dst[key] = dm
				continue
			}
		}

		if exists && strategy != Replace {
			if cur, ok := asSlice(existing); ok {
				if next, ok := asSlice(value); ok {
					if strategy == Append {
						dst[key] = concat(cur, next)
					} else {
						dst[key] = concat(next, cur)
					}
					continue
				}
			}
		}

		dst[key] = value
	}
}

func concat(a, b []any) []any {
	out := make([]any, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// Clone returns a deep copy of c.
func Clone(c Config) Config {
	if c == nil {
		return nil
	}
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch tv := v.(type) {
	case Config:
		return map[string]any(Clone(tv))
	case map[string]any:
		return map[string]any(Clone(Config(tv)))
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = cloneValue(e)
		}
		return out
	}
	if s, ok := asSlice(v); ok {
		return cloneValue(s)
	}
	return v
}

// asMap reports whether v is an object and returns it as a plain map.
func asMap(v any) (map[string]any, bool) {
	switch tv := v.(type) {
	case Config:
		return map[string]any(tv), true
	case map[string]any:
		return tv, true
	}
	return nil, false
}

// asSlice reports whether v is a sequence. Typed slices such as []string
// are widened to []any so they can be concatenated with decoded values.
func asSlice(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// Get returns the value at a dotted path.
func Get(c Config, path string) (any, bool) {
	var cur any = map[string]any(c)
	for _, part := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Set stores v at a dotted path, creating intermediate objects as needed.
// It modifies c in place and is meant for building fragments.
func Set(c Config, path string, v any) {
	parts := strings.Split(path, ".")
	cur := map[string]any(c)
	for _, part := range parts[:len(parts)-1] {
		next, ok := asMap(cur[part])
		if !ok {
			next = map[string]any{}
			cur[part] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = v
}

// Strip returns a copy of c without the given dotted paths.
func Strip(c Config, paths []string) Config {
	out := Clone(c)
	for _, path := range paths {
		parts := strings.Split(path, ".")
		cur := map[string]any(out)
		for _, part := range parts[:len(parts)-1] {
			next, ok := asMap(cur[part])
			if !ok {
				cur = nil
				break
			}
			cur = next
		}
		if cur != nil {
			delete(cur, parts[len(parts)-1])
		}
	}
	return out
}
