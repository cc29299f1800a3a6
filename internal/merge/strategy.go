package merge

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Strategy describes how a fragment value is combined with the accumulated
// value at the same path.
type Strategy string

const (
	// Append concatenates the accumulated sequence followed by the fragment's.
	Append Strategy = "append"

	// Prepend concatenates the fragment sequence followed by the accumulated one.
	Prepend Strategy = "prepend"

	// Replace overwrites the accumulated value with the fragment's.
	Replace Strategy = "replace"
)

// ParseStrategy converts a string into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case Append:
		return Append, nil
	case Prepend:
		return Prepend, nil
	case Replace:
		return Replace, nil
	}
	return "", fmt.Errorf("unknown merge strategy %q (expected append, prepend or replace)", s)
}

// Table maps dotted configuration paths to merge strategies.
type Table map[string]Strategy

// DefaultTable returns the strategies used when a project declares none.
func DefaultTable() Table {
	return Table{
		"module.rules": Append,
		"plugins":      Append,
	}
}

// Lookup returns the strategy for path and whether the table lists it.
// Unlisted paths report Replace.
func (t Table) Lookup(path string) (Strategy, bool) {
	s, ok := t[path]
	if !ok {
		return Replace, false
	}
	return s, true
}

// With returns a copy of t with overrides applied on top.
func (t Table) With(overrides Table) Table {
	out := make(Table, len(t)+len(overrides))
	maps.Copy(out, t)
	maps.Copy(out, overrides)
	return out
}

// Paths returns the listed paths in sorted order.
func (t Table) Paths() []string {
	return slices.Sorted(maps.Keys(t))
}

// ParseTable converts a raw path to strategy mapping, as found in a project
// file, into a Table.
func ParseTable(raw map[string]string) (Table, error) {
	out := make(Table, len(raw))
	for _, path := range slices.Sorted(maps.Keys(raw)) {
		s, err := ParseStrategy(raw[path])
		if err != nil {
			return nil, fmt.Errorf("merge strategy for %s: %w", path, err)
		}
		out[path] = s
	}
	return out, nil
}
