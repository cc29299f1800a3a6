// Package merge folds configuration fragments into an accumulated webpack
// configuration.
//
// Configurations are plain nested maps as produced by encoding/json or
// gopkg.in/yaml.v3. Every nested key is addressed by a dotted path such as
// "resolve.extensions". A Table maps paths to a Strategy:
//
//	table := merge.DefaultTable() // module.rules and plugins append
//	next := merge.Merge(acc, fragment, table)
//
// Paths without an entry use Replace. Nested objects without an entry are
// merged key by key, so two fragments may each contribute a different key of
// the same object. Merge never mutates its inputs.
package merge
