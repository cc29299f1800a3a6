package feature

import (
	"slices"

	"github.com/aem-design/compose/internal/config"
	"github.com/aem-design/compose/internal/merge"
)

// plugin describes a webpack plugin instance in a composed configuration.
func plugin(name string, options map[string]any) map[string]any {
	p := map[string]any{"plugin": name}
	if options != nil {
		p["options"] = options
	}
	return p
}

// extensions returns the resolve.extensions already composed, falling back
// to the resolveExtensions configurable, with extra appended once each.
func extensions(ctx Context, extra ...string) []any {
	var current []string

	if v, ok := merge.Get(ctx.Config, "resolve.extensions"); ok {
		switch list := v.(type) {
		case []string:
			current = slices.Clone(list)
		case []any:
			for _, item := range list {
				if s, ok := item.(string); ok {
					current = append(current, s)
				}
			}
		}
	} else if ctx.Configurables != nil {
		current = ctx.Configurables.Strings(config.ResolveExtensions)
	}

	for _, ext := range extra {
		if !slices.Contains(current, ext) {
			current = append(current, ext)
		}
	}

	out := make([]any, len(current))
	for i, s := range current {
		out[i] = s
	}
	return out
}

// hasLoader reports whether a composed module rule already uses loader.
func hasLoader(c merge.Config, loader string) bool {
	v, ok := merge.Get(c, "module.rules")
	if !ok {
		return false
	}
	rules, ok := v.([]any)
	if !ok {
		return false
	}
	for _, r := range rules {
		rule, ok := r.(map[string]any)
		if ok && rule["loader"] == loader {
			return true
		}
	}
	return false
}
