// Package feature defines the pluggable units a build is composed from.
//
// A Feature names the dependencies it needs and contributes one
// configuration fragment. Features are resolved by ID through a Registry,
// which binds each known ID to a Factory.
package feature

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aem-design/compose/internal/config"
	"github.com/aem-design/compose/internal/deps"
	"github.com/aem-design/compose/internal/errors"
	"github.com/aem-design/compose/internal/merge"
)

// ID identifies a feature.
type ID string

const (
	TypeScript ID = "typescript"
	Vue        ID = "vue"
	ESLint     ID = "eslint"
	StyleLint  ID = "stylelint"
	Analyzer   ID = "analyzer"
	Tailwind   ID = "tailwind"
)

// ParseIDs converts raw identifiers, as found in compose.json or on the
// command line, into IDs. Order and duplicates are preserved.
func ParseIDs(raw []string) []ID {
	ids := make([]ID, 0, len(raw))
	for _, s := range raw {
		ids = append(ids, ID(strings.TrimSpace(s)))
	}
	return ids
}

// ToolLocator reports where an installed tool binary lives.
type ToolLocator interface {
	Path(d deps.Descriptor) string
}

// Context is everything a factory may read while building a feature.
// It is constructed once per feature by the pipeline and never shared.
type Context struct {
	// Env holds the build-mode flags of the run.
	Env config.Environment

	// Paths are the resolved project paths.
	Paths config.Paths

	// Config is a private copy of the configuration accumulated so far.
	Config merge.Config

	// Registry is the path registry of the run.
	Registry *config.Registry

	// Configurables are the project's webpack configurables.
	Configurables *config.Configurables

	// Tools locates standalone binaries. Nil means tools are looked up on PATH.
	Tools ToolLocator
}

// Feature is one resolved, single-use feature instance.
type Feature interface {
	// Dependencies lists what must be present before the fragment is usable.
	Dependencies() []deps.Descriptor

	// Fragment returns the partial configuration this feature contributes.
	Fragment() merge.Config
}

// Factory builds a Feature for one pipeline iteration.
type Factory func(ctx Context) (Feature, error)

// ResolutionError reports a feature that could not be resolved, either
// because its ID is unknown or because its factory failed.
type ResolutionError struct {
	ID    ID
	Known []ID
	Err   error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("feature %q: %v", e.ID, e.Err)
	}
	known := make([]string, len(e.Known))
	for i, id := range e.Known {
		known[i] = string(id)
	}
	return fmt.Sprintf("unknown feature %q, available features are: %s", e.ID, strings.Join(known, ", "))
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Registry maps feature IDs to factories. The set of IDs is fixed when the
// registry is built, so it is safe for concurrent use.
type Registry struct {
	factories map[ID]Factory
}

// NewRegistry returns the registry of built-in features.
func NewRegistry() *Registry {
	return NewRegistryOf(map[ID]Factory{
		TypeScript: NewTypeScript,
		Vue:        NewVue,
		ESLint:     NewESLint,
		StyleLint:  NewStyleLint,
		Analyzer:   NewAnalyzer,
		Tailwind:   NewTailwind,
	})
}

// NewRegistryOf returns a registry holding exactly the given factories.
func NewRegistryOf(factories map[ID]Factory) *Registry {
	return &Registry{factories: maps.Clone(factories)}
}

// IDs returns the registered IDs in sorted order.
func (r *Registry) IDs() []ID {
	return slices.Sorted(maps.Keys(r.factories))
}

// Has reports whether id is registered.
func (r *Registry) Has(id ID) bool {
	_, ok := r.factories[id]
	return ok
}

// Resolve builds the feature registered under id. Failures carry a
// *ResolutionError: E200 for unknown IDs, E201 for factory errors.
func (r *Registry) Resolve(id ID, ctx Context) (Feature, error) {
	factory, ok := r.factories[id]

	if !ok {
		return nil, errors.New("E200").
			WithDetail("Unknown feature " + string(id)).
			Wrap(&ResolutionError{ID: id, Known: r.IDs()})
	}

	f, err := factory(ctx)
	if err != nil {
		return nil, errors.New("E201").
			WithDetail("Feature " + string(id) + " could not be constructed").
			Wrap(&ResolutionError{ID: id, Err: err})
	}
	return f, nil
}
