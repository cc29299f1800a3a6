package config

import (
	"slices"
	"sync"

	"github.com/aem-design/compose/internal/errors"
)

// Configurable names.
const (
	AssetFilters      = "assetFilters"
	ResolveExtensions = "resolveExtensions"
)

// Configurables are webpack values a project may extend before features run.
type Configurables struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigurables returns configurables holding their default values.
func NewConfigurables() *Configurables {
	return &Configurables{
		values: map[string]any{
			AssetFilters:      []string{"fontawesome.*"},
			ResolveExtensions: []string{".js"},
		},
	}
}

// Set assigns value to name. List values are appended to the current list,
// anything else replaces it.
func (c *Configurables) Set(name string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok := c.values[name]
	if !ok {
		return errors.New("E221").WithDetail("Unable to update webpack configurable " + name + " as it is invalid")
	}

	if incoming, ok := value.([]string); ok {
		if existing, ok := current.([]string); ok {
			c.values[name] = append(slices.Clone(existing), incoming...)
			return nil
		}
	}
	c.values[name] = value
	return nil
}

// Get returns the value stored for name.
func (c *Configurables) Get(name string) (any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.values[name]
	if !ok {
		return nil, errors.New("E221").WithDetail("Unable to get webpack configurable " + name + " as it is invalid")
	}
	if s, ok := v.([]string); ok {
		return slices.Clone(s), nil
	}
	return v, nil
}

// Strings returns a list configurable, or nil if name is not a list.
func (c *Configurables) Strings(name string) []string {
	v, err := c.Get(name)
	if err != nil {
		return nil
	}
	s, _ := v.([]string)
	return s
}
