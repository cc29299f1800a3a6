package config

import (
	"maps"
	"slices"
	"sync"
)

// Project describes the bundles one project produces.
type Project struct {
	// Entries maps entry names to files relative to the project source path.
	Entries map[string]string `json:"entries,omitempty" yaml:"entries,omitempty"`

	// OutputName is the clientlib name the bundles are written under.
	OutputName string `json:"outputName,omitempty" yaml:"outputName,omitempty"`
}

// DefaultProjects returns the project map used when none is configured.
func DefaultProjects() map[string]Project {
	return map[string]Project{
		"core": {
			Entries:    map[string]string{"core": "js/core.js"},
			OutputName: "core",
		},
	}
}

// Projects is the set of projects a build may target.
type Projects struct {
	mu     sync.RWMutex
	byName map[string]Project
}

// NewProjects returns a set holding the default projects.
func NewProjects() *Projects {
	return &Projects{byName: DefaultProjects()}
}

// SetProjects replaces the project map. An empty map restores the defaults.
func (p *Projects) SetProjects(projects map[string]Project) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(projects) == 0 {
		p.byName = DefaultProjects()
		return
	}
	p.byName = maps.Clone(projects)
}

// Project returns the named project.
func (p *Projects) Project(name string) (Project, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	proj, ok := p.byName[name]
	return proj, ok
}

// Names returns the project names in sorted order.
func (p *Projects) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Sorted(maps.Keys(p.byName))
}
