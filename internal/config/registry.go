package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// Key is a configuration registry key.
type Key string

const (
	MavenParent    Key = "maven.parent"
	MavenProject   Key = "maven.project"
	PathClientlibs Key = "paths.clientlibs"
	PathPublic     Key = "paths.public"
	PathPublicAEM  Key = "paths.public.aem"
	PathSource     Key = "paths.source"
)

// Keys returns every valid registry key in declaration order.
func Keys() []Key {
	return []Key{MavenParent, MavenProject, PathClientlibs, PathPublic, PathPublicAEM, PathSource}
}

// ReferenceError reports access to a key outside the registry's key set.
type ReferenceError struct {
	// Op is "get" or "set".
	Op string

	// Key is the offending key.
	Key Key
}

// Error implements the error interface.
func (e *ReferenceError) Error() string {
	valid := make([]string, 0, len(Keys()))
	for _, k := range Keys() {
		valid = append(valid, string(k))
	}
	return fmt.Sprintf("unable to %s configuration for %s as it isn't a valid configuration key. Available configuration keys to use are:\n%s",
		e.Op, e.Key, strings.Join(valid, ", "))
}

// Registry holds path configuration for one run. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	values map[Key]string
}

// NewRegistry creates a registry with defaults resolved against workingDir.
func NewRegistry(workingDir string) *Registry {
	return &Registry{
		values: map[Key]string{
			MavenParent:   filepath.Join(workingDir, "..", "pom.xml"),
			MavenProject:  filepath.Join(workingDir, "pom.xml"),
			PathPublic:    filepath.Join(workingDir, "public"),
			PathPublicAEM: "/",
			PathSource:    filepath.Join(workingDir, "src"),
		},
	}
}

// Valid reports whether key belongs to the registry's key set.
func Valid(key Key) bool {
	return slices.Contains(Keys(), key)
}

// Get returns the value stored for key. Keys without a value return "".
func (r *Registry) Get(key Key) (string, error) {
	if !Valid(key) {
		return "", &ReferenceError{Op: "get", Key: key}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.values[key], nil
}

// Set stores value for key.
func (r *Registry) Set(key Key, value string) error {
	if !Valid(key) {
		return &ReferenceError{Op: "set", Key: key}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = value
	return nil
}

// ProjectPath returns the path stored for key joined with the project name.
func (r *Registry) ProjectPath(key Key, project string) (string, error) {
	base, err := r.Get(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(base, project), nil
}

// Paths are the filesystem locations of one project, as handed to features.
type Paths struct {
	Source     string
	Public     string
	PublicAEM  string
	Clientlibs string
}

// RuntimePaths resolves the per-project paths used by features.
func (r *Registry) RuntimePaths(project string) (Paths, error) {
	source, err := r.ProjectPath(PathSource, project)
	if err != nil {
		return Paths{}, err
	}
	public, err := r.ProjectPath(PathPublic, project)
	if err != nil {
		return Paths{}, err
	}
	aem, err := r.Get(PathPublicAEM)
	if err != nil {
		return Paths{}, err
	}
	clientlibs, err := r.Get(PathClientlibs)
	if err != nil {
		return Paths{}, err
	}
	return Paths{
		Source:     source,
		Public:     public,
		PublicAEM:  aem,
		Clientlibs: clientlibs,
	}, nil
}
