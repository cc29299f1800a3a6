// Package deps decides whether the packages and tools a feature needs are
// present and installs the missing ones.
//
// An Installer reports one Outcome per call. Skipped means nothing was
// missing. RestartRequired means packages were added to the project and the
// running build has a stale module graph. Installed means something was
// installed that does not affect the running process, such as a standalone
// tool binary.
package deps

import (
	"context"
	"fmt"
)

// Kind classifies a dependency.
type Kind int

const (
	// Dev is a development-only package (devDependencies).
	Dev Kind = iota

	// Runtime is a package the built bundle needs (dependencies).
	Runtime

	// Tool is a standalone executable downloaded into a bin directory.
	Tool
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case Dev:
		return "dev"
	case Runtime:
		return "runtime"
	case Tool:
		return "tool"
	default:
		return "unknown"
	}
}

// Descriptor identifies a package or tool a feature requires.
type Descriptor struct {
	// Name is the package or tool name (e.g., "ts-loader").
	Name string

	// Version is an optional version or range (e.g., "^9.4.0").
	Version string

	// Kind is the dependency kind.
	Kind Kind

	// Source is the download base URL for Tool dependencies.
	Source string
}

// Spec returns the package manager argument for d ("name" or "name@version").
func (d Descriptor) Spec() string {
	if d.Version == "" {
		return d.Name
	}
	return d.Name + "@" + d.Version
}

// String implements fmt.Stringer.
func (d Descriptor) String() string {
	return fmt.Sprintf("%s (%s)", d.Spec(), d.Kind)
}

// Outcome is the result of one installation call.
type Outcome int

const (
	// Installed means dependencies were installed and the process may continue.
	Installed Outcome = iota

	// Skipped means every dependency was already satisfied.
	Skipped

	// RestartRequired means packages were just added and the build must be
	// invoked again.
	RestartRequired
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case Installed:
		return "installed"
	case Skipped:
		return "skipped"
	case RestartRequired:
		return "restart_required"
	default:
		return "unknown"
	}
}

// Installer ensures a list of dependencies is present.
//
// Implementations must not partially install: either every requested
// dependency ends up present or an error is returned.
type Installer interface {
	Install(ctx context.Context, deps []Descriptor) (Outcome, error)
}

// InstallerFunc adapts a function to the Installer interface.
type InstallerFunc func(ctx context.Context, deps []Descriptor) (Outcome, error)

// Install calls f.
func (f InstallerFunc) Install(ctx context.Context, deps []Descriptor) (Outcome, error) {
	return f(ctx, deps)
}

// Combine merges the outcomes of installers that served parts of one
// request. Restarts dominate installs, installs dominate skips.
func Combine(outcomes ...Outcome) Outcome {
	result := Skipped
	for _, o := range outcomes {
		switch {
		case o == RestartRequired:
			return RestartRequired
		case o == Installed:
			result = Installed
		}
	}
	return result
}
