package config

import "github.com/aem-design/compose/internal/errors"

// Mode is the webpack build mode.
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

// Environment holds the build-mode flags of one run. It is created once by
// SetupEnvironment and passed by value afterwards.
type Environment struct {
	Analyzer  bool
	Clean     bool
	ESLint    bool
	HMR       bool
	Maven     bool
	Mode      Mode
	Project   string
	StyleLint bool
	Watch     bool
}

// EnvOptions are the raw flags an Environment is derived from.
type EnvOptions struct {
	Analyzer  bool
	Clean     bool
	Dev       bool
	ESLint    bool
	Maven     bool
	Project   string
	StyleLint bool
	Watch     bool
}

// DefaultEnvOptions returns the flags used when nothing is specified.
func DefaultEnvOptions() EnvOptions {
	return EnvOptions{
		ESLint:    true,
		StyleLint: true,
	}
}

// SetupEnvironment derives the Environment for a run. Hot reload follows
// watch mode and the mode follows the dev flag. A project is required.
func SetupEnvironment(opts EnvOptions) (Environment, error) {
	env := Environment{
		Analyzer:  opts.Analyzer,
		Clean:     opts.Clean,
		ESLint:    opts.ESLint,
		HMR:       opts.Watch,
		Maven:     opts.Maven,
		Mode:      ModeProduction,
		Project:   opts.Project,
		StyleLint: opts.StyleLint,
		Watch:     opts.Watch,
	}
	if opts.Dev {
		env.Mode = ModeDevelopment
	}

	if env.Project == "" {
		return Environment{}, errors.New("E121").
			WithDetail("No project was specified.").
			WithSuggestion(`Specify a project when running the build, e.g. --project=core or "project": "core" in compose.json`)
	}

	return env, nil
}

// Development reports whether env builds in development mode.
func (e Environment) Development() bool {
	return e.Mode == ModeDevelopment
}
