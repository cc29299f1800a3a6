package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/aem-design/compose/internal/build"
	"github.com/aem-design/compose/internal/config"
	"github.com/aem-design/compose/internal/errors"
	"github.com/aem-design/compose/internal/pipeline"
)

// envFlags are the environment flags shared by build and serve.
type envFlags struct {
	watch       bool
	dev         bool
	analyzer    bool
	clean       bool
	noESLint    bool
	noStyleLint bool
	maven       bool
	project     string
	features    []string
	skipInstall bool
}

func (f *envFlags) register(fs *pflag.FlagSet) {
	fs.BoolVar(&f.watch, "watch", false, "Watch mode (enables hot module replacement)")
	fs.BoolVar(&f.dev, "dev", false, "Compose a development configuration")
	fs.BoolVar(&f.analyzer, "analyzer", false, "Enable the bundle analyzer report")
	fs.BoolVar(&f.clean, "clean", false, "Clean output directory before writing")
	fs.BoolVar(&f.noESLint, "no-eslint", false, "Disable the eslint feature")
	fs.BoolVar(&f.noStyleLint, "no-stylelint", false, "Disable the stylelint feature")
	fs.BoolVar(&f.maven, "maven", false, "Resolve paths from the Maven project")
	fs.StringVarP(&f.project, "project", "p", "", "Project to compose (default from compose.json)")
	fs.StringSliceVarP(&f.features, "features", "f", nil, "Features to compose, in order (default from compose.json)")
	fs.BoolVar(&f.skipInstall, "skip-install", false, "Treat every dependency as already installed")
}

func (f *envFlags) options() build.Options {
	env := config.DefaultEnvOptions()
	env.Analyzer = f.analyzer
	env.Clean = f.clean
	env.Dev = f.dev
	env.Maven = f.maven
	env.Project = f.project
	env.Watch = f.watch
	if f.noESLint {
		env.ESLint = false
	}
	if f.noStyleLint {
		env.StyleLint = false
	}

	return build.Options{
		Env:         env,
		Features:    f.features,
		SkipInstall: f.skipInstall,
	}
}

func buildCmd() *cobra.Command {
	var flags envFlags

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compose and write the webpack configuration",
		Long: `Compose the webpack configuration of a project and write it to the
output directory.

This command:
  • Installs missing dependencies of every enabled feature
  • Merges feature fragments over the base configuration
  • Writes webpack.config.json and manifest.json

When dependencies were just installed nothing is written; run the same
command again to continue.

Examples:
  compose build
  compose build --project=site --dev
  compose build --features=typescript,vue --no-eslint`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), flags.options())
		},
	}

	flags.register(cmd.Flags())

	return cmd
}

func runBuild(ctx context.Context, stdout, stderr io.Writer, opts build.Options) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	opts.OnProgress = progress(stdout)
	builder := build.New(cfg, opts)

	result, err := builder.Build(ctx)
	if err != nil {
		return err
	}

	return reportBuild(stdout, stderr, result)
}

// reportBuild prints the outcome of a build and maps its status to the
// process exit code.
func reportBuild(stdout, stderr io.Writer, result *build.Result) error {
	switch result.Status {
	case pipeline.Completed:
		fmt.Fprintln(stdout)
		success(stdout, "Composed in %s", result.Duration.Round(time.Millisecond))
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, "  Output:")
		fmt.Fprintf(stdout, "    %s\n", result.ConfigPath)
		fmt.Fprintf(stdout, "    %s  (%s)\n", result.ManifestPath, shortHash(result.Hash))
		fmt.Fprintln(stdout)
		return nil

	case pipeline.RestartNeeded:
		warn(stdout, pipeline.RestartMessage)
		return nil

	default:
		errorMsg(stderr, "Failed to install dependencies")
		if result.Err != nil {
			errors.PrintError(stderr, result.Err)
		}
		return &exitError{code: result.Status.ExitCode()}
	}
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

// progress prints build steps verbatim.
func progress(w io.Writer) func(string) {
	return func(step string) {
		info(w, "%s", step)
	}
}
