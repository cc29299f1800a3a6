package main

import (
	"bytes"
	"os"
	"path/filepath"
	"text/template"

	"github.com/spf13/cobra"

	"github.com/aem-design/compose/internal/config"
	"github.com/aem-design/compose/internal/errors"
	"github.com/aem-design/compose/internal/feature"
)

// BaseFileName is the base configuration written by init.
const BaseFileName = "webpack.base.yaml"

var baseTemplate = template.Must(template.New(BaseFileName).Parse(`# Base webpack configuration for {{.Project}}.
# Features merge their fragments over this file in order.
module:
  rules: []
plugins: []
resolve:
  alias: {}
`))

func initCmd() *cobra.Command {
	var (
		project  string
		features []string
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create compose.json for a project",
		Long: `Create compose.json and a base webpack configuration in dir
(default: the current directory).

Examples:
  compose init
  compose init ui.frontend --project=site --features=typescript,vue,eslint`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(cmd, dir, project, features)
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "core", "Project name")
	cmd.Flags().StringSliceVarP(&features, "features", "f", []string{"typescript"}, "Features to enable, in order")

	return cmd
}

func runInit(cmd *cobra.Command, dir, project string, features []string) error {
	if config.Exists(dir) {
		return errors.New("E143").WithDetail(filepath.Join(dir, config.ConfigFileName) + " already exists")
	}

	known := feature.NewRegistry()
	for _, id := range feature.ParseIDs(features) {
		if !known.Has(id) {
			return errors.New("E200").
				WithDetail("Unknown feature: " + string(id)).
				WithSuggestion("Run 'compose features' to list the available features")
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := baseTemplate.Execute(&buf, struct{ Project string }{project}); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, BaseFileName), buf.Bytes(), 0644); err != nil {
		return err
	}

	cfg := config.New()
	cfg.Project = project
	cfg.Features = features
	cfg.Base = BaseFileName
	if err := cfg.SaveTo(filepath.Join(dir, config.ConfigFileName)); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	success(out, "Created %s", filepath.Join(dir, config.ConfigFileName))
	info(out, "Base configuration: %s", filepath.Join(dir, BaseFileName))
	info(out, "Run 'compose build' to compose the configuration")
	return nil
}
