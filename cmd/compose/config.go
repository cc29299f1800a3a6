package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aem-design/compose/internal/config"
	"github.com/aem-design/compose/internal/errors"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and change configuration registry values",
		Long: `Read and change the configuration registry of the project.

Values set here are stored in the "paths" section of compose.json.

Examples:
  compose config keys
  compose config get paths.public
  compose config set paths.clientlibs ../ui.apps/src/main/content/jcr_root/apps/site/clientlibs`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "keys",
			Short: "List valid configuration keys",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				for _, key := range config.Keys() {
					fmt.Fprintln(cmd.OutOrStdout(), key)
				}
			},
		},
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print the resolved value of a key",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.LoadFromWorkingDir()
				if err != nil {
					return err
				}
				reg, err := cfg.Registry()
				if err != nil {
					return err
				}
				value, err := reg.Get(config.Key(args[0]))
				if err != nil {
					return errors.New("E220").Wrap(err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Store a value for a key in compose.json",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runConfigSet(cmd, config.Key(args[0]), args[1])
			},
		},
	)

	return cmd
}

func runConfigSet(cmd *cobra.Command, key config.Key, value string) error {
	if !config.Valid(key) {
		return errors.New("E220").Wrap(&config.ReferenceError{Op: "set", Key: key})
	}

	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}
	if cfg.Paths == nil {
		cfg.Paths = make(map[string]string)
	}
	cfg.Paths[string(key)] = value

	if err := cfg.Save(); err != nil {
		return err
	}
	success(cmd.OutOrStdout(), "%s = %s", key, value)
	return nil
}
