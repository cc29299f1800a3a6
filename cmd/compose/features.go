package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/aem-design/compose/internal/config"
	"github.com/aem-design/compose/internal/feature"
)

func featuresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "features",
		Short: "List available features",
		Long: `List the features the composer knows about. Features enabled in
compose.json are marked with their position in the composition order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()

			var configured []feature.ID
			if cfg, err := config.LoadFromWorkingDir(); err == nil {
				configured = feature.ParseIDs(cfg.Features)
			}

			fmt.Fprintln(w, "  Available features:")
			for _, id := range feature.NewRegistry().IDs() {
				if i := slices.Index(configured, id); i >= 0 {
					fmt.Fprintf(w, "    \033[32m%d\033[0m %s\n", i+1, id)
					continue
				}
				fmt.Fprintf(w, "    - %s\n", id)
			}
			return nil
		},
	}
}
