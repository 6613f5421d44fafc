package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/verilog-tbgen/internal/config"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a " + config.FileName + " configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := config.FileName

			if _, err := os.Stat(configPath); err == nil && !force {
				return fmt.Errorf("config file %s already exists (use --force to overwrite)", configPath)
			}

			cfg := config.DefaultConfig()
			if err := cfg.Save(configPath); err != nil {
				return fmt.Errorf("creating config: %w", err)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s Created %s\n", successStyle.Render("✓"), configPath)
			fmt.Fprintln(w, "\nEdit this file to configure:")
			fmt.Fprintln(w, "  - Source file patterns")
			fmt.Fprintln(w, "  - Output directory and overwrite behavior")
			fmt.Fprintln(w, "  - Lint rule severities")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing config file")
	return cmd
}
