package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/verilog-tbgen/internal/facts"
	"github.com/robert-at-pretension-io/verilog-tbgen/internal/pipeline"
)

func newExtractCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "extract <path>",
		Short: "Show the module name and ports captured from each source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.runPipeline(cmd, args[0], pipeline.Options{Mode: pipeline.ModeExtract})
			if err != nil {
				return err
			}

			var sources []facts.FileModule
			for _, fr := range res.Files {
				if fr.Module != nil {
					sources = append(sources, facts.FileModule{File: fr.Path, Module: *fr.Module})
				}
			}

			w := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				if err := enc.Encode(facts.BuildTables(sources)); err != nil {
					return fmt.Errorf("encoding facts: %w", err)
				}
			} else {
				for _, src := range sources {
					m := src.Module
					fmt.Fprintf(w, "%s %s\n", titleStyle.Render(m.Name), subtitleStyle.Render(fmt.Sprintf("%s:%d", src.File, m.Line)))
					for _, p := range m.Ports {
						fmt.Fprintf(w, "  %-6s %-12s %s\n", p.Direction, p.Width, p.Name)
					}
					for _, other := range m.AdditionalModules {
						fmt.Fprintf(w, "  %s %s\n", warningStyle.Render("also declares"), other)
					}
				}
			}

			printFileErrors(cmd.ErrOrStderr(), res)
			return failedFiles(res)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit files/modules/ports fact tables as JSON")
	return cmd
}
