package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/verilog-tbgen/internal/pipeline"
)

func newGenerateCmd(a *app) *cobra.Command {
	opts := pipeline.Options{Mode: pipeline.ModeGenerate}

	cmd := &cobra.Command{
		Use:   "generate <path>",
		Short: "Write a testbench and verification skeletons for each module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.runPipeline(cmd, args[0], opts)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, fr := range res.Files {
				if fr.Module == nil {
					continue
				}
				fmt.Fprintf(w, "%s %s\n", titleStyle.Render(fr.Module.Name), subtitleStyle.Render(fr.Path))
				if opts.DryRun {
					for _, f := range fr.Artifacts {
						fmt.Fprintf(w, "  %s %s\n", subtitleStyle.Render("would write"), f.Name)
					}
				}
				for _, path := range fr.Written {
					fmt.Fprintf(w, "  %s %s\n", successStyle.Render("✓"), path)
				}
				printViolations(w, fr.Violations)
			}
			printFileErrors(cmd.ErrOrStderr(), res)

			fmt.Fprintf(w, "%d modules, %d files written\n", res.Summary.Modules, res.Summary.Written)
			return failedFiles(res)
		},
	}

	cmd.Flags().StringVarP(&opts.OutputDir, "out", "o", "", "output directory (default: next to each source)")
	cmd.Flags().BoolVar(&opts.NoEnvironment, "no-env", false, "only write the testbench, skip the environment skeletons")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "render without writing files")
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "overwrite existing files")
	cmd.Flags().StringVar(&opts.TimingPath, "timing", "", "write per-stage timing records to this JSONL file")

	return cmd
}
