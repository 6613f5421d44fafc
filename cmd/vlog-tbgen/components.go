package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/verilog-tbgen/internal/components"
)

func newComponentsCmd() *cobra.Command {
	var (
		describe string
		outFile  string
		list     bool
	)

	cmd := &cobra.Command{
		Use:   "components [names...]",
		Short: "Print Verilog templates from the built-in component library",
		Long: `Prints the selected library components (alu, ram, register, control_unit).
Components are selected by name or by keywords found in --describe text and
are always emitted in library order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if list {
				for _, c := range components.All() {
					fmt.Fprintf(w, "%-13s %s\n", titleStyle.Render(c.Name), c.Title)
				}
				return nil
			}

			names := append([]string{}, args...)
			if describe != "" {
				names = append(names, components.Match(describe)...)
			}

			text, err := components.Render(names)
			if err != nil {
				return err
			}

			if outFile == "" {
				fmt.Fprint(w, text)
				return nil
			}
			if err := os.WriteFile(outFile, []byte(text), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", outFile, err)
			}
			fmt.Fprintf(w, "%s %s\n", successStyle.Render("✓"), outFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&describe, "describe", "d", "", "free-text description; components whose keywords appear are selected")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "write to this file instead of stdout")
	cmd.Flags().BoolVar(&list, "list", false, "list available components")
	return cmd
}
