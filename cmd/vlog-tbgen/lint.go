package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/verilog-tbgen/internal/pipeline"
	"github.com/robert-at-pretension-io/verilog-tbgen/internal/policy"
)

// lintReport is the JSON shape of "lint --json"
type lintReport struct {
	Violations []policy.Violation `json:"violations"`
	Summary    policy.Summary     `json:"summary"`
	Errors     []string           `json:"errors,omitempty"`

	// ContractErrors holds "path: message" for every module contract failure
	ContractErrors []string `json:"contract_errors,omitempty"`
}

func newLintCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "lint <path>",
		Short: "Report findings about the extracted modules",
		Long: `Evaluates the built-in rules against every extracted module.
Exits with status 1 when a finding has severity "error" or a file fails to extract.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.runPipeline(cmd, args[0], pipeline.Options{Mode: pipeline.ModeLint})
			if err != nil {
				return err
			}

			report := newLintReport(res)

			w := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return fmt.Errorf("encoding report: %w", err)
				}
			} else {
				printViolations(w, report.Violations)
				printFileErrors(cmd.ErrOrStderr(), res)
				printLintSummary(w, report.Summary)
			}

			if report.Summary.Errors > 0 {
				return &exitError{Code: 1, Err: fmt.Errorf("%d lint errors", report.Summary.Errors)}
			}
			return failedFiles(res)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit violations and summary as JSON")
	return cmd
}

func newLintReport(res *pipeline.Result) lintReport {
	report := lintReport{Violations: []policy.Violation{}, Summary: res.Summary.Lint}
	for _, fr := range res.Files {
		report.Violations = append(report.Violations, fr.Violations...)
		if fr.Error != "" {
			report.Errors = append(report.Errors, fr.Error)
		}
		for _, msg := range fr.ContractErrors {
			report.ContractErrors = append(report.ContractErrors, fr.Path+": "+msg)
		}
	}
	return report
}
