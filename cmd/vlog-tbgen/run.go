package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/verilog-tbgen/internal/pipeline"
	"github.com/robert-at-pretension-io/verilog-tbgen/internal/policy"
)

// runPipeline loads the configuration for path and runs it through the pipeline
func (a *app) runPipeline(cmd *cobra.Command, path string, opts pipeline.Options) (*pipeline.Result, error) {
	cfg, err := a.loadConfig(path)
	if err != nil {
		return nil, err
	}

	runner, err := pipeline.New(cmd.Context(), cfg, a.logger(cmd.ErrOrStderr()), opts)
	if err != nil {
		return nil, err
	}
	return runner.Run(cmd.Context(), path)
}

// failedFiles turns per-file failures into exit status 1
func failedFiles(res *pipeline.Result) error {
	if res.Summary.Failed == 0 {
		return nil
	}
	return &exitError{Code: 1, Err: fmt.Errorf("%d of %d files failed", res.Summary.Failed, res.Summary.Files)}
}

func printFileErrors(w io.Writer, res *pipeline.Result) {
	for _, fr := range res.Files {
		if fr.Error != "" {
			fmt.Fprintf(w, "%s %s\n", errorStyle.Render("✗"), fr.Error)
		}
		for _, msg := range fr.ContractErrors {
			fmt.Fprintf(w, "    %s\n", msg)
		}
	}
}

func printViolations(w io.Writer, violations []policy.Violation) {
	for _, v := range violations {
		label := severityStyle(v.Severity).Render(fmt.Sprintf("%-7s", v.Severity))
		fmt.Fprintf(w, "  %s %s:%d %s %s\n", label, v.File, v.Line, subtitleStyle.Render("["+v.Rule+"]"), v.Message)
	}
}

func printLintSummary(w io.Writer, s policy.Summary) {
	fmt.Fprintf(w, "%d findings: %s, %s, %s\n",
		s.TotalViolations,
		errorStyle.Render(fmt.Sprintf("%d errors", s.Errors)),
		warningStyle.Render(fmt.Sprintf("%d warnings", s.Warnings)),
		infoStyle.Render(fmt.Sprintf("%d info", s.Info)),
	)
}
