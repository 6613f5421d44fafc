// =============================================================================
// vlog-tbgen - Main Entry Point
// =============================================================================
//
// Turns a Verilog module declaration into a simulation testbench shell and a
// set of verification-environment skeletons.
//
// THE PIPELINE:
//   1. Scanner tokenizes the source (words, bracket groups, punctuation)
//   2. Extractor captures the first module name and every port declaration
//   3. CUE validator enforces the module contract
//   4. OPA evaluates lint rules (clock/reset heuristics, duplicate ports...)
//   5. Generator renders <module>_tb.sv and the _if/_driver/_monitor/_sequence files
//   6. CUE validator checks the artifact set, then the files are written
//
// WHEN A TESTBENCH LOOKS WRONG:
//   Run "vlog-tbgen extract" first. A wrong port list is an extraction issue,
//   not a generator issue.
// =============================================================================

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
)

func versionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

func main() {
	root := newRootCmd(&app{})
	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
