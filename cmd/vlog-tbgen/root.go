package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/verilog-tbgen/internal/config"
)

// app carries the global flags shared by every subcommand
type app struct {
	verbose bool
	cfgFile string
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "vlog-tbgen",
		Short: "Generate testbenches and verification skeletons from Verilog modules",
		Long: titleStyle.Render("vlog-tbgen") + subtitleStyle.Render(" - Verilog testbench generator") + `

vlog-tbgen reads the first module declaration of a Verilog or SystemVerilog
file, captures its ports and emits a testbench shell plus interface, driver,
monitor and sequence skeletons.

` + subtitleStyle.Render("Examples:") + `
  vlog-tbgen generate rtl/adder.v          Write adder_tb.sv and skeletons next to the source
  vlog-tbgen generate rtl --out sim        Process every source under rtl/ into sim/
  vlog-tbgen extract rtl/adder.v           Show the captured ports
  vlog-tbgen lint rtl                      Report clock/reset and port findings
  vlog-tbgen components --describe "alu"   Print a library component`,
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose output")
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default: ./tbgen.json, then ~/.config/tbgen/config.json)")

	root.AddCommand(newGenerateCmd(a))
	root.AddCommand(newExtractCmd(a))
	root.AddCommand(newLintCmd(a))
	root.AddCommand(newComponentsCmd())
	root.AddCommand(newInitCmd())

	return root
}

// loadConfig honours --config, otherwise searches around target
func (a *app) loadConfig(target string) (*config.Config, error) {
	if a.cfgFile != "" {
		cfg, err := config.LoadFile(a.cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config %s: %w", a.cfgFile, err)
		}
		return cfg, nil
	}

	root := target
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		root = filepath.Dir(target)
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func (a *app) logger(w io.Writer) *log.Logger {
	level := log.WarnLevel
	if a.verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: "vlog-tbgen",
		Level:  level,
	})
}
