// Package generator turns an extracted module description into testbench and
// verification-environment text. Every function here is a pure mapping from
// data to text; nothing is written to disk.
package generator

import (
	"fmt"
	"strings"

	"github.com/robert-at-pretension-io/verilog-tbgen/internal/extractor"
)

const (
	// Timescale is the first line of every generated testbench
	Timescale = "`timescale 1ns/1ps"

	// InstanceName is the instance label of the device under test
	InstanceName = "uut"

	// ClockHalfPeriod is the delay between clock toggles, in time units
	ClockHalfPeriod = 5

	// ResetHold is how long the reset stays asserted, in time units
	ResetHold = 10

	clockPrefix = "clk"
	resetPrefix = "rst"

	indent  = "    "
	indent2 = indent + indent
)

// activeLowSuffixes mark reset names that assert at logic 0
var activeLowSuffixes = []string{"_n", "_ni", "_b"}

// Options tunes the rendered text. The zero value asserts every reset at 1
// and releases it at 0.
type Options struct {
	// InferResetPolarity drives resets named like IsActiveLow to 0 first
	InferResetPolarity bool
}

// Generator renders artifacts with fixed options
type Generator struct {
	opts Options
}

// New returns a generator using opts
func New(opts Options) *Generator {
	return &Generator{opts: opts}
}

// Testbench renders the testbench shell for m with the default options
func Testbench(m extractor.Module) string {
	return New(Options{}).Testbench(m)
}

// Testbench renders the testbench shell for m
func (g *Generator) Testbench(m extractor.Module) string {
	var lines []string

	lines = append(lines, Timescale, fmt.Sprintf("module %s_tb;", m.Name), "")

	lines = append(lines, indent+"// signals")
	for _, p := range m.Ports {
		lines = append(lines, indent+declaration(p))
	}
	lines = append(lines, "")

	lines = append(lines, indent+"// device under test", fmt.Sprintf("%s%s %s (", indent, m.Name, InstanceName))
	lines = append(lines, connections(m.Ports)...)
	lines = append(lines, indent+");", "")

	if clk, ok := ClockPort(m.Ports); ok {
		lines = append(lines,
			indent+"// clock",
			fmt.Sprintf("%sinitial %s = 1'b0;", indent, clk.Name),
			fmt.Sprintf("%salways #%d %s = ~%s;", indent, ClockHalfPeriod, clk.Name, clk.Name),
			"",
		)
	}

	if rst, ok := ResetPort(m.Ports); ok {
		asserted, released := g.resetLevels(rst)
		lines = append(lines,
			indent+"// reset",
			indent+"initial begin",
			fmt.Sprintf("%s%s = %s;", indent2, rst.Name, asserted),
			fmt.Sprintf("%s#%d %s = %s;", indent2, ResetHold, rst.Name, released),
			indent+"end",
			"",
		)
	}

	// Wiring the virtual interface is left to the user.
	lines = append(lines,
		indent+"// verification environment",
		indent+"initial begin",
		indent2+`uvm_config_db#(virtual interface).set(this, "", "vif", vif);`,
		indent2+"run_test();",
		indent+"end",
		"",
		"endmodule",
		"",
	)

	return strings.Join(lines, "\n")
}

// ClockPort returns the first port whose name starts with "clk", ignoring case
func ClockPort(ports []extractor.Port) (extractor.Port, bool) {
	return firstWithPrefix(ports, clockPrefix)
}

// ResetPort returns the first port whose name starts with "rst", ignoring case
func ResetPort(ports []extractor.Port) (extractor.Port, bool) {
	return firstWithPrefix(ports, resetPrefix)
}

// IsActiveLow reports whether a reset named like p asserts at logic 0
func IsActiveLow(p extractor.Port) bool {
	name := strings.ToLower(p.Name)
	for _, suffix := range activeLowSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

func firstWithPrefix(ports []extractor.Port, prefix string) (extractor.Port, bool) {
	for _, p := range ports {
		if strings.HasPrefix(strings.ToLower(p.Name), prefix) {
			return p, true
		}
	}
	return extractor.Port{}, false
}

func (g *Generator) resetLevels(p extractor.Port) (asserted, released string) {
	if g.opts.InferResetPolarity && IsActiveLow(p) {
		return "1'b0", "1'b1"
	}
	return "1'b1", "1'b0"
}

// declaration maps inputs to reg (driven by the testbench) and everything
// else to wire.
func declaration(p extractor.Port) string {
	kind := "wire"
	if p.Direction == extractor.DirectionInput {
		kind = "reg"
	}
	if !p.IsBus() {
		return fmt.Sprintf("%s %s;", kind, p.Name)
	}
	return fmt.Sprintf("%s %s %s;", kind, p.Width, p.Name)
}

// connections returns one named connection per port; the last has no comma.
func connections(ports []extractor.Port) []string {
	lines := make([]string, 0, len(ports))
	for i, p := range ports {
		line := fmt.Sprintf("%s.%s(%s)", indent2, p.Name, p.Name)
		if i < len(ports)-1 {
			line += ","
		}
		lines = append(lines, line)
	}
	return lines
}
