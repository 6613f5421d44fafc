package extractor

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractAdder(t *testing.T) {
	src := `module adder(input [7:0] a, input [7:0] b, output [7:0] sum);`

	got, err := Extract(src)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	want := Module{
		Name: "adder",
		Line: 1,
		Ports: []Port{
			{Direction: DirectionInput, Width: "[7:0]", Name: "a", Line: 1},
			{Direction: DirectionInput, Width: "[7:0]", Name: "b", Line: 1},
			{Direction: DirectionOutput, Width: "[7:0]", Name: "sum", Line: 1},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("module mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name         string
		src          string
		wantNoModule bool
		wantNoPorts  bool
	}{
		{name: "no module keyword", src: "input a;\noutput b;", wantNoModule: true},
		{name: "no direction keyword", src: "module foo;\nendmodule", wantNoPorts: true},
		{name: "empty source", src: "", wantNoModule: true, wantNoPorts: true},
		{name: "keyword inside identifier", src: "module foo(my_input x, inputs y);", wantNoPorts: true},
		{name: "submodule is not module", src: "submodule foo;\ninput a;", wantNoModule: true},
		{name: "module without name", src: "module (input a);", wantNoModule: true},
		{name: "direction keywords are case sensitive", src: "module foo(INPUT a, Output b);", wantNoPorts: true},
		{name: "direction without identifier", src: "module foo(input);", wantNoPorts: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.src)
			if err == nil {
				t.Fatalf("expected error for %q", tt.src)
			}
			if got := errors.Is(err, ErrModuleNotFound); got != tt.wantNoModule {
				t.Fatalf("errors.Is(ErrModuleNotFound) = %v, want %v (err: %v)", got, tt.wantNoModule, err)
			}
			if got := errors.Is(err, ErrNoPortsFound); got != tt.wantNoPorts {
				t.Fatalf("errors.Is(ErrNoPortsFound) = %v, want %v (err: %v)", got, tt.wantNoPorts, err)
			}
		})
	}
}

func TestExtractPreservesPortOrder(t *testing.T) {
	src := `module mixed (clk, data, ready, bus);
  input clk;
  inout [15:0] bus;
  output ready;
  input [3:0] data;
endmodule
`
	got, err := Extract(src)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	want := []Port{
		{Direction: DirectionInput, Name: "clk", Line: 2},
		{Direction: DirectionInout, Width: "[15:0]", Name: "bus", Line: 3},
		{Direction: DirectionOutput, Name: "ready", Line: 4},
		{Direction: DirectionInput, Width: "[3:0]", Name: "data", Line: 5},
	}
	if diff := cmp.Diff(want, got.Ports); diff != "" {
		t.Fatalf("ports mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractTypeQualifiers(t *testing.T) {
	src := `module alu(input [31:0] A, output reg [31:0] result, output reg zero_flag, input wire clk, input logic [3:0] sel);`

	got, err := Extract(src)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	want := []Port{
		{Direction: DirectionInput, Width: "[31:0]", Name: "A", Line: 1},
		{Direction: DirectionOutput, Name: "reg", Line: 1},
		{Direction: DirectionOutput, Name: "reg", Line: 1},
		{Direction: DirectionInput, Name: "wire", Line: 1},
		{Direction: DirectionInput, Name: "logic", Line: 1},
	}
	if diff := cmp.Diff(want, got.Ports); diff != "" {
		t.Fatalf("default ports mismatch (-want +got):\n%s", diff)
	}

	skipped, err := New(Options{SkipTypeQualifiers: true}).Extract(src)
	if err != nil {
		t.Fatalf("extract skipping qualifiers: %v", err)
	}
	want = []Port{
		{Direction: DirectionInput, Width: "[31:0]", Name: "A", Line: 1},
		{Direction: DirectionOutput, Width: "[31:0]", Name: "result", Line: 1},
		{Direction: DirectionOutput, Name: "zero_flag", Line: 1},
		{Direction: DirectionInput, Name: "clk", Line: 1},
		{Direction: DirectionInput, Width: "[3:0]", Name: "sel", Line: 1},
	}
	if diff := cmp.Diff(want, skipped.Ports); diff != "" {
		t.Fatalf("skipped ports mismatch (-want +got):\n%s", diff)
	}

	signed, err := New(Options{SkipTypeQualifiers: true}).Extract("module r(output reg signed [7:0] s);")
	if err != nil {
		t.Fatalf("extract signed: %v", err)
	}
	if len(signed.Ports) != 1 || signed.Ports[0].Name != "s" || signed.Ports[0].Width != "[7:0]" {
		t.Fatalf("expected s [7:0], got %#v", signed.Ports)
	}
}

func TestExtractCommaListsCaptureFirstNameOnly(t *testing.T) {
	src := "module m(input [7:0] a, b, output c);"

	got, err := Extract(src)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if names := portNames(got.Ports); !cmp.Equal(names, []string{"a", "c"}) {
		t.Fatalf("expected [a c], got %v", names)
	}

	split, err := New(Options{SplitPortLists: true}).Extract(src)
	if err != nil {
		t.Fatalf("extract with split lists: %v", err)
	}
	want := []Port{
		{Direction: DirectionInput, Width: "[7:0]", Name: "a", Line: 1},
		{Direction: DirectionInput, Width: "[7:0]", Name: "b", Line: 1},
		{Direction: DirectionOutput, Name: "c", Line: 1},
	}
	if diff := cmp.Diff(want, split.Ports); diff != "" {
		t.Fatalf("split ports mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractMultipleModules(t *testing.T) {
	src := `module first(input a);
endmodule
module second(output b);
endmodule
`
	got, err := Extract(src)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got.Name != "first" {
		t.Fatalf("expected first module name, got %q", got.Name)
	}
	if names := portNames(got.Ports); !cmp.Equal(names, []string{"a", "b"}) {
		t.Fatalf("file-wide scan should capture [a b], got %v", names)
	}
	if !cmp.Equal(got.AdditionalModules, []string{"second"}) {
		t.Fatalf("expected additional module second, got %v", got.AdditionalModules)
	}

	scoped, err := New(Options{ScopeToModule: true}).Extract(src)
	if err != nil {
		t.Fatalf("scoped extract: %v", err)
	}
	if names := portNames(scoped.Ports); !cmp.Equal(names, []string{"a"}) {
		t.Fatalf("scoped scan should capture [a], got %v", names)
	}
}

func TestExtractScopedWithoutPortsInFirstModule(t *testing.T) {
	src := "module first;\nendmodule\nmodule second(input x);\nendmodule\n"

	if _, err := Extract(src); err != nil {
		t.Fatalf("file-wide extract: %v", err)
	}
	_, err := New(Options{ScopeToModule: true}).Extract(src)
	if !errors.Is(err, ErrNoPortsFound) {
		t.Fatalf("expected ErrNoPortsFound, got %v", err)
	}
}

func TestExtractWidthTokens(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		wantWidth string
		wantName  string
	}{
		{name: "spaces kept verbatim", src: "module m(input [ 7 : 0 ] a);", wantWidth: "[ 7 : 0 ]", wantName: "a"},
		{name: "parameterized", src: "module m(input [W-1:0] data);", wantWidth: "[W-1:0]", wantName: "data"},
		{name: "nested brackets", src: "module m(input [a[1]:0] x);", wantWidth: "[a[1]:0]", wantName: "x"},
		{name: "no space after keyword", src: "module m(input[3:0] y);", wantWidth: "[3:0]", wantName: "y"},
		{name: "width on next line", src: "module m(\n  output\n  [1:0]\n  z);", wantWidth: "[1:0]", wantName: "z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.src)
			if err != nil {
				t.Fatalf("extract: %v", err)
			}
			if len(got.Ports) != 1 {
				t.Fatalf("expected 1 port, got %#v", got.Ports)
			}
			if got.Ports[0].Width != tt.wantWidth || got.Ports[0].Name != tt.wantName {
				t.Fatalf("expected %s %s, got %s %s", tt.wantWidth, tt.wantName, got.Ports[0].Width, got.Ports[0].Name)
			}
		})
	}
}

func TestExtractUnsupportedWidthsYieldNoPort(t *testing.T) {
	for _, src := range []string{
		"module m(input [] a);",
		"module m(input [3:0][7:0] a);",
	} {
		if _, err := Extract(src); !errors.Is(err, ErrNoPortsFound) {
			t.Fatalf("Extract(%q): expected ErrNoPortsFound, got %v", src, err)
		}
	}
}

func TestExtractIsIdempotent(t *testing.T) {
	src := "module dup(input clk, input rst, output [3:0] q);\nendmodule\n"

	first, err := Extract(src)
	if err != nil {
		t.Fatalf("first extract: %v", err)
	}
	second, err := Extract(src)
	if err != nil {
		t.Fatalf("second extract: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("extract not idempotent (-first +second):\n%s", diff)
	}
}

func portNames(ports []Port) []string {
	names := make([]string, 0, len(ports))
	for _, p := range ports {
		names = append(names, p.Name)
	}
	return names
}
