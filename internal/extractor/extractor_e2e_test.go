package extractor

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestExtractorE2ECounter(t *testing.T) {
	fixture := fixturePath(t, "counter.v")

	mod, err := New(Options{}).ExtractFile(fixture)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	if mod.Name != "counter" || mod.Line != 3 {
		t.Fatalf("expected module counter on line 3, got %q on line %d", mod.Name, mod.Line)
	}
	if len(mod.Ports) != 5 {
		t.Fatalf("expected 5 ports, got %d: %#v", len(mod.Ports), mod.Ports)
	}

	assertPort(t, mod.Ports, "clk", DirectionInput, "", 4)
	assertPort(t, mod.Ports, "rst_n", DirectionInput, "", 5)
	assertPort(t, mod.Ports, "enable", DirectionInput, "", 6)
	assertPort(t, mod.Ports, "count", DirectionOutput, "[15:0]", 7)
	assertPort(t, mod.Ports, "overflow", DirectionOutput, "", 8)
}

func TestExtractorE2EMultiModuleFile(t *testing.T) {
	fixture := fixturePath(t, "bus_bridge.sv")

	mod, err := New(Options{SkipTypeQualifiers: true}).ExtractFile(fixture)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if mod.Name != "bus_bridge" {
		t.Fatalf("expected bus_bridge, got %q", mod.Name)
	}
	if len(mod.Ports) != 7 {
		t.Fatalf("file-wide scan: expected 7 ports, got %d: %#v", len(mod.Ports), mod.Ports)
	}
	assertPort(t, mod.Ports, "wdata", DirectionInput, "[WIDTH-1:0]", 4)
	assertPort(t, mod.Ports, "pad", DirectionInout, "[7:0]", 6)
	assertPort(t, mod.Ports, "ready", DirectionOutput, "", 13)
	if len(mod.AdditionalModules) != 1 || mod.AdditionalModules[0] != "bus_bridge_stub" {
		t.Fatalf("expected additional module bus_bridge_stub, got %v", mod.AdditionalModules)
	}

	scoped, err := New(Options{ScopeToModule: true, SkipTypeQualifiers: true}).ExtractFile(fixture)
	if err != nil {
		t.Fatalf("scoped extract: %v", err)
	}
	if len(scoped.Ports) != 5 {
		t.Fatalf("scoped scan: expected 5 ports, got %d: %#v", len(scoped.Ports), scoped.Ports)
	}
}

func TestExtractorE2EQualifiersCapturedByDefault(t *testing.T) {
	mod, err := New(Options{}).ExtractFile(fixturePath(t, "bus_bridge.sv"))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	assertPort(t, mod.Ports, "logic", DirectionInput, "", 2)
	assertPort(t, mod.Ports, "wire", DirectionInout, "", 6)
	for _, p := range mod.Ports {
		if p.Name == "wdata" || p.Name == "pad" {
			t.Fatalf("qualified port %s must not be captured by default", p.Name)
		}
	}
}

func TestExtractorE2ENoPorts(t *testing.T) {
	_, err := New(Options{}).ExtractFile(fixturePath(t, "no_ports.v"))
	if !errors.Is(err, ErrNoPortsFound) {
		t.Fatalf("expected ErrNoPortsFound, got %v", err)
	}
}

func TestExtractorE2EMissingFile(t *testing.T) {
	_, err := New(Options{}).ExtractFile(filepath.Join(t.TempDir(), "missing.v"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	if errors.Is(err, ErrModuleNotFound) || errors.Is(err, ErrNoPortsFound) {
		t.Fatalf("read failure must not look like an extraction failure: %v", err)
	}
}

func fixturePath(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join("..", "..", "testdata", "verilog", name)
	abs, err := filepath.Abs(path)
	if err != nil {
		t.Fatalf("abs path: %v", err)
	}
	return abs
}

func assertPort(t *testing.T, ports []Port, name string, direction Direction, width string, line int) {
	t.Helper()
	for _, p := range ports {
		if p.Name == name {
			if p.Direction != direction {
				t.Fatalf("port %s direction: expected %q, got %q", name, direction, p.Direction)
			}
			if p.Width != width {
				t.Fatalf("port %s width: expected %q, got %q", name, width, p.Width)
			}
			if p.Line != line {
				t.Fatalf("port %s line: expected %d, got %d", name, line, p.Line)
			}
			return
		}
	}
	t.Fatalf("port %s not found in %#v", name, ports)
}
