package facts

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/robert-at-pretension-io/verilog-tbgen/internal/extractor"
)

func TestBuildTablesPopulatesCoreRelations(t *testing.T) {
	sources := []FileModule{
		{
			File: "rtl/z.v",
			Module: extractor.Module{
				Name:              "z",
				Line:              2,
				Ports:             []extractor.Port{{Direction: extractor.DirectionInput, Width: "[3:0]", Name: "d", Line: 3}},
				AdditionalModules: []string{"z_helper"},
			},
		},
		{
			File: "rtl/a.v",
			Module: extractor.Module{
				Name: "a",
				Line: 1,
				Ports: []extractor.Port{
					{Direction: extractor.DirectionOutput, Name: "y", Line: 1},
					{Direction: extractor.DirectionInput, Width: "[N:0]", Name: "x", Line: 1},
				},
			},
		},
		{File: "rtl/a.v", Module: extractor.Module{Name: "dup"}},
	}

	tables := BuildTables(sources)

	wantFiles := []FileRow{{Path: "rtl/a.v", Module: "a"}, {Path: "rtl/z.v", Module: "z"}}
	if diff := cmp.Diff(wantFiles, tables.Files); diff != "" {
		t.Fatalf("files mismatch (-want +got):\n%s", diff)
	}

	wantModules := []ModuleRow{
		{Name: "a", File: "rtl/a.v", Line: 1, Primary: true},
		{Name: "z", File: "rtl/z.v", Line: 2, Primary: true},
		{Name: "z_helper", File: "rtl/z.v"},
	}
	if diff := cmp.Diff(wantModules, tables.Modules); diff != "" {
		t.Fatalf("modules mismatch (-want +got):\n%s", diff)
	}

	wantPorts := []PortRow{
		{Module: "a", Position: 0, Name: "y", Direction: "output", Bits: 1, File: "rtl/a.v", Line: 1},
		{Module: "a", Position: 1, Name: "x", Direction: "input", Width: "[N:0]", Bits: 0, File: "rtl/a.v", Line: 1},
		{Module: "z", Position: 0, Name: "d", Direction: "input", Width: "[3:0]", Bits: 4, File: "rtl/z.v", Line: 3},
	}
	if diff := cmp.Diff(wantPorts, tables.Ports); diff != "" {
		t.Fatalf("ports mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildTablesEmpty(t *testing.T) {
	tables := BuildTables(nil)
	if tables.Files == nil || tables.Modules == nil || tables.Ports == nil {
		t.Fatalf("expected empty, non-nil relations for JSON output")
	}
}
