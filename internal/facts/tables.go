package facts

import (
	"sort"

	"github.com/robert-at-pretension-io/verilog-tbgen/internal/extractor"
)

// Tables is the relational fact model of a set of extracted sources.
// Each slice is a relation (table) with flat rows.
type Tables struct {
	Files   []FileRow   `json:"files"`
	Modules []ModuleRow `json:"modules"`
	Ports   []PortRow   `json:"ports"`
}

type FileRow struct {
	Path   string `json:"path"`
	Module string `json:"module"`
}

// ModuleRow is one module declaration. Only the primary module of a file
// carries a line and ports; later declarations are recorded by name.
type ModuleRow struct {
	Name    string `json:"name"`
	File    string `json:"file"`
	Line    int    `json:"line,omitempty"`
	Primary bool   `json:"primary"`
}

type PortRow struct {
	Module    string `json:"module"`
	Position  int    `json:"position"`
	Name      string `json:"name"`
	Direction string `json:"direction"`
	Width     string `json:"width"`
	Bits      int    `json:"bits"`
	File      string `json:"file"`
	Line      int    `json:"line"`
}

// FileModule pairs a source path with the module extracted from it
type FileModule struct {
	File   string
	Module extractor.Module
}

// BuildTables converts extracted modules into a normalized relational model.
// Rows are sorted so the output is stable regardless of processing order.
func BuildTables(sources []FileModule) Tables {
	tables := Tables{
		Files:   []FileRow{},
		Modules: []ModuleRow{},
		Ports:   []PortRow{},
	}

	seenFiles := make(map[string]bool)
	for _, src := range sources {
		if seenFiles[src.File] {
			continue
		}
		seenFiles[src.File] = true
		m := src.Module

		tables.Files = append(tables.Files, FileRow{Path: src.File, Module: m.Name})
		tables.Modules = append(tables.Modules, ModuleRow{
			Name:    m.Name,
			File:    src.File,
			Line:    m.Line,
			Primary: true,
		})
		for _, name := range m.AdditionalModules {
			tables.Modules = append(tables.Modules, ModuleRow{Name: name, File: src.File})
		}

		for i, p := range m.Ports {
			tables.Ports = append(tables.Ports, PortRow{
				Module:    m.Name,
				Position:  i,
				Name:      p.Name,
				Direction: string(p.Direction),
				Width:     p.Width,
				Bits:      p.Bits(),
				File:      src.File,
				Line:      p.Line,
			})
		}
	}

	sortTables(&tables)
	return tables
}

func sortTables(t *Tables) {
	sort.Slice(t.Files, func(i, j int) bool {
		return t.Files[i].Path < t.Files[j].Path
	})
	sort.SliceStable(t.Modules, func(i, j int) bool {
		a, b := t.Modules[i], t.Modules[j]
		if a.File != b.File {
			return a.File < b.File
		}
		// primary first, later declarations keep source order
		return a.Primary && !b.Primary
	})
	sort.SliceStable(t.Ports, func(i, j int) bool {
		a, b := t.Ports[i], t.Ports[j]
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Position < b.Position
	})
}
