package generator

import (
	"sort"

	"github.com/robert-at-pretension-io/verilog-tbgen/internal/extractor"
)

// File is one generated text artifact
type File struct {
	Name    string
	Content string
}

// ArtifactSet is everything generated for one module
type ArtifactSet struct {
	TestbenchName string            `json:"testbench_name"`
	Testbench     string            `json:"testbench"`
	Skeletons     map[string]string `json:"skeletons"`
}

// Generate renders the testbench and the environment skeletons for m with
// the default options
func Generate(m extractor.Module) ArtifactSet {
	return New(Options{}).Generate(m)
}

// Generate renders the testbench and the environment skeletons for m
func (g *Generator) Generate(m extractor.Module) ArtifactSet {
	return ArtifactSet{
		TestbenchName: TestbenchFileName(m.Name),
		Testbench:     g.Testbench(m),
		Skeletons:     Environment(m),
	}
}

// TestbenchFileName returns the testbench file name for a module
func TestbenchFileName(module string) string {
	return module + "_tb" + SkeletonExt
}

// Files lists the testbench first, then the skeletons sorted by name
func (a ArtifactSet) Files() []File {
	files := []File{{Name: a.TestbenchName, Content: a.Testbench}}

	names := make([]string, 0, len(a.Skeletons))
	for name := range a.Skeletons {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		files = append(files, File{Name: name, Content: a.Skeletons[name]})
	}
	return files
}
