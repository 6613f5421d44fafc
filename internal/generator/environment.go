package generator

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/robert-at-pretension-io/verilog-tbgen/internal/extractor"
)

// Skeleton kinds emitted next to the interface
const (
	KindDriver   = "driver"
	KindMonitor  = "monitor"
	KindSequence = "sequence"
)

// SkeletonExt is the extension of every generated environment file
const SkeletonExt = ".sv"

var (
	interfaceTpl = template.Must(template.New("interface").Parse(
		`interface {{.Name}}_if;
{{- range .Ports}}
    logic {{with .Width}}{{.}} {{end}}{{.Name}};
{{- end}}
endinterface
`))

	classTpl = template.Must(template.New("class").Parse(
		`class {{.Module}}_{{.Kind}} extends uvm_{{.Kind}};
    // implement the {{.Kind}}
endclass
`))
)

type classData struct {
	Module string
	Kind   string
}

// Environment renders the interface, driver, monitor and sequence skeletons
// for m, keyed by file name. The map always has four entries.
func Environment(m extractor.Module) map[string]string {
	files := map[string]string{
		InterfaceFileName(m.Name): render(interfaceTpl, m),
	}
	for _, kind := range []string{KindDriver, KindMonitor, KindSequence} {
		files[ClassFileName(m.Name, kind)] = render(classTpl, classData{Module: m.Name, Kind: kind})
	}
	return files
}

// InterfaceFileName returns the interface skeleton file name for a module
func InterfaceFileName(module string) string {
	return module + "_if" + SkeletonExt
}

// ClassFileName returns the file name of a driver/monitor/sequence skeleton
func ClassFileName(module, kind string) string {
	return fmt.Sprintf("%s_%s%s", module, kind, SkeletonExt)
}

// render executes a package template. The templates and their inputs are
// fixed, so a failure is a programming error.
func render(tpl *template.Template, data any) string {
	var b strings.Builder
	if err := tpl.Execute(&b, data); err != nil {
		panic(fmt.Sprintf("generator: rendering %s: %v", tpl.Name(), err))
	}
	return b.String()
}
