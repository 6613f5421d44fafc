package extractor

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var (
	// ErrModuleNotFound is returned when the source has no "module <name>" declaration
	ErrModuleNotFound = errors.New("module not found")

	// ErrNoPortsFound is returned when no direction keyword yields a port anywhere in the source
	ErrNoPortsFound = errors.New("no ports found")
)

// Direction is a port direction keyword
type Direction string

const (
	DirectionInput  Direction = "input"
	DirectionOutput Direction = "output"
	DirectionInout  Direction = "inout"
)

// Port represents one declared module port
type Port struct {
	Direction Direction `json:"direction"`
	Width     string    `json:"width"` // literal bracket token, e.g. "[31:0]"; empty for single-bit
	Name      string    `json:"name"`
	Line      int       `json:"line"`
}

// IsBus reports whether the port carries a width token
func (p Port) IsBus() bool {
	return p.Width != ""
}

// Bits returns the number of bits described by the width token.
// Single-bit ports are 1 wide. Ranges that are not plain integers
// (parameters, expressions) return 0.
func (p Port) Bits() int {
	if p.Width == "" {
		return 1
	}
	if len(p.Width) < 2 {
		return 0
	}
	inner := p.Width[1 : len(p.Width)-1]
	msb, lsb, ok := strings.Cut(inner, ":")
	if !ok {
		return 0
	}
	hi, err := strconv.Atoi(strings.TrimSpace(msb))
	if err != nil {
		return 0
	}
	lo, err := strconv.Atoi(strings.TrimSpace(lsb))
	if err != nil {
		return 0
	}
	if hi < lo {
		hi, lo = lo, hi
	}
	return hi - lo + 1
}

// Module is the structural description extracted from one source text
type Module struct {
	Name  string `json:"name"`
	Line  int    `json:"line"`
	Ports []Port `json:"ports"`

	// AdditionalModules names the module declarations after the first one.
	// Their ports are still captured in Ports because the scan is file-wide.
	AdditionalModules []string `json:"additional_modules,omitempty"`
}

// Options tunes the port scan. The zero value scans the whole text and
// captures the identifier right after each direction keyword and its
// optional width, so "output reg q" yields a port named "reg".
type Options struct {
	// ScopeToModule limits the port scan to the first module, up to its endmodule
	ScopeToModule bool

	// SplitPortLists also captures comma-continued names ("input a, b;")
	SplitPortLists bool

	// SkipTypeQualifiers steps over net/variable keywords (wire, reg, logic...)
	// between the direction and the width or name
	SkipTypeQualifiers bool
}

// Extractor turns Verilog source text into a Module
type Extractor struct {
	opts Options
}

// New creates an Extractor with the given options
func New(opts Options) *Extractor {
	return &Extractor{opts: opts}
}

// Extract parses source with default options
func Extract(source string) (Module, error) {
	return New(Options{}).Extract(source)
}

// ExtractFile reads a file and extracts its module description
func (e *Extractor) ExtractFile(filePath string) (Module, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return Module{}, fmt.Errorf("reading file: %w", err)
	}
	return e.Extract(string(content))
}

// Extract scans source and returns the first module's name with every port
// declaration found. The result is built fresh on every call.
func (e *Extractor) Extract(source string) (Module, error) {
	tokens := scan(source)

	mod, body, found := findModules(tokens)

	scope := tokens
	if found && e.opts.ScopeToModule {
		scope = tokens[body:moduleEnd(tokens, body)]
	}
	ports := e.scanPorts(scope)

	switch {
	case !found && len(ports) == 0:
		return Module{}, fmt.Errorf("%w; %w", ErrModuleNotFound, ErrNoPortsFound)
	case !found:
		return Module{}, ErrModuleNotFound
	case len(ports) == 0:
		return Module{}, fmt.Errorf("module %s: %w", mod.Name, ErrNoPortsFound)
	}

	mod.Ports = ports
	return mod, nil
}

// findModules locates the first "module <name>" and records later declarations.
// body is the index of the first token after the module name.
func findModules(tokens []token) (mod Module, body int, found bool) {
	for i := range tokens {
		name, ok := matchModule(tokens, i)
		if !ok {
			continue
		}
		if !found {
			mod.Name = name
			mod.Line = tokens[i].line
			body = i + 2
			found = true
			continue
		}
		mod.AdditionalModules = append(mod.AdditionalModules, name)
	}
	return mod, body, found
}

// moduleEnd returns the index of the first endmodule at or after start,
// or len(tokens) when the module is never closed.
func moduleEnd(tokens []token, start int) int {
	for i := start; i < len(tokens); i++ {
		if tokens[i].kind == tokenWord && tokens[i].text == keywordEndModule {
			return i
		}
	}
	return len(tokens)
}

func (e *Extractor) scanPorts(tokens []token) []Port {
	var ports []Port
	for i := 0; i < len(tokens); i++ {
		dir, ok := matchDirection(tokens[i])
		if !ok {
			continue
		}
		found, next := e.portAt(tokens, i, dir)
		if len(found) == 0 {
			continue
		}
		ports = append(ports, found...)
		i = next - 1
	}
	return ports
}

// portAt reads "<direction> [width] name" starting at the direction keyword
// tokens[at], stepping over type qualifiers when enabled. It returns the
// captured ports and the index after them.
func (e *Extractor) portAt(tokens []token, at int, dir Direction) ([]Port, int) {
	line := tokens[at].line
	j := at + 1
	if e.opts.SkipTypeQualifiers {
		for j < len(tokens) && isTypeQualifier(tokens[j]) {
			j++
		}
	}

	width := ""
	if j < len(tokens) && tokens[j].kind == tokenBracket {
		width = strings.TrimSpace(tokens[j].text)
		if width == "[]" {
			return nil, at + 1
		}
		j++
	}

	// A second bracket group (packed multi-dimension) is not supported.
	if j >= len(tokens) || tokens[j].kind != tokenWord {
		return nil, at + 1
	}

	ports := []Port{{Direction: dir, Width: width, Name: tokens[j].text, Line: line}}
	j++

	if e.opts.SplitPortLists {
		for j+1 < len(tokens) && isPunct(tokens[j], ",") && continuesList(tokens[j+1]) {
			ports = append(ports, Port{Direction: dir, Width: width, Name: tokens[j+1].text, Line: tokens[j+1].line})
			j += 2
		}
	}

	return ports, j
}

// continuesList reports whether tok is another identifier of the same declaration
func continuesList(tok token) bool {
	if tok.kind != tokenWord || isTypeQualifier(tok) {
		return false
	}
	_, isDirection := matchDirection(tok)
	return !isDirection
}
