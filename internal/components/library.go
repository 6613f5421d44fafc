// Package components holds the static Verilog building blocks that can be
// emitted on request. The text is fixed and never derived from parsed input.
package components

import (
	"embed"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

//go:embed templates/*.v
var templatesFS embed.FS

var (
	// ErrUnknownComponent is returned for a name outside the library
	ErrUnknownComponent = errors.New("unknown component")

	// ErrNoSelection is returned when nothing was selected
	ErrNoSelection = errors.New("no component selected")
)

// Component is one library entry
type Component struct {
	Name     string
	Title    string
	Keywords []string
	file     string
}

// library is kept in emission order
var library = []Component{
	{Name: "alu", Title: "32-bit ALU", Keywords: []string{"alu"}, file: "alu.v"},
	{Name: "ram", Title: "256 x 32-bit RAM", Keywords: []string{"ram", "memory"}, file: "ram.v"},
	{Name: "register", Title: "32-bit register", Keywords: []string{"register", "registers", "registro", "registri"}, file: "register.v"},
	{Name: "control_unit", Title: "Control unit", Keywords: []string{"control unit", "controller", "unità di controllo"}, file: "control_unit.v"},
}

// Source returns the component's Verilog text
func (c Component) Source() string {
	data, err := templatesFS.ReadFile("templates/" + c.file)
	if err != nil {
		panic(fmt.Sprintf("components: embedded template %s missing: %v", c.file, err))
	}
	return string(data)
}

// All returns every library entry in emission order
func All() []Component {
	out := make([]Component, len(library))
	copy(out, library)
	return out
}

// Names returns the component names in emission order
func Names() []string {
	names := make([]string, 0, len(library))
	for _, c := range library {
		names = append(names, c.Name)
	}
	return names
}

// Get looks a component up by name, ignoring case
func Get(name string) (Component, error) {
	for _, c := range library {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return Component{}, fmt.Errorf("%w: %q (available: %s)", ErrUnknownComponent, name, strings.Join(Names(), ", "))
}

// Render concatenates the selected components. Output follows library order,
// not selection order, and each component appears once.
func Render(names []string) (string, error) {
	if len(names) == 0 {
		return "", ErrNoSelection
	}

	selected := make(map[string]bool, len(names))
	for _, name := range names {
		c, err := Get(name)
		if err != nil {
			return "", err
		}
		selected[c.Name] = true
	}

	var parts []string
	for _, c := range library {
		if selected[c.Name] {
			parts = append(parts, c.Source())
		}
	}
	return strings.Join(parts, "\n"), nil
}

// Match returns the components whose keywords appear as whole words in a
// free-text description, in library order.
func Match(description string) []string {
	text := " " + normalizeWords(description) + " "

	var names []string
	for _, c := range library {
		for _, kw := range c.Keywords {
			if strings.Contains(text, " "+kw+" ") {
				names = append(names, c.Name)
				break
			}
		}
	}
	return names
}

// normalizeWords lowercases s and collapses every non-word run to one space
func normalizeWords(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, " ")
}
