package policy

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/open-policy-agent/opa/rego"

	"github.com/robert-at-pretension-io/verilog-tbgen/internal/config"
	"github.com/robert-at-pretension-io/verilog-tbgen/internal/extractor"
	"github.com/robert-at-pretension-io/verilog-tbgen/internal/generator"
)

//go:embed rules.rego
var rulesSource string

const violationsQuery = "data.tbgen.checks.all_violations"

// Severity levels, ordered from most to least severe
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
	SeverityOff     = "off"
)

// Engine evaluates the lint rules against extracted modules
type Engine struct {
	query rego.PreparedEvalQuery
	cfg   *config.Config
}

// Violation represents a policy violation
type Violation struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	File     string `json:"file"`
	Line     int    `json:"line"`
	Message  string `json:"message"`
}

// Result contains the evaluation results
type Result struct {
	Violations []Violation `json:"violations"`
	Summary    Summary     `json:"summary"`
}

// Summary provides aggregate counts
type Summary struct {
	TotalViolations int `json:"total_violations"`
	Errors          int `json:"errors"`
	Warnings        int `json:"warnings"`
	Info            int `json:"info"`
}

// Add folds another summary into s
func (s *Summary) Add(other Summary) {
	s.TotalViolations += other.TotalViolations
	s.Errors += other.Errors
	s.Warnings += other.Warnings
	s.Info += other.Info
}

// Input is the data structure passed to OPA. ScopeToModule is set when the
// extractor stopped at the first endmodule.
type Input struct {
	File              string    `json:"file"`
	Module            ModuleRef `json:"module"`
	Ports             []Port    `json:"ports"`
	Clock             *Port     `json:"clock,omitempty"`
	Reset             *Port     `json:"reset,omitempty"`
	AdditionalModules []string  `json:"additional_modules,omitempty"`
	ScopeToModule     bool      `json:"scope_to_module"`
}

type ModuleRef struct {
	Name string `json:"name"`
	Line int    `json:"line"`
}

type Port struct {
	Name      string `json:"name"`
	Direction string `json:"direction"`
	Width     string `json:"width"`
	Bus       bool   `json:"bus"`
	Bits      int    `json:"bits"`
	Line      int    `json:"line"`
}

// NewInput flattens an extracted module into the policy input, resolving the
// clock and reset ports with the same heuristics the testbench uses.
func NewInput(file string, m extractor.Module) Input {
	in := Input{
		File:              file,
		Module:            ModuleRef{Name: m.Name, Line: m.Line},
		Ports:             make([]Port, 0, len(m.Ports)),
		AdditionalModules: m.AdditionalModules,
	}
	for _, p := range m.Ports {
		in.Ports = append(in.Ports, toPort(p))
	}
	if clk, ok := generator.ClockPort(m.Ports); ok {
		p := toPort(clk)
		in.Clock = &p
	}
	if rst, ok := generator.ResetPort(m.Ports); ok {
		p := toPort(rst)
		in.Reset = &p
	}
	return in
}

func toPort(p extractor.Port) Port {
	return Port{
		Name:      p.Name,
		Direction: string(p.Direction),
		Width:     p.Width,
		Bus:       p.IsBus(),
		Bits:      p.Bits(),
		Line:      p.Line,
	}
}

// New prepares the embedded rules. cfg supplies per-rule severity overrides;
// nil means every rule keeps its built-in severity.
func New(ctx context.Context, cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	query, err := rego.New(
		rego.Module("rules.rego", rulesSource),
		rego.Query(violationsQuery),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("preparing violations query: %w", err)
	}

	return &Engine{query: query, cfg: cfg}, nil
}

// Evaluate runs the rules against the input data
func (e *Engine) Evaluate(ctx context.Context, input Input) (*Result, error) {
	inputMap, err := structToMap(input)
	if err != nil {
		return nil, fmt.Errorf("converting input: %w", err)
	}

	rs, err := e.query.Eval(ctx, rego.EvalInput(inputMap))
	if err != nil {
		return nil, fmt.Errorf("evaluating violations: %w", err)
	}

	result := &Result{}
	if len(rs) > 0 && len(rs[0].Expressions) > 0 {
		violations, ok := rs[0].Expressions[0].Value.([]interface{})
		if ok {
			for _, v := range violations {
				vmap, ok := v.(map[string]interface{})
				if !ok {
					continue
				}
				violation := Violation{
					Rule:     getString(vmap, "rule"),
					Severity: getString(vmap, "severity"),
					File:     getString(vmap, "file"),
					Line:     getInt(vmap, "line"),
					Message:  getString(vmap, "message"),
				}
				if !e.cfg.IsRuleEnabled(violation.Rule) {
					continue
				}
				violation.Severity = e.cfg.GetRuleSeverity(violation.Rule, violation.Severity)
				result.Violations = append(result.Violations, violation)
			}
		}
	}

	sort.SliceStable(result.Violations, func(i, j int) bool {
		a, b := result.Violations[i], result.Violations[j]
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Rule < b.Rule
	})
	result.Summary = Summarize(result.Violations)
	return result, nil
}

// Summarize counts violations per severity
func Summarize(violations []Violation) Summary {
	s := Summary{TotalViolations: len(violations)}
	for _, v := range violations {
		switch v.Severity {
		case SeverityError:
			s.Errors++
		case SeverityWarning:
			s.Warnings++
		case SeverityInfo:
			s.Info++
		}
	}
	return s
}

// Helper functions
func structToMap(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var result map[string]interface{}
	err = json.Unmarshal(data, &result)
	return result, err
}

func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func getInt(m map[string]interface{}, key string) int {
	if v, ok := m[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		case json.Number:
			i, _ := n.Int64()
			return int(i)
		}
	}
	return 0
}
