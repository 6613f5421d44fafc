package e2e

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/robert-at-pretension-io/verilog-tbgen/internal/policy"
)

type lintReport struct {
	Violations []policy.Violation `json:"violations"`
	Summary    policy.Summary     `json:"summary"`
	Errors     []string           `json:"errors"`
}

func TestVlogTbgenE2E_LintTestdata(t *testing.T) {
	repoRoot := findRepoRoot(t)
	bin := buildBinary(t, repoRoot)
	env := isolatedEnv(t)

	// bus_bridge.sv declares "input logic ..." ports
	cfgPath := filepath.Join(t.TempDir(), "tbgen.json")
	if err := os.WriteFile(cfgPath, []byte(`{"extract": {"skip_type_qualifiers": true}}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	stdout, _, code := run(t, bin, env, "lint", "--json", "--config", cfgPath, filepath.Join(repoRoot, "testdata", "verilog"))
	if code != 1 {
		t.Fatalf("expected exit status 1 (duplicate port and a file without ports), got %d", code)
	}

	var report lintReport
	if err := json.Unmarshal(stdout, &report); err != nil {
		t.Fatalf("parse JSON output: %v\nstdout:\n%s", err, stdout)
	}

	byRule := map[string][]policy.Violation{}
	for _, v := range report.Violations {
		byRule[v.Rule] = append(byRule[v.Rule], v)
	}

	for _, rule := range []string{"duplicate_port", "multiple_modules", "unresolved_width", "no_clock"} {
		if len(byRule[rule]) == 0 {
			t.Fatalf("expected rule %q; got %v", rule, report.Violations)
		}
	}
	if dup := byRule["duplicate_port"][0]; filepath.Base(dup.File) != "bus_bridge.sv" || dup.Line != 12 {
		t.Fatalf("unexpected duplicate_port violation: %+v", dup)
	}
	if len(report.Errors) != 1 || !strings.Contains(report.Errors[0], "no_ports.v") {
		t.Fatalf("expected one extraction failure for no_ports.v, got %v", report.Errors)
	}
}

func TestVlogTbgenE2E_LintCapturesQualifiersByDefault(t *testing.T) {
	repoRoot := findRepoRoot(t)
	bin := buildBinary(t, repoRoot)
	env := isolatedEnv(t)

	stdout, _, _ := run(t, bin, env, "lint", "--json", filepath.Join(repoRoot, "testdata", "verilog", "bus_bridge.sv"))

	var report lintReport
	if err := json.Unmarshal(stdout, &report); err != nil {
		t.Fatalf("parse JSON output: %v\nstdout:\n%s", err, stdout)
	}
	for _, v := range report.Violations {
		if v.Rule == "duplicate_port" {
			if v.Line != 3 || !strings.Contains(v.Message, `"logic"`) {
				t.Fatalf("expected the qualifier captured as a port name on line 3, got %+v", v)
			}
			return
		}
	}
	t.Fatalf("expected duplicate_port for the repeated qualifier; got %v", report.Violations)
}

func TestVlogTbgenE2E_GenerateCounter(t *testing.T) {
	repoRoot := findRepoRoot(t)
	bin := buildBinary(t, repoRoot)
	env := isolatedEnv(t)
	out := t.TempDir()

	_, stderr, code := run(t, bin, env, "generate", "--out", out, filepath.Join(repoRoot, "testdata", "verilog", "counter.v"))
	if code != 0 {
		t.Fatalf("generate failed with status %d\nstderr:\n%s", code, stderr)
	}

	tb, err := os.ReadFile(filepath.Join(out, "counter_tb.sv"))
	if err != nil {
		t.Fatalf("read testbench: %v", err)
	}
	for _, want := range []string{
		"always #5 clk = ~clk;",
		"rst_n = 1'b1;",
		"#10 rst_n = 1'b0;",
		"wire [15:0] count;",
	} {
		if !strings.Contains(string(tb), want) {
			t.Fatalf("testbench missing %q:\n%s", want, tb)
		}
	}

	for _, name := range []string{"counter_if.sv", "counter_driver.sv", "counter_monitor.sv", "counter_sequence.sv"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
}

func run(t *testing.T, bin string, env []string, args ...string) ([]byte, string, int) {
	t.Helper()
	cmd := exec.Command(bin, args...)
	cmd.Env = env
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), stderr.String(), 0
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("run %v: %v", args, err)
	}
	return stdout.Bytes(), stderr.String(), exitErr.ExitCode()
}

func isolatedEnv(t *testing.T) []string {
	t.Helper()
	home := t.TempDir()
	return append(os.Environ(),
		"HOME="+home,
		"XDG_CONFIG_HOME="+filepath.Join(home, ".config"),
		"NO_COLOR=1",
	)
}

func buildBinary(t *testing.T, repoRoot string) string {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "vlog-tbgen")
	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/vlog-tbgen")
	cmd.Dir = repoRoot
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("build vlog-tbgen failed: %v\n%s", err, string(out))
	}
	return binPath
}

func findRepoRoot(t *testing.T) string {
	t.Helper()
	start, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}

	dir := start
	for {
		candidate := filepath.Join(dir, "testdata", "verilog", "counter.v")
		if _, err := os.Stat(candidate); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("repo root not found from %s", start)
		}
		dir = parent
	}
}
