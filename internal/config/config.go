package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// FileName is the project configuration file
	FileName = "tbgen.json"

	// HiddenFileName is the dot-file variant of FileName
	HiddenFileName = ".tbgen.json"

	// EnvPrefix prefixes environment overrides, e.g. TBGEN_OUTPUT_DIR
	EnvPrefix = "TBGEN"
)

// Config is the top-level configuration for vlog-tbgen
type Config struct {
	// Sources selects the Verilog files processed when a directory is given
	Sources SourcesConfig `json:"sources" mapstructure:"sources"`

	// Extract tunes the port scan
	Extract ExtractConfig `json:"extract" mapstructure:"extract"`

	// Generate tunes the testbench text
	Generate GenerateConfig `json:"generate" mapstructure:"generate"`

	// Output controls where and what is written
	Output OutputConfig `json:"output" mapstructure:"output"`

	// Lint contains policy rule configuration
	Lint LintConfig `json:"lint" mapstructure:"lint"`

	// Analysis contains batch processing options
	Analysis AnalysisConfig `json:"analysis" mapstructure:"analysis"`
}

// SourcesConfig lists glob patterns relative to the project root
type SourcesConfig struct {
	// Files is a list of glob patterns; ** matches any directory depth
	Files []string `json:"files" mapstructure:"files"`

	// Exclude is a list of glob patterns removed from Files
	Exclude []string `json:"exclude,omitempty" mapstructure:"exclude"`
}

// ExtractConfig mirrors extractor.Options
type ExtractConfig struct {
	// ScopeToModule limits the port scan to the first module of a file
	ScopeToModule bool `json:"scope_to_module" mapstructure:"scope_to_module"`

	// SplitPortLists captures every name of "input a, b;" declarations
	SplitPortLists bool `json:"split_port_lists" mapstructure:"split_port_lists"`

	// SkipTypeQualifiers captures "q" rather than "reg" from "output reg q"
	SkipTypeQualifiers bool `json:"skip_type_qualifiers" mapstructure:"skip_type_qualifiers"`
}

// GenerateConfig mirrors generator.Options
type GenerateConfig struct {
	// InferResetPolarity asserts resets named *_n, *_ni or *_b at logic 0
	InferResetPolarity bool `json:"infer_reset_polarity" mapstructure:"infer_reset_polarity"`
}

// OutputConfig controls artifact persistence
type OutputConfig struct {
	// Dir is the output directory. Empty writes next to each source file.
	Dir string `json:"dir" mapstructure:"dir"`

	// Overwrite replaces existing files instead of failing
	Overwrite bool `json:"overwrite" mapstructure:"overwrite"`

	// Environment also writes the interface/driver/monitor/sequence skeletons
	Environment bool `json:"environment" mapstructure:"environment"`
}

// LintConfig contains linting configuration
type LintConfig struct {
	// Enabled runs the policy checks during generate
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// Rules maps rule names to severity: "off", "info", "warning", "error"
	Rules map[string]string `json:"rules" mapstructure:"rules"`
}

// AnalysisConfig contains batch options
type AnalysisConfig struct {
	// MaxParallelFiles limits concurrent file processing (0 = auto)
	MaxParallelFiles int `json:"max_parallel_files" mapstructure:"max_parallel_files"`

	// TimingPath writes per-stage timing records as JSONL when set
	TimingPath string `json:"timing_path,omitempty" mapstructure:"timing_path"`
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		Sources: SourcesConfig{
			Files:   []string{"*.v", "*.sv", "**/*.v", "**/*.sv"},
			Exclude: []string{"**/*_tb.sv", "**/*_if.sv", "**/*_driver.sv", "**/*_monitor.sv", "**/*_sequence.sv"},
		},
		Extract:  ExtractConfig{},
		Generate: GenerateConfig{},
		Output: OutputConfig{
			Dir:         "",
			Overwrite:   true,
			Environment: true,
		},
		Lint: LintConfig{
			Enabled: true,
			Rules:   map[string]string{},
		},
		Analysis: AnalysisConfig{
			MaxParallelFiles: 0, // auto
		},
	}
}

// Load finds and loads the configuration file
// Search order:
//  1. ./tbgen.json (current working directory)
//  2. ./.tbgen.json (current working directory)
//  3. <rootPath>/tbgen.json and <rootPath>/.tbgen.json (if different from cwd)
//  4. ~/.config/tbgen/config.json
//
// Returns defaults (plus TBGEN_* environment overrides) if no file is found
func Load(rootPath string) (*Config, error) {
	cwd, _ := os.Getwd()

	searchPaths := []string{
		filepath.Join(cwd, FileName),
		filepath.Join(cwd, HiddenFileName),
	}

	if info, err := os.Stat(rootPath); err == nil && info.IsDir() {
		absRoot, _ := filepath.Abs(rootPath)
		if absRoot != cwd {
			searchPaths = append(searchPaths,
				filepath.Join(rootPath, FileName),
				filepath.Join(rootPath, HiddenFileName),
			)
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".config", "tbgen", "config.json"))
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	return decode(newViper())
}

// LoadFile loads configuration from a specific file
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return decode(v)
}

// newViper registers every key with its default so that environment
// overrides apply even without a config file.
func newViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("sources.files", defaults.Sources.Files)
	v.SetDefault("sources.exclude", defaults.Sources.Exclude)
	v.SetDefault("extract.scope_to_module", defaults.Extract.ScopeToModule)
	v.SetDefault("extract.split_port_lists", defaults.Extract.SplitPortLists)
	v.SetDefault("extract.skip_type_qualifiers", defaults.Extract.SkipTypeQualifiers)
	v.SetDefault("generate.infer_reset_polarity", defaults.Generate.InferResetPolarity)
	v.SetDefault("output.dir", defaults.Output.Dir)
	v.SetDefault("output.overwrite", defaults.Output.Overwrite)
	v.SetDefault("output.environment", defaults.Output.Environment)
	v.SetDefault("lint.enabled", defaults.Lint.Enabled)
	v.SetDefault("lint.rules", defaults.Lint.Rules)
	v.SetDefault("analysis.max_parallel_files", defaults.Analysis.MaxParallelFiles)
	v.SetDefault("analysis.timing_path", defaults.Analysis.TimingPath)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	if len(c.Sources.Files) == 0 {
		c.Sources.Files = DefaultConfig().Sources.Files
	}
	if c.Lint.Rules == nil {
		c.Lint.Rules = make(map[string]string)
	}
}

// Save writes the configuration to a file
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// GetRuleSeverity returns the severity for a rule, or the default if not configured
func (c *Config) GetRuleSeverity(rule string, defaultSeverity string) string {
	if severity, ok := c.Lint.Rules[rule]; ok {
		return severity
	}
	return defaultSeverity
}

// IsRuleEnabled returns true if the rule is not set to "off"
func (c *Config) IsRuleEnabled(rule string) bool {
	if severity, ok := c.Lint.Rules[rule]; ok {
		return severity != "off"
	}
	return true // enabled by default
}

// ShouldIgnoreFile checks if a file matches one of the exclude patterns
func (c *Config) ShouldIgnoreFile(filePath string) bool {
	for _, pattern := range c.Sources.Exclude {
		pattern = strings.TrimPrefix(pattern, "**/")
		if matched, _ := filepath.Match(pattern, filePath); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, filepath.Base(filePath)); matched {
			return true
		}
	}
	return false
}
