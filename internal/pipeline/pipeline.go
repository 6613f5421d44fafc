package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/robert-at-pretension-io/verilog-tbgen/internal/config"
	"github.com/robert-at-pretension-io/verilog-tbgen/internal/extractor"
	"github.com/robert-at-pretension-io/verilog-tbgen/internal/generator"
	"github.com/robert-at-pretension-io/verilog-tbgen/internal/output"
	"github.com/robert-at-pretension-io/verilog-tbgen/internal/policy"
	"github.com/robert-at-pretension-io/verilog-tbgen/internal/validator"
)

var (
	// ErrNoSources is returned when a directory contains no matching source file
	ErrNoSources = errors.New("no Verilog sources found")

	// ErrDuplicateArtifact is returned for a file whose artifacts would land on
	// a path already claimed by an earlier file of the same run
	ErrDuplicateArtifact = errors.New("artifact path already claimed")
)

// Mode selects how far each file travels through the pipeline
type Mode int

const (
	// ModeExtract reads, extracts and validates the module description
	ModeExtract Mode = iota
	// ModeLint additionally evaluates the policy rules
	ModeLint
	// ModeGenerate additionally renders, validates and writes the artifacts
	ModeGenerate
)

// Options are per-invocation overrides layered on top of the configuration
type Options struct {
	Mode Mode

	// OutputDir overrides output.dir
	OutputDir string

	// DryRun renders artifacts without writing them
	DryRun bool

	// NoEnvironment skips the verification-environment skeletons
	NoEnvironment bool

	// Force overwrites existing files even when output.overwrite is false
	Force bool

	// TimingPath overrides analysis.timing_path
	TimingPath string
}

// Runner processes a source file or a directory of sources
type Runner struct {
	Config  *config.Config
	Logger  *log.Logger
	Options Options

	extractor *extractor.Extractor
	generator *generator.Generator
	validator *validator.Validator
	policy    *policy.Engine
}

// FileResult is the outcome for one source file
type FileResult struct {
	Path       string             `json:"path"`
	Module     *extractor.Module  `json:"module,omitempty"`
	Violations []policy.Violation `json:"violations,omitempty"`
	Artifacts  []generator.File   `json:"-"`
	Written    []string           `json:"written,omitempty"`
	Error      string             `json:"error,omitempty"`

	// ContractErrors lists every #Module violation when validation failed
	ContractErrors []string `json:"contract_errors,omitempty"`

	err error
}

// Err returns the failure that stopped this file, if any
func (f FileResult) Err() error {
	return f.err
}

// Result is the structured result of a run.
// This can be serialized to JSON for programmatic consumption.
type Result struct {
	Files   []FileResult `json:"files"`
	Summary Summary      `json:"summary"`
}

// Summary provides aggregate counts over every processed file
type Summary struct {
	Files   int            `json:"files"`
	Failed  int            `json:"failed"`
	Modules int            `json:"modules"`
	Ports   int            `json:"ports"`
	Written int            `json:"written"`
	Lint    policy.Summary `json:"lint"`
}

// New creates a Runner. A nil cfg uses the defaults; a nil logger discards output.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger, opts Options) (*Runner, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	v, err := validator.New()
	if err != nil {
		return nil, fmt.Errorf("creating validator: %w", err)
	}
	if err := v.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	ext := extractor.New(extractor.Options{
		ScopeToModule:      cfg.Extract.ScopeToModule,
		SplitPortLists:     cfg.Extract.SplitPortLists,
		SkipTypeQualifiers: cfg.Extract.SkipTypeQualifiers,
	})
	gen := generator.New(generator.Options{
		InferResetPolarity: cfg.Generate.InferResetPolarity,
	})

	r := &Runner{
		Config:    cfg,
		Logger:    logger,
		Options:   opts,
		extractor: ext,
		generator: gen,
		validator: v,
	}

	if r.lintEnabled() {
		engine, err := policy.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("creating policy engine: %w", err)
		}
		r.policy = engine
	}

	return r, nil
}

func (r *Runner) lintEnabled() bool {
	switch r.Options.Mode {
	case ModeLint:
		return true
	case ModeGenerate:
		return r.Config.Lint.Enabled
	}
	return false
}

// Run resolves path to a list of sources and processes them with bounded
// parallelism. Failures of individual files are recorded in the result;
// only cancellation or an unresolvable path is returned as an error.
//
// Files are rendered in parallel, then their artifact paths are claimed in
// source order so two files never write the same target. Writes run last.
func (r *Runner) Run(ctx context.Context, path string) (*Result, error) {
	tl, err := openTimingLog(resolveTimingPath(r.Options, r.Config.Analysis.TimingPath), time.Now())
	if err != nil {
		r.Logger.Warn("timing output disabled", "err", err)
	}
	defer tl.Close()
	runDone := tl.track(stageRun, "")

	resolveDone := tl.track(stageResolve, "")
	files, err := r.resolve(path)
	resolveDone(err)
	if err != nil {
		runDone(err)
		return nil, err
	}
	r.Logger.Debug("resolved sources", "path", path, "files", len(files))

	results := make([]FileResult, len(files))
	err = r.forEach(ctx, len(files), func(ctx context.Context, i int) {
		results[i] = r.prepareFile(ctx, files[i], tl)
	})
	if err != nil {
		runDone(err)
		return nil, err
	}

	if r.Options.Mode == ModeGenerate {
		r.claimArtifacts(results)
		if !r.Options.DryRun {
			err = r.forEach(ctx, len(results), func(_ context.Context, i int) {
				r.writeFile(&results[i], tl)
			})
			if err != nil {
				runDone(err)
				return nil, err
			}
		}
	}

	result := &Result{Files: results}
	for _, fr := range results {
		result.Summary.Files++
		if fr.err != nil {
			result.Summary.Failed++
		}
		if fr.Module != nil {
			result.Summary.Modules++
			result.Summary.Ports += len(fr.Module.Ports)
		}
		result.Summary.Written += len(fr.Written)
		result.Summary.Lint.Add(policy.Summarize(fr.Violations))
	}
	runDone(nil)

	return result, nil
}

// forEach calls fn for 0..n-1 with bounded parallelism
func (r *Runner) forEach(ctx context.Context, n int, fn func(context.Context, int)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism())
	for i := range n {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(gctx, i)
			return nil
		})
	}
	return g.Wait()
}

// resolve returns path itself for a file, or the configured sources under a directory
func (r *Runner) resolve(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	files, err := r.Config.ResolveSources(path)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoSources)
	}
	return files, nil
}

func (r *Runner) parallelism() int {
	if n := r.Config.Analysis.MaxParallelFiles; n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// prepareFile extracts, lints and renders one file. Nothing is written here.
func (r *Runner) prepareFile(ctx context.Context, file string, tl *timingLog) FileResult {
	fr := FileResult{Path: file}
	logger := r.Logger.With("file", file)

	done := tl.track(stageExtract, file)
	mod, err := r.extract(&fr, file)
	done(err)
	if err != nil {
		return r.fail(fr, err)
	}
	fr.Module = &mod
	logger.Debug("extracted", "module", mod.Name, "ports", len(mod.Ports))

	if r.policy != nil {
		done := tl.track(stageLint, file)
		in := policy.NewInput(file, mod)
		in.ScopeToModule = r.Config.Extract.ScopeToModule
		lint, err := r.policy.Evaluate(ctx, in)
		done(err)
		if err != nil {
			return r.fail(fr, fmt.Errorf("linting %s: %w", file, err))
		}
		fr.Violations = lint.Violations
		for _, v := range lint.Violations {
			logger.Debug(v.Message, "rule", v.Rule, "severity", v.Severity, "line", v.Line)
		}
	}

	if r.Options.Mode != ModeGenerate {
		return fr
	}

	done = tl.track(stageRender, file)
	err = r.render(&fr, mod)
	done(err)
	if err != nil {
		return r.fail(fr, err)
	}
	return fr
}

func (r *Runner) extract(fr *FileResult, file string) (extractor.Module, error) {
	mod, err := r.extractor.ExtractFile(file)
	if err != nil {
		return mod, fmt.Errorf("extracting %s: %w", file, err)
	}
	return mod, r.checkModule(fr, mod)
}

// checkModule validates mod against the module contract and records every
// violation on fr when it fails.
func (r *Runner) checkModule(fr *FileResult, mod extractor.Module) error {
	if err := r.validator.ValidateModule(mod); err != nil {
		fr.ContractErrors = r.validator.ValidationErrors(validator.DefModule, mod)
		return fmt.Errorf("validating module %s: %w", mod.Name, err)
	}
	return nil
}

func (r *Runner) render(fr *FileResult, mod extractor.Module) error {
	set := r.generator.Generate(mod)
	if r.Options.NoEnvironment || !r.Config.Output.Environment {
		set.Skeletons = nil
	}
	if err := r.validator.ValidateArtifacts(set); err != nil {
		return fmt.Errorf("validating artifacts for %s: %w", mod.Name, err)
	}
	fr.Artifacts = set.Files()
	return nil
}

// claimArtifacts walks the results in source order and fails every file with
// an artifact path an earlier file already claimed. Dry runs are checked too.
func (r *Runner) claimArtifacts(results []FileResult) {
	owners := make(map[string]string)
	for i := range results {
		fr := &results[i]
		if fr.err != nil || len(fr.Artifacts) == 0 {
			continue
		}

		dir := r.outputDir(fr.Path)
		var conflict error
		for _, f := range fr.Artifacts {
			target := filepath.Clean(filepath.Join(dir, f.Name))
			if owner, ok := owners[target]; ok {
				conflict = fmt.Errorf("%s: %w by %s", target, ErrDuplicateArtifact, owner)
				break
			}
		}
		if conflict != nil {
			fr.Artifacts = nil
			*fr = r.fail(*fr, fmt.Errorf("generating %s: %w", fr.Module.Name, conflict))
			continue
		}

		for _, f := range fr.Artifacts {
			owners[filepath.Clean(filepath.Join(dir, f.Name))] = fr.Path
		}
		if r.Options.DryRun {
			r.Logger.Info("dry run", "file", fr.Path, "module", fr.Module.Name, "artifacts", len(fr.Artifacts))
		}
	}
}

func (r *Runner) writeFile(fr *FileResult, tl *timingLog) {
	if fr.err != nil || len(fr.Artifacts) == 0 {
		return
	}

	done := tl.track(stageWrite, fr.Path)
	written, err := output.Write(r.outputDir(fr.Path), fr.Artifacts, r.Options.Force || r.Config.Output.Overwrite)
	done(err)
	fr.Written = written
	if err != nil {
		*fr = r.fail(*fr, fmt.Errorf("writing artifacts for %s: %w", fr.Module.Name, err))
		return
	}
	r.Logger.Info("generated", "file", fr.Path, "module", fr.Module.Name, "files", len(written))
}

func (r *Runner) fail(fr FileResult, err error) FileResult {
	fr.err = err
	fr.Error = err.Error()
	r.Logger.Error("failed", "file", fr.Path, "err", err)
	return fr
}

func (r *Runner) outputDir(file string) string {
	if r.Options.OutputDir != "" {
		return r.Options.OutputDir
	}
	if r.Config.Output.Dir != "" {
		return r.Config.Output.Dir
	}
	return filepath.Dir(file)
}
