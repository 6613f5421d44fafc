package validator

// =============================================================================
// The CUE validator is the contract guard between the extractor, the
// generator and the configuration file. A Module that does not match
// #Module never reaches the generator, and an artifact set that does not
// match #Artifacts is never written. Fix the producer, not the schema.
// =============================================================================

import (
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"

	"github.com/robert-at-pretension-io/verilog-tbgen/internal/config"
	"github.com/robert-at-pretension-io/verilog-tbgen/internal/extractor"
	"github.com/robert-at-pretension-io/verilog-tbgen/internal/generator"
)

//go:embed schema.cue
var schemaFS embed.FS

// Schema definitions
const (
	DefModule    = "#Module"
	DefArtifacts = "#Artifacts"
	DefConfig    = "#Config"
)

// Validator validates data against the embedded CUE schema.
// It is safe for concurrent use.
type Validator struct {
	mu     sync.Mutex
	ctx    *cue.Context
	schema cue.Value
}

// New creates a new Validator with the embedded CUE schema
func New() (*Validator, error) {
	ctx := cuecontext.New()

	schemaBytes, err := schemaFS.ReadFile("schema.cue")
	if err != nil {
		return nil, fmt.Errorf("loading embedded schema: %w", err)
	}

	schema := ctx.CompileBytes(schemaBytes)
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling schema: %w", schema.Err())
	}

	return &Validator{
		ctx:    ctx,
		schema: schema,
	}, nil
}

// ValidateModule checks an extracted module description
func (v *Validator) ValidateModule(m extractor.Module) error {
	return v.validate(DefModule, m)
}

// ValidateArtifacts checks a generated artifact set before it is written
func (v *Validator) ValidateArtifacts(a generator.ArtifactSet) error {
	return v.validate(DefArtifacts, a)
}

// ValidateConfig checks a loaded configuration
func (v *Validator) ValidateConfig(c *config.Config) error {
	return v.validate(DefConfig, c)
}

// ValidateJSON validates JSON bytes directly against a schema definition
func (v *Validator) ValidateJSON(def string, jsonBytes []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	unified, err := v.unify(def, jsonBytes)
	if err != nil {
		return err
	}
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%s schema validation failed: %w", def, err)
	}
	return nil
}

// ValidationErrors returns one message per validation error, or nil
func (v *Validator) ValidationErrors(def string, data interface{}) []string {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return []string{fmt.Sprintf("marshal error: %v", err)}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	unified, err := v.unify(def, jsonBytes)
	if err != nil {
		return []string{err.Error()}
	}

	err = unified.Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	var errs []string
	for _, e := range errors.Errors(err) {
		errs = append(errs, e.Error())
	}
	return errs
}

func (v *Validator) validate(def string, data interface{}) error {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling data to JSON: %w", err)
	}
	return v.ValidateJSON(def, jsonBytes)
}

// unify compiles jsonBytes and unifies it with the named definition.
// Callers hold v.mu.
func (v *Validator) unify(def string, jsonBytes []byte) (cue.Value, error) {
	dataValue := v.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return cue.Value{}, fmt.Errorf("compiling data as CUE: %w", dataValue.Err())
	}

	definition := v.schema.LookupPath(cue.ParsePath(def))
	if definition.Err() != nil {
		return cue.Value{}, fmt.Errorf("looking up %s definition: %w", def, definition.Err())
	}

	return definition.Unify(dataValue), nil
}
