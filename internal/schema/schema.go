package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"

	"github.com/kbvlyon/visitsync/internal/model"
)

//go:embed import.cue
var importSchema string

// MaxErrors caps the number of validation errors reported for one file.
const MaxErrors = 50

var requiredSections = []string{"speakers", "hosts", "visits"}

// Validator checks import files against the embedded schema.
//
// Thread-safety: Validator is safe for concurrent use via internal mutex;
// a cue.Context is not.
type Validator struct {
	mu  sync.Mutex
	ctx *cue.Context
	def cue.Value
}

// NewValidator compiles the embedded import schema.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(importSchema, cue.Filename("import.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compiling import schema: %w", err)
	}
	def := v.LookupPath(cue.ParsePath("#Import"))
	if err := def.Err(); err != nil {
		return nil, fmt.Errorf("import schema has no #Import: %w", err)
	}
	return &Validator{ctx: ctx, def: def}, nil
}

// Validate returns every schema violation in data. An empty result means the
// file can be decoded.
func (v *Validator) Validate(data []byte) []ValidationError {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return []ValidationError{{Code: ErrCodeSyntax, Message: fmt.Sprintf("not a JSON object: %v", err)}}
	}

	var errs []ValidationError
	for _, key := range requiredSections {
		raw, ok := top[key]
		if !ok || string(raw) == "null" {
			errs = append(errs, ValidationError{
				Field:   key,
				Code:    ErrCodeMissingSection,
				Message: "required list is missing",
			})
		}
	}
	if len(errs) > 0 {
		return errs
	}

	expr, err := cuejson.Extract("import.json", data)
	if err != nil {
		return []ValidationError{{Code: ErrCodeSyntax, Message: err.Error()}}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	val := v.ctx.BuildExpr(expr)
	if err := val.Err(); err != nil {
		return []ValidationError{{Code: ErrCodeSyntax, Message: err.Error()}}
	}
	if err := v.def.Unify(val).Validate(cue.Concrete(true)); err != nil {
		errs = append(errs, fromCUE(err)...)
	}
	return errs
}

func fromCUE(err error) []ValidationError {
	var out []ValidationError
	seen := make(map[string]bool)
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		ve := ValidationError{
			Field:   strings.Join(e.Path(), "."),
			Code:    ErrCodeSchemaViolation,
			Message: fmt.Sprintf(format, args...),
		}
		if seen[ve.Error()] {
			continue
		}
		seen[ve.Error()] = true
		if len(out) == MaxErrors {
			out = append(out, ValidationError{
				Code:    ErrCodeTooManyErrors,
				Message: fmt.Sprintf("more than %d errors, list truncated", MaxErrors),
			})
			break
		}
		out = append(out, ve)
	}
	if len(out) == 0 {
		out = append(out, ValidationError{Code: ErrCodeSchemaViolation, Message: err.Error()})
	}
	return out
}

// Decode validates data, decodes it and repairs it.
func (v *Validator) Decode(data []byte, opts RepairOptions) Result {
	if errs := v.Validate(data); len(errs) > 0 {
		return Invalid{Errors: errs}
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Invalid{Errors: []ValidationError{{Code: ErrCodeSchemaViolation, Message: err.Error()}}}
	}

	repaired, warnings := Repair(&snap, opts)
	return Valid{Snapshot: repaired, Warnings: warnings}
}
