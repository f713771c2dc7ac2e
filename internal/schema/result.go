package schema

import (
	"fmt"
	"strings"

	"github.com/kbvlyon/visitsync/internal/model"
	"github.com/kbvlyon/visitsync/internal/reconcile"
)

// Validation error codes (E200-E299)
const (
	ErrCodeSyntax          = "E200" // not a JSON object
	ErrCodeMissingSection  = "E201" // speakers, hosts or visits missing
	ErrCodeSchemaViolation = "E202" // value does not match the import schema
	ErrCodeTooManyErrors   = "E299" // error list truncated
)

// Repair warning codes (W300-W399)
const (
	WarnDroppedSpeaker = "W301" // speaker without a name
	WarnDroppedHost    = "W302" // host without a name
	WarnDroppedVisit   = "W303" // visit without a name or date
	WarnDuplicateKey   = "W310" // several records share a normalized key
)

// ValidationError is one reason an import was rejected.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Warning is a data-quality issue that did not block the import.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (w Warning) String() string { return w.Code + " " + w.Message }

// Result is either Valid or Invalid.
type Result interface {
	isResult()
}

// Valid is a decoded and repaired snapshot.
type Valid struct {
	Snapshot *model.Snapshot
	Warnings []Warning
}

// Invalid lists why an import was rejected.
type Invalid struct {
	Errors []ValidationError
}

func (Valid) isResult()   {}
func (Invalid) isResult() {}

// Err returns the rejection as an error.
func (r Invalid) Err() error {
	return &InvalidError{Errors: r.Errors}
}

// InvalidError reports a rejected import. It matches
// reconcile.ErrMalformedImport under errors.Is.
type InvalidError struct {
	Errors []ValidationError
}

func (e *InvalidError) Error() string {
	if len(e.Errors) == 0 {
		return "invalid import"
	}
	msgs := make([]string, 0, len(e.Errors))
	for _, ve := range e.Errors {
		msgs = append(msgs, ve.Error())
	}
	return "invalid import: " + strings.Join(msgs, "; ")
}

func (e *InvalidError) Unwrap() error { return reconcile.ErrMalformedImport }

// Resolve converts a Result to the usual Go triple.
func Resolve(r Result) (*model.Snapshot, []Warning, error) {
	switch r := r.(type) {
	case Valid:
		return r.Snapshot, r.Warnings, nil
	case Invalid:
		return nil, nil, r.Err()
	default:
		return nil, nil, fmt.Errorf("unexpected schema result %T", r)
	}
}
