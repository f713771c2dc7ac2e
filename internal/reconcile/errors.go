package reconcile

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode categorizes reconciliation errors.
type ErrorCode string

const (
	// ErrCodeMalformedImport indicates an imported snapshot lacks a required collection.
	ErrCodeMalformedImport ErrorCode = "MALFORMED_IMPORT"

	// ErrCodeNotFound indicates a referenced speaker, host, visit or talk does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeAlreadyExists indicates a name or number collides with an existing record.
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// ErrCodeAlreadyArchived indicates a visit is already in the archive.
	ErrCodeAlreadyArchived ErrorCode = "ALREADY_ARCHIVED"

	// ErrCodeTalkInUse indicates a talk is still referenced by a visit.
	ErrCodeTalkInUse ErrorCode = "TALK_IN_USE"
)

// Error is a reconciliation failure with a stable code.
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any *Error carrying the same code, so that
// errors.Is(err, ErrMalformedImport) works on detailed errors.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrMalformedImport = &Error{Code: ErrCodeMalformedImport, Message: "malformed import"}
	ErrNotFound        = &Error{Code: ErrCodeNotFound, Message: "not found"}
	ErrAlreadyExists   = &Error{Code: ErrCodeAlreadyExists, Message: "already exists"}
	ErrAlreadyArchived = &Error{Code: ErrCodeAlreadyArchived, Message: "already archived"}
	ErrTalkInUse       = &Error{Code: ErrCodeTalkInUse, Message: "talk in use"}
)

// IsMalformedImport reports whether err is a malformed import rejection.
func IsMalformedImport(err error) bool {
	return errors.Is(err, ErrMalformedImport)
}

// NewMalformedImportError lists the missing top-level collections.
func NewMalformedImportError(missing []string) *Error {
	return &Error{
		Code:    ErrCodeMalformedImport,
		Message: fmt.Sprintf("imported snapshot is missing required collections: %s", strings.Join(missing, ", ")),
		Details: map[string]string{"missing": strings.Join(missing, ",")},
	}
}

func notFound(kind, ref string) *Error {
	return &Error{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s %q not found", kind, ref),
		Details: map[string]string{"kind": kind, "ref": ref},
	}
}
