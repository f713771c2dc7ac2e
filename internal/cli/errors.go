package cli

import (
	"errors"

	"github.com/kbvlyon/visitsync/internal/reconcile"
	"github.com/kbvlyon/visitsync/internal/schema"
	"github.com/kbvlyon/visitsync/internal/session"
	"github.com/kbvlyon/visitsync/internal/store"
)

// Error codes shown in CLI output. Schema codes (E2xx) come from the schema
// package.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeConfig        = "E002" // Configuration invalid or unreadable
	ErrCodeStorage       = "E003" // Storage could not be opened or read
	ErrCodeNotFound      = "E005" // File not found
	ErrCodeWriteFailed   = "E007" // File write error
	ErrCodeUnsupported   = "E008" // Operation not available with the configured backend
	ErrCodeSheetFetch    = "E009" // Spreadsheet download failed
	ErrCodeUnknownRecord = "E401" // Speaker, host, visit, talk or backup not found
	ErrCodeConflict      = "E402" // Name or number already taken
	ErrCodeArchived      = "E403" // Visit already archived
	ErrCodeTalkInUse     = "E404" // Talk still assigned to a visit
	ErrCodeChecksum      = "E405" // Backup content does not match its checksum
	ErrCodeBusy          = "E501" // Another import is running
	ErrCodePersistence   = "E502" // Changes kept in memory but not saved
)

// codedError carries a CLI error code chosen at the call site.
type codedError struct {
	code string
	exit int
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }

func withCode(code string, exit int, err error) error {
	return &codedError{code: code, exit: exit, err: err}
}

// classify maps an error to a CLI error code, an exit code and details.
func classify(err error) (string, int, any) {
	var coded *codedError
	if errors.As(err, &coded) {
		return coded.code, coded.exit, nil
	}

	var invalid *schema.InvalidError
	if errors.As(err, &invalid) {
		code := schema.ErrCodeSchemaViolation
		if len(invalid.Errors) > 0 {
			code = invalid.Errors[0].Code
		}
		return code, ExitFailure, invalid.Errors
	}

	var recErr *reconcile.Error
	if errors.As(err, &recErr) {
		var details any
		if len(recErr.Details) > 0 {
			details = recErr.Details
		}
		switch recErr.Code {
		case reconcile.ErrCodeMalformedImport:
			return schema.ErrCodeMissingSection, ExitFailure, details
		case reconcile.ErrCodeNotFound:
			return ErrCodeUnknownRecord, ExitFailure, details
		case reconcile.ErrCodeAlreadyExists:
			return ErrCodeConflict, ExitFailure, details
		case reconcile.ErrCodeAlreadyArchived:
			return ErrCodeArchived, ExitFailure, details
		case reconcile.ErrCodeTalkInUse:
			return ErrCodeTalkInUse, ExitFailure, details
		}
	}

	switch {
	case errors.Is(err, session.ErrImportInProgress):
		return ErrCodeBusy, ExitFailure, nil
	case session.IsPersistenceFailure(err):
		return ErrCodePersistence, ExitCommandError, nil
	case errors.Is(err, store.ErrBackupNotFound):
		return ErrCodeUnknownRecord, ExitFailure, nil
	case errors.Is(err, store.ErrChecksumMismatch):
		return ErrCodeChecksum, ExitFailure, nil
	}
	return ErrCodeGeneric, ExitCommandError, nil
}
