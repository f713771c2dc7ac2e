package session

import (
	"errors"
	"fmt"
)

// ErrImportInProgress is returned when an import starts while another one
// is still running. Nothing is changed; the caller may retry later.
var ErrImportInProgress = errors.New("IMPORT_IN_PROGRESS: an import is already running")

// PersistenceError reports that a new snapshot is in memory but could not be
// saved. The in-memory and stored snapshots differ until Flush succeeds.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("PERSISTENCE_FAILURE: %s: changes are not saved: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsPersistenceFailure reports whether err is a PersistenceError.
func IsPersistenceFailure(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
