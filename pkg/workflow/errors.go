package workflow

import (
	"fmt"

	"github.com/pkg/errors"
)

// FatalError aborts the current run and is surfaced to the caller.
// It is reserved for store-level failures (checkpoint or durable log
// unreachable); collaborator failures are handled by escalation instead.
type FatalError struct {
	Op  string
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal: %s: %v", e.Op, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

func fatal(op string, err error) *FatalError {
	return &FatalError{Op: op, Err: err}
}

// IsFatal reports whether err carries a FatalError anywhere in its chain.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
