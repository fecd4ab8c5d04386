package mapreduce

import (
	"errors"
	"fmt"
)

var (
	// ErrNilClient is returned by StartJob when client is nil.
	ErrNilClient = errors.New("mapreduce: client must not be nil")
	// ErrNonPositiveWorkers is returned by StartJob when numWorkers <= 0.
	ErrNonPositiveWorkers = errors.New("mapreduce: numWorkers must be positive")
	// ErrJobClosed names a closed job. No Job method returns it: Wait,
	// State and Output keep working after Close.
	ErrJobClosed = errors.New("mapreduce: job handle already closed")
)

// UsageError wraps a sentinel with the offending call's details.
type UsageError struct {
	Op    string
	Cause error
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("mapreduce: %s: %s", e.Op, e.Cause)
}

func (e *UsageError) Unwrap() error {
	return e.Cause
}

func usageError(op string, cause error) error {
	return &UsageError{Op: op, Cause: cause}
}
