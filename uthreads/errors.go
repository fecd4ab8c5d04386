package uthreads

import (
	"errors"
	"fmt"
)

// Sentinel errors for API misuse (spec taxon: user errors). All are
// returned, never panicked; callers may match them with errors.Is.
var (
	ErrNonPositiveQuantum = errors.New("uthreads: quantum_usecs must be positive")
	ErrNilEntryPoint      = errors.New("uthreads: entry point must not be nil")
	ErrTableFull          = errors.New("uthreads: thread table is full")
	ErrUnknownThread      = errors.New("uthreads: no thread with that id")
	ErrMainThreadBlock    = errors.New("uthreads: the main thread cannot be blocked")
	ErrMainThreadSleep    = errors.New("uthreads: the main thread cannot sleep")
	ErrNonPositiveSleep   = errors.New("uthreads: sleep duration must be positive")
	ErrNotInitialized     = errors.New("uthreads: library not initialized")
	ErrAlreadyInitialized = errors.New("uthreads: library already initialized")
)

// errNoRunnableThread indicates the ready queue emptied out entirely,
// which should be impossible: the main thread is never removed from the
// thread table and can never block or sleep, so it is always either
// running or in the ready queue.
var errNoRunnableThread = errors.New("uthreads: no runnable thread")

// UsageError wraps a sentinel with the offending call's details, so a log
// line or returned error carries context without losing errors.Is
// compatibility with the sentinel.
type UsageError struct {
	Op    string
	Cause error
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("uthreads: %s: %s", e.Op, e.Cause)
}

func (e *UsageError) Unwrap() error {
	return e.Cause
}

func usageError(op string, cause error) error {
	return &UsageError{Op: op, Cause: cause}
}

// PlatformError models the second error taxon: failure of an assumed-
// infallible runtime primitive (timer arm, goroutine handoff). Constructing
// one is always immediately followed by fatal(), which logs and exits;
// it is never returned to a caller.
type PlatformError struct {
	Op    string
	Cause error
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("uthreads: system error: %s: %s", e.Op, e.Cause)
}

func (e *PlatformError) Unwrap() error {
	return e.Cause
}
