package uthreads

import (
	"sync"

	"github.com/joeycumines/logiface"
)

// SetLogger installs the package-level structured logger used for thread
// lifecycle events (spawn, block, resume, sleep, terminate) and fatal
// platform errors.
//
// A package-level logger is appropriate here, mirroring the teacher's
// eventloop package: every Library in a process shares the same logging
// semantics, and per-instance configuration would just be boilerplate at
// every call site.
func SetLogger(logger *logiface.Logger[logiface.Event]) {
	globalLogger.Lock()
	defer globalLogger.Unlock()
	globalLogger.logger = logger
}

var globalLogger struct {
	sync.RWMutex
	logger *logiface.Logger[logiface.Event]
}

func getLogger() *logiface.Logger[logiface.Event] {
	globalLogger.RLock()
	defer globalLogger.RUnlock()
	return globalLogger.logger
}

func logEvent(level func(*logiface.Logger[logiface.Event]) *logiface.Builder[logiface.Event], msg string, fields map[string]any) {
	l := getLogger()
	if l == nil {
		return
	}
	b := level(l)
	if !b.Enabled() {
		return
	}
	for k, v := range fields {
		b = b.Any(k, v)
	}
	b.Log(msg)
}

func logDebug(msg string, fields map[string]any) {
	logEvent((*logiface.Logger[logiface.Event]).Debug, msg, fields)
}

func logInfo(msg string, fields map[string]any) {
	logEvent((*logiface.Logger[logiface.Event]).Info, msg, fields)
}

func logErr(msg string, fields map[string]any) {
	logEvent((*logiface.Logger[logiface.Event]).Err, msg, fields)
}

// fatal logs a platform error at Err level, then terminates the process.
// Per spec: platform-primitive failures release state and exit non-zero;
// there is no recovery path, matching the original's free_all(); exit(1).
func fatal(err *PlatformError) {
	logErr(err.Error(), map[string]any{"op": err.Op})
	osExit(1)
}
