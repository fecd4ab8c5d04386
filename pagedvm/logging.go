package pagedvm

import (
	"sync"

	"github.com/joeycumines/logiface"
)

// SetLogger installs the package-level structured logger used for eviction
// events; faults served without an eviction are not logged.
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

func logDebug(msg string, fields map[string]any) {
	l := getLogger()
	if l == nil {
		return
	}
	b := l.Debug()
	if !b.Enabled() {
		return
	}
	for k, v := range fields {
		b = b.Any(k, v)
	}
	b.Log(msg)
}
