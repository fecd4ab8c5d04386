package mapreduce

import (
	"sync"

	"github.com/joeycumines/logiface"
)

// SetLogger installs the package-level structured logger used for job
// lifecycle events (job start and job finish; phase transitions and Close
// are not logged).
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
