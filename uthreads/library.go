// Package uthreads exposes a process-global instance, matching the
// original C API's free-function surface (uthread_init, uthread_spawn,
// ...): there is exactly one thread library per process, so threading
// state through a handle at every call site would only add ceremony.
package uthreads

import (
	"runtime"
	"time"
)

// Init creates the thread library with the given quantum length and
// starts the main thread (tid 0, already RUNNING). Must be called exactly
// once, before any other function in this package.
//
// Init pins the process to a single OS thread (runtime.GOMAXPROCS(1)) for
// the lifetime of the library. That is load-bearing, not incidental: it
// is what makes "exactly one user thread ever executing" an enforced
// property of the Go runtime's own scheduler rather than a convention
// callers must honor, standing in for the signal masking the original
// uses to serialize access to shared scheduler state.
func Init(quantum time.Duration) error {
	libMu.Lock()
	defer libMu.Unlock()
	if lib != nil {
		return usageError("init", ErrAlreadyInitialized)
	}
	if quantum <= 0 {
		return usageError("init", ErrNonPositiveQuantum)
	}
	runtime.GOMAXPROCS(1)
	l := newLibrary(quantum)
	l.mu.Lock()
	l.armTimer()
	l.mu.Unlock()
	lib = l
	logInfo("library initialized", map[string]any{"quantum": quantum})
	return nil
}

func getLib() (*library, error) {
	libMu.Lock()
	defer libMu.Unlock()
	if lib == nil {
		return nil, usageError("uthreads", ErrNotInitialized)
	}
	return lib, nil
}

// Spawn creates a new thread running entry, placed at the back of the
// ready queue, and returns its id. entry runs to completion and then
// behaves as though the thread called Terminate on itself.
func Spawn(entry func()) (int, error) {
	l, err := getLib()
	if err != nil {
		return 0, err
	}
	if entry == nil {
		return 0, usageError("spawn", ErrNilEntryPoint)
	}

	l.mu.Lock()
	id := -1
	for i := 1; i < MaxThreadNum; i++ {
		if l.threads[i] == nil {
			id = i
			break
		}
	}
	if id < 0 {
		l.mu.Unlock()
		return 0, usageError("spawn", ErrTableFull)
	}
	t := newThread(id, entry)
	l.threads[id] = t
	l.ready.PushBack(id)
	l.mu.Unlock()

	logDebug("thread spawned", map[string]any{"tid": id})
	go runThread(l, t)
	return id, nil
}

// runThread is the body of every spawned thread's goroutine: wait for the
// run token, execute the entry point, then terminate as if the thread had
// called Terminate(GetTid()) itself.
func runThread(l *library, t *thread) {
	if alive := l.awaitTurn(t); !alive {
		l.mu.Unlock()
		return
	}
	l.mu.Unlock()
	t.entry()
	terminateSelf(l, t)
}

// Terminate ends the thread identified by tid. Terminating tid 0 (the
// main thread) ends the whole library, matching the original's
// process-wide exit(0) semantics. Terminating the calling thread does not
// return: the goroutine exits via runtime.Goexit after handing off the
// run token, mirroring the original's non-returning siglongjmp-away path.
func Terminate(tid int) error {
	l, err := getLib()
	if err != nil {
		return err
	}

	l.mu.Lock()
	if tid < 0 || tid >= MaxThreadNum || l.threads[tid] == nil {
		l.mu.Unlock()
		return usageError("terminate", ErrUnknownThread)
	}
	if tid == 0 {
		l.mu.Unlock()
		logInfo("main thread terminated, exiting", nil)
		osExit(0)
		return nil
	}

	t := l.threads[tid]
	if tid == l.current {
		l.mu.Unlock()
		terminateSelf(l, t)
		return nil // unreachable: terminateSelf does not return for the caller
	}

	l.ready.Remove(func(id int) bool { return id == tid })
	delete(l.sleeper, tid)
	t.killed = true
	l.threads[tid] = nil
	close(t.finished)
	l.mu.Unlock()

	select {
	case t.resume <- struct{}{}:
	default:
	}
	logDebug("thread terminated", map[string]any{"tid": tid})
	return nil
}

// terminateSelf removes t from scheduling, dispatches the next ready
// thread, and ends the calling goroutine. Called with mu unlocked; never
// returns to its caller.
func terminateSelf(l *library, t *thread) {
	l.mu.Lock()
	next := l.dispatchLocked(t, func() {
		l.threads[t.id] = nil
		close(t.finished)
	})
	l.mu.Unlock()
	logDebug("thread terminated", map[string]any{"tid": t.id})
	if next != nil {
		next.resume <- struct{}{}
	}
	runtime.Goexit()
}

// Block suspends the thread identified by tid until a matching Resume.
// Blocking the main thread (tid 0) is a usage error, matching the
// original: the main thread is never descheduled that way. Blocking the
// calling thread hands off the run token and parks until resumed.
func Block(tid int) error {
	l, err := getLib()
	if err != nil {
		return err
	}

	l.mu.Lock()
	if tid <= 0 || tid >= MaxThreadNum || l.threads[tid] == nil {
		l.mu.Unlock()
		if tid == 0 {
			return usageError("block", ErrMainThreadBlock)
		}
		return usageError("block", ErrUnknownThread)
	}
	t := l.threads[tid]

	if tid != l.current {
		// Blocking a thread that isn't running: remove it from the ready
		// queue if present; if it's sleeping, it stays in the sleep set
		// (spec: BLOCKED + sleeping is a valid joint state) but no longer
		// eligible for Ready promotion when its sleep counter hits zero.
		if t.state == Ready {
			l.ready.Remove(func(id int) bool { return id == tid })
		}
		t.state = Blocked
		l.mu.Unlock()
		logDebug("thread blocked", map[string]any{"tid": tid})
		return nil
	}

	t.state = Blocked
	next := l.dispatchLocked(t, func() {})
	l.mu.Unlock()
	logDebug("thread blocked itself", map[string]any{"tid": tid})
	if next != nil {
		next.resume <- struct{}{}
	}
	l.awaitTurn(t)
	l.mu.Unlock()
	return nil
}

// Resume makes a BLOCKED thread eligible to run again. A thread that is
// blocked and sleeping moves to SleepNotBlocked, not Ready: it still has
// to finish sleeping before it can be dispatched.
func Resume(tid int) error {
	l, err := getLib()
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if tid < 0 || tid >= MaxThreadNum || l.threads[tid] == nil {
		return usageError("resume", ErrUnknownThread)
	}
	t := l.threads[tid]
	if t.state != Blocked {
		return nil
	}
	if _, sleeping := l.sleeper[tid]; sleeping {
		t.state = SleepNotBlocked
		return nil
	}
	t.state = Ready
	l.ready.PushBack(tid)
	logDebug("thread resumed", map[string]any{"tid": tid})
	return nil
}

// Sleep blocks the calling thread for the given number of quantums (its
// own, not wall-clock time): it becomes eligible to run again once that
// many quantum boundaries have elapsed. The main thread may not sleep.
func Sleep(quantums int) error {
	l, err := getLib()
	if err != nil {
		return err
	}
	if quantums <= 0 {
		return usageError("sleep", ErrNonPositiveSleep)
	}

	l.mu.Lock()
	tid := l.current
	if tid == 0 {
		l.mu.Unlock()
		return usageError("sleep", ErrMainThreadSleep)
	}
	t := l.threads[tid]
	t.state = SleepNotBlocked
	// +1: the quantum boundary that puts the thread to sleep is itself
	// decremented immediately by dispatchLocked, so the counter must start
	// one higher than the requested quantum count, matching uthreads.cpp's
	// num_quantums + 1.
	t.sleepRemaining = quantums + 1
	l.sleeper[tid] = struct{}{}
	next := l.dispatchLocked(t, func() {})
	l.mu.Unlock()
	logDebug("thread sleeping", map[string]any{"tid": tid, "quantums": quantums})
	if next != nil {
		next.resume <- struct{}{}
	}
	l.awaitTurn(t)
	l.mu.Unlock()
	return nil
}

// Yield voluntarily surrenders the run token immediately, ending the calling
// thread's current quantum without blocking or sleeping: it goes straight
// back to the ready queue. It has no equivalent in the original signal-
// driven design (there, every instruction is an implicit yield point); it
// exists here as the safe substitute callers use to give other threads a
// turn from inside a loop that would otherwise run forever without ever
// making a library call.
func Yield() error {
	l, err := getLib()
	if err != nil {
		return err
	}
	l.mu.Lock()
	t := l.threads[l.current]
	t.state = Ready
	next := l.dispatchLocked(t, func() { l.ready.PushBack(t.id) })
	l.mu.Unlock()
	if next != nil && next != t {
		next.resume <- struct{}{}
	}
	if next != t {
		l.awaitTurn(t)
		l.mu.Unlock()
	}
	return nil
}

// GetTid returns the calling thread's id.
func GetTid() (int, error) {
	l, err := getLib()
	if err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current, nil
}

// GetTotalQuantums returns the number of quantums elapsed since Init,
// counting the one the main thread starts with.
func GetTotalQuantums() (uint64, error) {
	l, err := getLib()
	if err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalQuantums, nil
}

// GetQuantums returns the number of quantums thread tid has been RUNNING,
// including the one it is currently in if applicable.
func GetQuantums(tid int) (uint64, error) {
	l, err := getLib()
	if err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if tid < 0 || tid >= MaxThreadNum || l.threads[tid] == nil {
		return 0, usageError("get_quantums", ErrUnknownThread)
	}
	return l.threads[tid].quantums, nil
}

// reset tears down the global library. Test-only: exported within the
// package so _test.go files in this package can isolate scenarios from
// each other without a process restart.
func reset() {
	libMu.Lock()
	defer libMu.Unlock()
	if lib != nil && lib.timer != nil {
		lib.timer.Stop()
	}
	lib = nil
}
