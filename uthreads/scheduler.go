package uthreads

import (
	"sync"
	"time"

	"github.com/avikfir/uthreads/internal/ringqueue"
)

// MaxThreadNum bounds the number of concurrently live threads (including
// the main thread), matching the original assignment's fixed-size thread
// table.
const MaxThreadNum = 100

// library is the process-wide scheduler: exactly one is ever constructed
// per process (see Init), mirroring the original's static globals.
type library struct {
	mu sync.Mutex

	threads [MaxThreadNum]*thread
	ready   *ringqueue.Queue[int]
	sleeper map[int]struct{}

	current  int
	quantum  time.Duration
	timer    *time.Timer
	timerGen uint64

	totalQuantums uint64
}

var (
	libMu sync.Mutex
	lib   *library
)

func newLibrary(quantum time.Duration) *library {
	l := &library{
		ready:         ringqueue.New[int](MaxThreadNum),
		sleeper:       make(map[int]struct{}),
		totalQuantums: 1,
	}
	l.quantum = quantum
	main := newMainThread()
	l.threads[0] = main
	l.current = 0
	return l
}

// armTimer (re)arms the quantum timer. Called with mu held. A monotonic
// generation counter guards against a stale timer firing after a newer one
// has already been armed (Stop does not reliably drain an in-flight fire).
func (l *library) armTimer() {
	l.timerGen++
	gen := l.timerGen
	if l.timer != nil {
		l.timer.Stop()
	}
	l.timer = time.AfterFunc(l.quantum, func() { l.onTimerFire(gen) })
}

func (l *library) onTimerFire(gen uint64) {
	l.mu.Lock()
	if gen != l.timerGen {
		// superseded by a context switch that already rearmed the timer
		l.mu.Unlock()
		return
	}
	cur := l.threads[l.current]
	next := l.dispatchLocked(cur, func() {
		cur.state = Ready
		l.ready.PushBack(cur.id)
	})
	l.mu.Unlock()
	if next != nil {
		next.resume <- struct{}{}
	}
}

// dispatchLocked performs one quantum boundary: the caller first arranges
// for the outgoing thread's post-boundary placement via requeue (e.g. push
// to ready, push to sleep set, or nothing at all if it terminated), then
// dispatchLocked advances the sleep counters, pops the next ready thread,
// promotes it to RUNNING, bumps the global and per-thread quantum counters,
// and rearms the timer. Must be called with mu held; returns the thread
// that should be signalled to resume (nil only if no thread is runnable,
// which cannot happen while the main thread exists).
func (l *library) dispatchLocked(outgoing *thread, requeue func()) *thread {
	requeue()

	for id := range l.sleeper {
		t := l.threads[id]
		if t == nil {
			delete(l.sleeper, id)
			continue
		}
		t.sleepRemaining--
		if t.sleepRemaining <= 0 {
			delete(l.sleeper, id)
			if t.state == SleepNotBlocked {
				t.state = Ready
				l.ready.PushBack(t.id)
			}
			// state == Blocked: stays blocked, just no longer sleeping.
		}
	}

	var nextID int
	for {
		if l.ready.Empty() {
			fatal(&PlatformError{Op: "dispatch", Cause: errNoRunnableThread})
			return nil
		}
		nextID = l.ready.PopFront()
		if l.threads[nextID] != nil {
			break
		}
	}
	next := l.threads[nextID]
	next.state = Running
	next.quantums++
	l.current = nextID
	l.totalQuantums++
	l.armTimer()
	return next
}

// awaitTurn parks the calling goroutine until its thread is current or
// killed, looping to absorb spurious wakeups from stale generations.
// Called without mu held; returns with mu held. The bool result is false
// if the thread was terminated by another thread while waiting, in which
// case the caller must not run the thread's entry point.
func (l *library) awaitTurn(t *thread) bool {
	for {
		l.mu.Lock()
		if t.killed {
			return false
		}
		if l.current == t.id {
			return true
		}
		l.mu.Unlock()
		<-t.resume
	}
}
