package uthreads

// StackSize is the externally specified per-thread stack allocation, in
// bytes, per spec.md §6. Go threads are backed by goroutines rather than
// raw stacks, so this constant is retained only for API fidelity (e.g. to
// size a scratch buffer an entry point may request) and is not otherwise
// consumed by the scheduler.
const StackSize = 64 * 1024

// thread is this library's analogue of the original Thread class
// (original_source/Ex2/Thread.{h,cpp}): identity, state, quantum counter,
// sleep counter, and the mechanism used to resume execution. In place of
// a sigjmp_buf, a thread's "saved context" is simply its parked goroutine,
// blocked on resume until the scheduler hands it the run token again.
type thread struct {
	id             int
	entry          func()
	state          State
	quantums       uint64
	sleepRemaining int
	resume         chan struct{}
	finished       chan struct{}
	killed         bool
}

// newThread mirrors Thread(thread_entry_point): quantum counter starts at
// 0 (incremented to 1 on first dispatch by the scheduler, per spec.md §9's
// note on original_source/Ex2/Thread.cpp).
func newThread(id int, entry func()) *thread {
	return &thread{
		id:       id,
		entry:    entry,
		state:    Ready,
		resume:   make(chan struct{}, 1),
		finished: make(chan struct{}),
	}
}

// newMainThread mirrors Thread()'s main-thread-only constructor: quantum
// counter starts at 1, state RUNNING immediately.
func newMainThread() *thread {
	return &thread{
		id:       0,
		state:    Running,
		quantums: 1,
		resume:   make(chan struct{}, 1),
		finished: make(chan struct{}),
	}
}
