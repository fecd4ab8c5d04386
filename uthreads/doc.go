// Package uthreads implements a preemptive user-level thread library: a
// single process-wide scheduler multiplexes cooperating goroutines onto
// one logical "running" slot at a time, round-robin over a ready queue,
// with quantum-driven preemption, sleep, and block/resume semantics.
//
// Only one user thread is ever logically running at once, matching a
// single-CPU cooperative-under-preemption design: this package does not
// give user threads OS-level parallelism, only the illusion of it.
package uthreads
