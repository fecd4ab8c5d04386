package uthreads

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func initForTest(t *testing.T, quantum time.Duration) {
	t.Helper()
	reset()
	require.NoError(t, Init(quantum))
	t.Cleanup(reset)
}

func TestInitRejectsNonPositiveQuantum(t *testing.T) {
	reset()
	t.Cleanup(reset)
	require.ErrorIs(t, Init(0), ErrNonPositiveQuantum)
}

func TestInitTwiceFails(t *testing.T) {
	initForTest(t, 10*time.Millisecond)
	require.ErrorIs(t, Init(10*time.Millisecond), ErrAlreadyInitialized)
}

func TestSpawnRejectsNilEntry(t *testing.T) {
	initForTest(t, 10*time.Millisecond)
	_, err := Spawn(nil)
	require.ErrorIs(t, err, ErrNilEntryPoint)
}

func TestSpawnAssignsIncreasingIDs(t *testing.T) {
	initForTest(t, 50*time.Millisecond)
	var wg waitN
	wg.reset(2)
	id1, err := Spawn(func() { wg.done() })
	require.NoError(t, err)
	id2, err := Spawn(func() { wg.done() })
	require.NoError(t, err)
	require.Equal(t, 1, id1)
	require.Equal(t, 2, id2)
	wg.wait(t)
}

func TestRoundRobinAdvancesQuantums(t *testing.T) {
	initForTest(t, 5*time.Millisecond)

	var aRuns, bRuns atomic.Int64
	blockA := make(chan struct{})
	blockB := make(chan struct{})

	_, err := Spawn(func() {
		for i := 0; i < 3; i++ {
			aRuns.Add(1)
			_ = Yield()
		}
		close(blockA)
	})
	require.NoError(t, err)

	_, err = Spawn(func() {
		for i := 0; i < 3; i++ {
			bRuns.Add(1)
			_ = Yield()
		}
		close(blockB)
	})
	require.NoError(t, err)

	select {
	case <-blockA:
	case <-time.After(time.Second):
		t.Fatal("thread A did not finish")
	}
	select {
	case <-blockB:
	case <-time.After(time.Second):
		t.Fatal("thread B did not finish")
	}

	require.Equal(t, int64(3), aRuns.Load())
	require.Equal(t, int64(3), bRuns.Load())

	total, err := GetTotalQuantums()
	require.NoError(t, err)
	require.Greater(t, total, uint64(1))
}

func TestSleepThenBlockInteraction(t *testing.T) {
	initForTest(t, 10*time.Millisecond)

	woke := make(chan struct{})
	var tid1 int
	id1, err := Spawn(func() {
		require.NoError(t, Sleep(3))
		close(woke)
	})
	require.NoError(t, err)
	tid1 = id1

	id2, err := Spawn(func() {
		// block thread 1 while it is sleeping: it should become BLOCKED
		// but remain in the sleep set.
		time.Sleep(5 * time.Millisecond)
		require.NoError(t, Block(tid1))
	})
	require.NoError(t, err)
	_ = id2

	select {
	case <-woke:
		t.Fatal("sleeping+blocked thread woke without an explicit Resume")
	case <-time.After(100 * time.Millisecond):
	}

	require.NoError(t, Resume(tid1))

	select {
	case <-woke:
	case <-time.After(time.Second):
		t.Fatal("thread did not wake after Resume")
	}
}

func TestTerminateMainThreadExits(t *testing.T) {
	initForTest(t, 10*time.Millisecond)
	var exitCode int
	old := osExit
	osExit = func(code int) { exitCode = code }
	defer func() { osExit = old }()

	require.NoError(t, Terminate(0))
	require.Equal(t, 0, exitCode)
}

func TestGetQuantumsUnknownThread(t *testing.T) {
	initForTest(t, 10*time.Millisecond)
	_, err := GetQuantums(99)
	require.ErrorIs(t, err, ErrUnknownThread)
}

// waitN is a tiny done-counting barrier, used instead of sync.WaitGroup so
// tests can both signal completion and assert on call counts without a
// race between Wait and Add.
type waitN struct {
	ch chan struct{}
	n  atomic.Int64
}

func (w *waitN) reset(n int64) {
	w.ch = make(chan struct{})
	w.n.Store(n)
}

func (w *waitN) done() {
	if w.n.Add(-1) == 0 {
		close(w.ch)
	}
}

func (w *waitN) wait(t *testing.T) {
	t.Helper()
	select {
	case <-w.ch:
	case <-time.After(time.Second):
		t.Fatal("waitN: timed out")
	}
}
