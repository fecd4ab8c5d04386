package mapreduce

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/avikfir/mapreduce/internal/ringqueue"
	"golang.org/x/exp/constraints"
	"golang.org/x/sync/errgroup"
)

// shuffleGroup is one post-shuffle work item: every intermediate pair
// sharing the same key, ready for a single Reduce call.
type shuffleGroup[K2 any, V2 any] struct {
	key    K2
	values []V2
}

// Job is both the handle returned by StartJob and the pipeline's shared
// state: claim counters, the per-worker intermediate vectors, the
// post-shuffle work queue, and the output vector.
type Job[K1, V1 any, K2 constraints.Ordered, V2, K3, V3 any] struct {
	client     Client[K1, V1, K2, V2, K3, V3]
	input      []InputPair[K1, V1]
	numWorkers int

	mapClaimed  atomic.Int64 // next unclaimed input index
	mapFinished atomic.Int64 // pairs Map has returned from, for MAP progress
	mapDone     atomic.Int64 // count of workers that finished map+sort
	// totalPairs is -1 until the last worker to finish map+sort publishes
	// it, before the first barrier (worker 0 does not compute it at the
	// start of shuffle), hardening the original's unguarded shared int*
	// against a torn read: a percentage read sees either -1 or the final
	// count, never a partially-written one.
	totalPairs atomic.Int64

	intermediate [][]intermediatePair[K2, V2] // one slice per worker, map+sort output

	shuffleMu      sync.Mutex
	shuffleQueue   *ringqueue.Queue[shuffleGroup[K2, V2]] // push-front, pop-back work queue
	shuffleEmitted atomic.Int64                           // pairs grouped so far, for SHUFFLE progress
	shuffleDone    atomic.Bool

	reduceEmitted atomic.Int64 // pairs reduced so far, for REDUCE progress

	outMu  sync.Mutex
	output []OutputPair[K3, V3]

	barrier1 *cyclicBarrier
	barrier2 *cyclicBarrier

	done chan struct{}
	err  error
}

// StartJob begins a job over input, using numWorkers goroutines to run the
// map, sort, shuffle, and reduce phases. It returns immediately; use
// Job.Wait to block for completion.
func StartJob[K1, V1 any, K2 constraints.Ordered, V2, K3, V3 any](
	client Client[K1, V1, K2, V2, K3, V3],
	input []InputPair[K1, V1],
	numWorkers int,
) (*Job[K1, V1, K2, V2, K3, V3], error) {
	if client == nil {
		return nil, usageError("start_job", ErrNilClient)
	}
	if numWorkers <= 0 {
		return nil, usageError("start_job", ErrNonPositiveWorkers)
	}

	j := &Job[K1, V1, K2, V2, K3, V3]{
		client:       client,
		input:        input,
		numWorkers:   numWorkers,
		intermediate: make([][]intermediatePair[K2, V2], numWorkers),
		shuffleQueue: ringqueue.New[shuffleGroup[K2, V2]](numWorkers),
		barrier1:     newCyclicBarrier(numWorkers),
		barrier2:     newCyclicBarrier(numWorkers),
		done:         make(chan struct{}),
	}
	j.totalPairs.Store(-1)

	logInfo("job started", map[string]any{"inputs": len(input), "workers": numWorkers})

	go j.run()

	return j, nil
}

func (j *Job[K1, V1, K2, V2, K3, V3]) run() {
	defer close(j.done)

	var eg errgroup.Group
	for w := 0; w < j.numWorkers; w++ {
		w := w
		eg.Go(func() error {
			return j.worker(w)
		})
	}
	j.err = eg.Wait()

	logInfo("job finished", map[string]any{"outputs": len(j.output), "err": j.err})
}

func (j *Job[K1, V1, K2, V2, K3, V3]) worker(id int) error {
	j.mapPhase(id)

	if !j.barrier1.await() {
		return nil
	}
	if id == 0 {
		j.shuffle()
	}
	if !j.barrier2.await() {
		return nil
	}

	j.reducePhase()
	return nil
}

// mapPhase repeatedly claims the next unclaimed input index until the
// input is exhausted, calling Client.Map for each, then sorts this
// worker's own intermediate vector by key ahead of the shuffle phase.
func (j *Job[K1, V1, K2, V2, K3, V3]) mapPhase(id int) {
	var mine []intermediatePair[K2, V2]
	ctx := &MapContext[K2, V2]{pairs: &mine}

	n := int64(len(j.input))
	for {
		i := j.mapClaimed.Add(1) - 1
		if i >= n {
			break
		}
		pair := j.input[i]
		j.client.Map(pair.Key, pair.Value, ctx)
		j.mapFinished.Add(1)
	}

	sort.Slice(mine, func(a, b int) bool { return mine[a].Key < mine[b].Key })
	j.intermediate[id] = mine

	if j.mapDone.Add(1) == int64(j.numWorkers) {
		var total int64
		for _, v := range j.intermediate {
			total += int64(len(v))
		}
		j.totalPairs.Store(total)
	}
}

// shuffle runs on worker 0 only, after every worker's map+sort output is
// final. It repeatedly takes the maximum remaining key across all
// per-worker vectors (each sorted ascending, so the maximum is always at
// the back) and pops every pair sharing that key into one group, pushed
// onto the front of the shared reduce work queue — matching the
// push-front/pop-back discipline that keeps the queue in production
// order even though reduce pops from the opposite end it's filled from.
func (j *Job[K1, V1, K2, V2, K3, V3]) shuffle() {
	defer j.shuffleDone.Store(true)

	for {
		maxWorker := -1
		var maxKey K2
		for w, v := range j.intermediate {
			if len(v) == 0 {
				continue
			}
			k := v[len(v)-1].Key
			if maxWorker < 0 || k > maxKey {
				maxWorker = w
				maxKey = k
			}
		}
		if maxWorker < 0 {
			return
		}

		var group []V2
		for w, v := range j.intermediate {
			for len(v) > 0 && v[len(v)-1].Key == maxKey {
				group = append(group, v[len(v)-1].Value)
				v = v[:len(v)-1]
			}
			j.intermediate[w] = v
		}
		j.shuffleQueue.PushFront(shuffleGroup[K2, V2]{key: maxKey, values: group})
		j.shuffleEmitted.Add(int64(len(group)))
	}
}

// reducePhase pops groups off the back of the shared work queue until it
// is empty, calling Client.Reduce for each.
func (j *Job[K1, V1, K2, V2, K3, V3]) reducePhase() {
	ctx := &ReduceContext[K3, V3]{mu: &j.outMu, out: &j.output}

	for {
		j.shuffleMu.Lock()
		if j.shuffleQueue.Empty() {
			j.shuffleMu.Unlock()
			return
		}
		group := j.shuffleQueue.PopBack()
		j.shuffleMu.Unlock()

		j.client.Reduce(group.key, group.values, ctx)
		j.reduceEmitted.Add(int64(len(group.values)))
	}
}

// Wait blocks until the job finishes or ctx is canceled.
func (j *Job[K1, V1, K2, V2, K3, V3]) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-j.done:
		return j.err
	}
}

// State returns a point-in-time progress snapshot. It is intentionally
// lock-free, matching the original's getJobState: an exact read would
// require the same synchronization as the phases themselves, which would
// needlessly serialize progress queries against worker throughput.
// Percentage is computed from the monotonic counters exactly as
// documented: map-finished/|input| during MAP, shuffle-emitted/
// total-pairs-after-map during SHUFFLE, reduce-emitted/
// total-pairs-after-map during REDUCE.
func (j *Job[K1, V1, K2, V2, K3, V3]) State() JobState {
	select {
	case <-j.done:
		return JobState{Stage: ReduceStage, Percentage: 100}
	default:
	}

	total := j.totalPairs.Load()
	if total < 0 {
		finished := j.mapFinished.Load()
		n := int64(len(j.input))
		if n == 0 {
			return JobState{Stage: MapStage, Percentage: 100}
		}
		return JobState{Stage: MapStage, Percentage: pct(finished, n)}
	}

	if !j.shuffleDone.Load() {
		if total == 0 {
			return JobState{Stage: ShuffleStage, Percentage: 100}
		}
		return JobState{Stage: ShuffleStage, Percentage: pct(j.shuffleEmitted.Load(), total)}
	}

	if total == 0 {
		return JobState{Stage: ReduceStage, Percentage: 100}
	}
	return JobState{Stage: ReduceStage, Percentage: pct(j.reduceEmitted.Load(), total)}
}

// pct computes a clamped completion percentage, guarding against the
// transient over-100 reads a lock-free snapshot can observe mid-phase.
func pct(done, total int64) float32 {
	if done > total {
		done = total
	}
	return 100 * float32(done) / float32(total)
}

// Output returns the job's output vector. Only safe to call after Wait
// has returned.
func (j *Job[K1, V1, K2, V2, K3, V3]) Output() []OutputPair[K3, V3] {
	return j.output
}

// Close waits for the job to finish, then releases its resources. A
// job's goroutines always run to completion on their own (there is no
// cancellation midway through a phase), so there is nothing to release
// beyond joining: the handle's slices and maps are reclaimed by the
// garbage collector once the caller drops the reference.
func (j *Job[K1, V1, K2, V2, K3, V3]) Close() error {
	return j.Wait(context.Background())
}
