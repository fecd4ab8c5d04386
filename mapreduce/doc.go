// Package mapreduce implements a shared-memory map-reduce engine: a fixed
// pool of worker goroutines cooperatively runs the map, sort, shuffle, and
// reduce phases of a single job over in-process data, synchronizing at two
// barriers so that shuffle (owned by worker 0) only starts once every
// worker's map-and-sort output is ready, and reduce only starts once
// shuffle has produced the grouped-by-key queue.
//
// There is no network, no serialization, and no persistence: inputs and
// outputs are Go values passed by reference, and a job runs entirely
// within one process's memory.
package mapreduce
