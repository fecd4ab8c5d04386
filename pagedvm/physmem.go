package pagedvm

// PhysicalMemory is the simulated RAM a Translator reads and writes by
// word address (frame*pageSize + offset). Reconstructed from the
// translator's call sites: every access is a single-word read or write at
// an absolute physical address, with no notion of a "page" below this
// layer — paging is entirely the Translator's concern.
type PhysicalMemory interface {
	// ReadWord returns the word stored at addr.
	ReadWord(addr uint64) int64
	// WriteWord stores value at addr.
	WriteWord(addr uint64, value int64)
	// Evict flushes the contents of frame (pageSize words starting at
	// frame*pageSize) to backing store under the given virtual page
	// number, ahead of the frame being repurposed.
	Evict(frame, page uint64, pageSize uint64)
	// Restore loads the given virtual page's previously evicted contents
	// (or zero-fills, if it was never evicted) into frame.
	Restore(frame, page uint64, pageSize uint64)
}

// ramMemory is the reference PhysicalMemory: a flat, zero-initialized
// word array sized to hold NumFrames frames, with an in-memory map
// standing in for the backing store (swap file) the original assignment
// writes evicted pages to.
type ramMemory struct {
	words   []int64
	backing map[uint64][]int64
}

func newRAM(r resolved) *ramMemory {
	return &ramMemory{
		words:   make([]int64, r.ramWords()),
		backing: make(map[uint64][]int64),
	}
}

func (m *ramMemory) ReadWord(addr uint64) int64 {
	return m.words[addr]
}

func (m *ramMemory) WriteWord(addr uint64, value int64) {
	m.words[addr] = value
}

func (m *ramMemory) Evict(frame, page, pageSize uint64) {
	saved := make([]int64, pageSize)
	copy(saved, m.words[frame*pageSize:(frame+1)*pageSize])
	m.backing[page] = saved
}

func (m *ramMemory) Restore(frame, page, pageSize uint64) {
	dst := m.words[frame*pageSize : (frame+1)*pageSize]
	if saved, ok := m.backing[page]; ok {
		copy(dst, saved)
		return
	}
	for i := range dst {
		dst[i] = 0
	}
}

func (m *ramMemory) clear() {
	for i := range m.words {
		m.words[i] = 0
	}
	m.backing = make(map[uint64][]int64)
}
