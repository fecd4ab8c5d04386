package pagedvm

// Translator resolves virtual addresses against a hierarchical page table
// stored in a PhysicalMemory, faulting in tables and pages on demand.
type Translator struct {
	p   resolved
	mem PhysicalMemory
}

// NewTranslator constructs a Translator with its own reference
// PhysicalMemory (see NewTranslatorWithMemory to supply another
// implementation, e.g. one instrumented for tests).
func NewTranslator(params Params) *Translator {
	r := resolve(params)
	return &Translator{p: r, mem: newRAM(r)}
}

// NewTranslatorWithMemory constructs a Translator over a caller-supplied
// PhysicalMemory, already sized for params.
func NewTranslatorWithMemory(params Params, mem PhysicalMemory) *Translator {
	return &Translator{p: resolve(params), mem: mem}
}

// Initialize zeroes frame 0, establishing it as the (initially empty)
// root page table. Must be called before the first Read or Write.
func (t *Translator) Initialize() {
	if ram, ok := t.mem.(*ramMemory); ok {
		ram.clear()
		return
	}
	for slot := uint64(0); slot < t.p.pageSize; slot++ {
		t.mem.WriteWord(slot, 0)
	}
}

// Read returns the word at virtual address va, and whether va was valid.
// An invalid address (out of range, or a translation that would escape
// RAM) yields (0, false), matching the original's "return 0 on failure"
// contract.
func (t *Translator) Read(va uint64) (int64, bool) {
	phys, ok := t.translate(va)
	if !ok {
		return 0, false
	}
	return t.mem.ReadWord(phys), true
}

// Write stores value at virtual address va, returning whether va was
// valid.
func (t *Translator) Write(va uint64, value int64) bool {
	phys, ok := t.translate(va)
	if !ok {
		return false
	}
	t.mem.WriteWord(phys, value)
	return true
}

func (t *Translator) translate(va uint64) (uint64, bool) {
	if va >= 1<<t.p.VirtualAddressWidth {
		return 0, false
	}

	page := va >> t.p.OffsetWidth
	offset := va & t.p.offsetMask()
	indices := t.p.pageIndices(page)

	current := uint64(0)
	for depth, idx := range indices {
		addr := current*t.p.pageSize + idx
		entry := t.mem.ReadWord(addr)
		if entry == 0 {
			leaf := depth == len(indices)-1
			frame := t.fault(current, page)
			if leaf {
				t.mem.Restore(frame, page, t.p.pageSize)
			} else {
				t.zeroFrame(frame)
			}
			t.mem.WriteWord(addr, int64(frame))
			entry = int64(frame)
		}
		current = uint64(entry)
	}

	phys := current*t.p.pageSize + offset
	if phys >= t.p.ramWords() {
		return 0, false
	}
	return phys, true
}

// fault obtains a frame for a missing mapping found while descending
// through excludeFrame, toward targetPage. Priority order per the DFS
// contract: a recyclable empty table, then an unused frame, then
// eviction by maximum cyclic distance.
func (t *Translator) fault(excludeFrame, targetPage uint64) uint64 {
	out := t.dfs(excludeFrame, targetPage)

	if out.haveEmptyTable {
		t.mem.WriteWord(out.emptyParent*t.p.pageSize+out.emptyParentSlot, 0)
		return out.emptyFrame
	}

	if out.maxFrame+1 < t.p.NumFrames {
		return out.maxFrame + 1
	}

	logDebug("evicting page", map[string]any{"frame": out.evictFrame, "page": out.evictPage, "distance": out.evictDistance})
	t.mem.Evict(out.evictFrame, out.evictPage, t.p.pageSize)
	t.mem.WriteWord(out.evictParent*t.p.pageSize+out.evictParentSlot, 0)
	return out.evictFrame
}

func (t *Translator) zeroFrame(frame uint64) {
	base := frame * t.p.pageSize
	for i := uint64(0); i < t.p.pageSize; i++ {
		t.mem.WriteWord(base+i, 0)
	}
}
