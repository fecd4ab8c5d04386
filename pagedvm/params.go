package pagedvm

// Params configures the simulated address space and physical RAM. Both
// widths are in bits; NumFrames and NumPages are configured directly
// alongside them, matching the original's compile-time constants.
type Params struct {
	// VirtualAddressWidth is the width, in bits, of a virtual address.
	VirtualAddressWidth uint
	// OffsetWidth is the width, in bits, of the offset into a page/frame;
	// also the width of one page-table entry's index portion.
	OffsetWidth uint
	// NumFrames is the number of physical frames in RAM.
	NumFrames uint64
	// NumPages is the universe size used by the cyclic-distance eviction
	// policy; independent of the address width's derived page count.
	NumPages uint64
}

// resolved holds Params plus every value derived from it.
type resolved struct {
	Params
	pageSize     uint64 // words per page/frame/table
	tablesDepth  uint   // number of page-table levels walked per translation
	virtualPages uint64 // total addressable virtual pages, 2^(width-offset)
}

func resolve(p Params) resolved {
	r := resolved{Params: p}
	r.pageSize = 1 << p.OffsetWidth
	pageBits := p.VirtualAddressWidth - p.OffsetWidth
	r.tablesDepth = (pageBits + p.OffsetWidth - 1) / p.OffsetWidth
	r.virtualPages = 1 << pageBits
	return r
}

// rootBits is the width of the topmost page-table index: the remainder of
// VirtualAddressWidth after removing OffsetWidth once per depth below the
// root, or a full OffsetWidth if that remainder is zero.
func (r resolved) rootBits() uint {
	rem := r.VirtualAddressWidth % r.OffsetWidth
	if rem == 0 {
		return r.OffsetWidth
	}
	return rem
}

// pageIndices splits a page number (VirtualAddressWidth-OffsetWidth bits)
// into tablesDepth indices, most-significant first: the root index is
// rootBits wide, every subsequent index is OffsetWidth bits.
func (r resolved) pageIndices(page uint64) []uint64 {
	depth := int(r.tablesDepth)
	indices := make([]uint64, depth)
	remaining := page
	for i := depth - 1; i >= 1; i-- {
		indices[i] = remaining & (r.pageSize - 1)
		remaining >>= r.OffsetWidth
	}
	indices[0] = remaining & (1<<r.rootBits() - 1)
	return indices
}

// cyclicDistance is min(|a-b|, NumPages-|a-b|) over the NumPages universe.
func (r resolved) cyclicDistance(a, b uint64) uint64 {
	var diff uint64
	if a > b {
		diff = a - b
	} else {
		diff = b - a
	}
	other := r.NumPages - diff
	if other < diff {
		return other
	}
	return diff
}

// offsetMask returns a mask selecting the low OffsetWidth bits.
func (r resolved) offsetMask() uint64 {
	return r.pageSize - 1
}

// ramWords is the total addressable word count of physical memory.
func (r resolved) ramWords() uint64 {
	return r.NumFrames * r.pageSize
}
