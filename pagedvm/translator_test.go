package pagedvm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func smallParams() Params {
	return Params{
		VirtualAddressWidth: 14,
		OffsetWidth:         2,
		NumFrames:           8,
		NumPages:            1 << 12,
	}
}

func TestColdReadThenWrite(t *testing.T) {
	tr := NewTranslator(smallParams())
	tr.Initialize()

	v, ok := tr.Read(0x1234 & (1<<14 - 1))
	require.True(t, ok)
	require.Equal(t, int64(0), v)

	require.True(t, tr.Write(0x1234&(1<<14-1), 42))
	v, ok = tr.Read(0x1234 & (1<<14 - 1))
	require.True(t, ok)
	require.Equal(t, int64(42), v)
}

func TestOutOfRangeAddressFails(t *testing.T) {
	tr := NewTranslator(smallParams())
	tr.Initialize()

	_, ok := tr.Read(1 << 20)
	require.False(t, ok)
}

func TestEvictionUnderFramePressure(t *testing.T) {
	p := Params{
		VirtualAddressWidth: 12,
		OffsetWidth:         2,
		NumFrames:           6, // very tight: one translation path alone (root, 4 tables, page) fills all 6
		NumPages:            1 << 10,
	}
	tr := NewTranslator(p)
	tr.Initialize()

	// Touch more distinct pages than frames can hold without reuse.
	pageSize := uint64(1) << p.OffsetWidth
	for i := uint64(0); i < 6; i++ {
		va := i * pageSize
		require.True(t, tr.Write(va, int64(i+1)))
	}

	// Every write should be independently readable (read-your-writes),
	// even though some pages were necessarily evicted and restored along
	// the way.
	for i := uint64(0); i < 6; i++ {
		va := i * pageSize
		v, ok := tr.Read(va)
		require.True(t, ok)
		require.Equal(t, int64(i+1), v)
	}
}

func TestCyclicDistance(t *testing.T) {
	r := resolved{Params: Params{NumPages: 10}}
	require.Equal(t, uint64(3), r.cyclicDistance(1, 4))
	require.Equal(t, uint64(2), r.cyclicDistance(1, 9)) // wraps: 10-8=2
	require.Equal(t, uint64(0), r.cyclicDistance(5, 5))
}
