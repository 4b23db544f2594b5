package alloc

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestAllocator creates an allocator over a fresh static arena of limit bytes.
func newTestAllocator(t testing.TB, limit int, opts *Options) *Allocator {
	t.Helper()
	a, err := NewStatic(limit, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

// mustMalloc allocates size bytes and fills the payload with fill.
func mustMalloc(t testing.TB, a *Allocator, size uint32, fill byte) Ptr {
	t.Helper()
	p, err := a.Malloc(size)
	require.NoError(t, err)
	require.NotEqual(t, Null, p)
	b, err := a.Bytes(p)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(b), int(size))
	for i := range b {
		b[i] = fill
	}
	return p
}

// requireFilled asserts the first n payload bytes of p all equal fill.
func requireFilled(t testing.TB, a *Allocator, p Ptr, n int, fill byte) {
	t.Helper()
	b, err := a.Bytes(p)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(b), n)
	require.Equal(t, bytes.Repeat([]byte{fill}, n), b[:n], "payload at 0x%X", uint32(p))
}

// requireHealthy runs the full heap check.
func requireHealthy(t testing.TB, a *Allocator) {
	t.Helper()
	require.NoError(t, a.Check())
}

// freeBlocks returns the offsets of all free blocks in address order.
func freeBlocks(t testing.TB, a *Allocator) []int {
	t.Helper()
	var out []int
	it := a.Blocks()
	for {
		blk, err := it.Next()
		if err != nil {
			require.ErrorIs(t, err, io.EOF)
			return out
		}
		if blk.Free {
			out = append(out, blk.Off)
		}
	}
}
