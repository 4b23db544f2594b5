package alloc

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/arena"
	"github.com/joshuapare/heapkit/internal/format"
)

type liveBlock struct {
	ptr  Ptr
	size uint32
	fill byte
}

// Test_Property_RandomOps_NoOverlap runs a fixed-seed mix of malloc, calloc,
// realloc and free, checking after every step that the heap is consistent,
// that live payloads never overlap, and that none was clobbered.
func Test_Property_RandomOps_NoOverlap(t *testing.T) {
	for _, policy := range []Policy{PolicyFirstFit, PolicyBestFit} {
		t.Run(policy.String(), func(t *testing.T) {
			a := newTestAllocator(t, arena.DefaultSize, &Options{Policy: policy})
			rng := rand.New(rand.NewSource(42))
			var live []liveBlock
			var fill byte

			for step := 0; step < 2000; step++ {
				op := rng.Intn(4)
				if len(live) >= 48 {
					op = 3
				}
				fill++

				switch op {
				case 0: // malloc
					size := uint32(rng.Intn(1024))
					live = append(live, liveBlock{mustMalloc(t, a, size, fill), size, fill})

				case 1: // calloc
					count, size := uint32(rng.Intn(16)), uint32(rng.Intn(64))
					p, err := a.Calloc(count, size)
					require.NoError(t, err, "step %d", step)
					requireFilled(t, a, p, int(count*size), 0)
					b, _ := a.Bytes(p)
					for i := range b {
						b[i] = fill
					}
					live = append(live, liveBlock{p, count * size, fill})

				case 2: // realloc
					if len(live) == 0 {
						continue
					}
					i := rng.Intn(len(live))
					size := uint32(rng.Intn(1024))
					p, err := a.Realloc(live[i].ptr, size)
					require.NoError(t, err, "step %d", step)
					kept := min(size, live[i].size)
					requireFilled(t, a, p, int(kept), live[i].fill)
					b, _ := a.Bytes(p)
					for j := range b {
						b[j] = fill
					}
					live[i] = liveBlock{p, size, fill}

				case 3: // free
					if len(live) == 0 {
						continue
					}
					i := rng.Intn(len(live))
					require.NoError(t, a.Free(live[i].ptr), "step %d", step)
					live = slices.Delete(live, i, i+1)
				}

				require.NoError(t, a.Check(), "step %d", step)
				requireDisjoint(t, a, live)
			}

			for _, lb := range live {
				requireFilled(t, a, lb.ptr, int(lb.size), lb.fill)
				require.NoError(t, a.Free(lb.ptr))
			}
			requireHealthy(t, a)
			require.Len(t, freeBlocks(t, a), 1)
		})
	}
}

// requireDisjoint asserts that the live blocks, header included, do not overlap.
func requireDisjoint(t *testing.T, a *Allocator, live []liveBlock) {
	t.Helper()
	sorted := slices.Clone(live)
	slices.SortFunc(sorted, func(x, y liveBlock) int { return int(x.ptr) - int(y.ptr) })

	end := 0
	for _, lb := range sorted {
		usable, err := a.UsableSize(lb.ptr)
		require.NoError(t, err)
		require.GreaterOrEqual(t, usable, lb.size)
		start := int(lb.ptr) - format.HeaderSize
		require.GreaterOrEqual(t, start, end, "block at 0x%X overlaps its predecessor", start)
		end = int(lb.ptr) + int(usable)
	}
	require.LessOrEqual(t, end, a.Arena().HighWater())
}
