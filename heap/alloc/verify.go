package alloc

import (
	"errors"
	"io"

	"github.com/joshuapare/heapkit/internal/format"
)

// Check walks the whole heap and verifies its bookkeeping:
//   - Blocks tile [0, HighWater) exactly, each linking back to its predecessor
//   - No two free blocks are adjacent
//   - The last-block pointer names the final block
//   - The free list is ascending, acyclic and holds exactly the free blocks
//
// It returns nil or a *CorruptionError. Check does not modify the heap.
func (a *Allocator) Check() error {
	free := make(map[uint32]struct{})
	last := format.NoBlock
	prevFree := false

	it := a.Blocks()
	for {
		blk, err := it.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if blk.Free {
			if prevFree {
				return corruptf("coalesce", blk.Off, "free block follows free block 0x%X", last)
			}
			free[uint32(blk.Off)] = struct{}{}
		}
		prevFree = blk.Free
		last = uint32(blk.Off)
	}

	if a.last != last {
		return corruptf("partition", -1, "last block is 0x%X, tracked 0x%X", last, a.last)
	}

	data := a.arena.Bytes()
	seen := 0
	prev := -1
	for off := a.freeHead; off != format.NoBlock; {
		if _, ok := free[off]; !ok {
			return corruptf("freelist", int(off), "entry is not a free block")
		}
		if int(off) <= prev {
			return corruptf("freelist", int(off), "entry follows 0x%X out of address order", prev)
		}
		seen++
		prev = int(off)
		off = format.ReadU32(data, int(off)+format.NextFreeOffset)
	}
	if seen != len(free) {
		return corruptf("freelist", -1, "list holds %d of %d free blocks", seen, len(free))
	}
	return nil
}
