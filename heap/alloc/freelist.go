package alloc

import (
	"errors"
	"fmt"

	"github.com/joshuapare/heapkit/heap/arena"
	"github.com/joshuapare/heapkit/internal/format"
)

// The free list is singly linked through each free header's NextFree field
// and kept in ascending address order. Address order makes first-fit prefer
// low memory, which keeps the arena's tail free for sbrk-style extension.

// findFit returns the free block chosen by the allocator's policy for a
// payload of need bytes.
func (a *Allocator) findFit(need uint32) (format.Block, bool) {
	var (
		best  format.Block
		found bool
	)
	for off := a.freeHead; off != format.NoBlock; {
		blk := a.readBlock(int(off))
		if blk.Size >= need {
			if a.policy == PolicyFirstFit {
				return blk, true
			}
			// Strict < keeps the earliest block on equal sizes.
			if !found || blk.Size < best.Size {
				best, found = blk, true
				if blk.Size == need {
					break
				}
			}
		}
		off = blk.NextFree
	}
	return best, found
}

// insertFree links the free block at off into the list at its address position.
func (a *Allocator) insertFree(off int) {
	data := a.arena.Bytes()
	target := uint32(off)

	if a.freeHead == format.NoBlock || a.freeHead > target {
		format.PutNextFree(data, off, a.freeHead)
		a.freeHead = target
		return
	}

	prev := a.freeHead
	for {
		next := format.ReadU32(data, int(prev)+format.NextFreeOffset)
		if next == format.NoBlock || next > target {
			format.PutNextFree(data, off, next)
			format.PutNextFree(data, int(prev), target)
			return
		}
		prev = next
	}
}

// removeFree unlinks the free block at off. It reports false when the block
// is not on the list.
func (a *Allocator) removeFree(off int) bool {
	data := a.arena.Bytes()
	target := uint32(off)

	if a.freeHead == target {
		a.freeHead = format.ReadU32(data, off+format.NextFreeOffset)
		return true
	}
	for prev := a.freeHead; prev != format.NoBlock; {
		next := format.ReadU32(data, int(prev)+format.NextFreeOffset)
		if next == target {
			format.PutNextFree(data, int(prev), format.ReadU32(data, off+format.NextFreeOffset))
			return true
		}
		if next > target {
			return false
		}
		prev = next
	}
	return false
}

// split trims blk to need bytes of payload and releases the remainder as a new
// free block, provided the remainder holds a header plus a minimum payload.
// Smaller slack stays with blk as internal padding. blk must already be marked
// used and unlinked from the free list. Returns the (possibly trimmed) block.
func (a *Allocator) split(blk format.Block, need uint32) format.Block {
	rem := blk.Size - need
	if rem < format.MinBlockSize {
		return blk
	}

	blk.Size = need
	a.writeBlock(blk)

	tail := format.Block{
		Off:  blk.End(),
		Size: rem - format.HeaderSize,
		Prev: uint32(blk.Off),
	}
	if a.last == uint32(blk.Off) {
		a.last = uint32(tail.Off)
	}
	// Write the tail as used so release sees a consistent block.
	a.writeBlock(tail)
	a.linkSuccessor(tail)

	a.log.Debug("split", "off", blk.Off, "keep", need, "remainder", tail.Size)
	a.release(tail)
	return blk
}

// release marks a used block free and merges it with free neighbours on both
// sides before linking the result into the free list.
func (a *Allocator) release(blk format.Block) {
	// Forward: the block that starts where blk ends.
	if end := blk.End(); end < a.arena.HighWater() {
		next := a.readBlock(end)
		if next.Free {
			a.removeFree(next.Off)
			blk.Size += format.HeaderSize + next.Size
			if a.last == uint32(next.Off) {
				a.last = uint32(blk.Off)
			}
			a.log.Debug("coalesce forward", "off", blk.Off, "absorbed", next.Off, "size", blk.Size)
		}
	}

	// Backward: the block named by the boundary tag.
	if blk.Prev != format.NoBlock {
		prev := a.readBlock(int(blk.Prev))
		if prev.Free {
			a.removeFree(prev.Off)
			prev.Size += format.HeaderSize + blk.Size
			if a.last == uint32(blk.Off) {
				a.last = uint32(prev.Off)
			}
			a.log.Debug("coalesce backward", "off", prev.Off, "absorbed", blk.Off, "size", prev.Size)
			// The absorbed header keeps its free tag so a second free of
			// the same handle is still recognised.
			blk.Free = true
			a.writeBlock(blk)
			blk = prev
		}
	}

	blk.Free = true
	blk.NextFree = format.NoBlock
	a.writeBlock(blk)
	a.linkSuccessor(blk)
	a.insertFree(blk.Off)
}

// extend grows the arena so that a free block of at least need payload bytes
// exists, and returns that block (still on the free list). When the last block
// is free only the shortfall is requested and merged into it.
func (a *Allocator) extend(need uint32) (format.Block, error) {
	var tail format.Block
	tailFree := false
	if a.last != format.NoBlock {
		tail = a.readBlock(int(a.last))
		tailFree = tail.Free
	}

	want := format.HeaderSize + int(need)
	if tailFree {
		want = int(need - tail.Size)
	}

	grow := format.AlignTo(want, a.growStep)
	if grow > a.arena.Remaining() {
		// Round-up does not fit; an exact extension still might.
		grow = want
	}

	base, err := a.arena.EnsureCapacity(grow)
	if err != nil {
		if errors.Is(err, arena.ErrOutOfMemory) {
			return format.Block{}, fmt.Errorf("%w: %d byte payload: %w", ErrOutOfMemory, need, err)
		}
		return format.Block{}, err
	}
	a.log.Debug("grow", "base", base, "bytes", grow, "highWater", a.arena.HighWater())

	if tailFree {
		tail.Size += uint32(grow)
		a.writeBlock(tail)
		return tail, nil
	}

	blk := format.Block{
		Off:      base,
		Size:     uint32(grow - format.HeaderSize),
		Free:     true,
		Prev:     a.last,
		NextFree: format.NoBlock,
	}
	a.writeBlock(blk)
	a.last = uint32(base)
	a.insertFree(base)
	return blk, nil
}
