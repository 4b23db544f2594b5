package alloc

import (
	"io"

	"github.com/joshuapare/heapkit/internal/format"
)

// BlockIterator walks the arena's blocks in address order.
type BlockIterator struct {
	data []byte
	off  int
	prev uint32
	done bool
}

// Blocks returns an iterator over every block, used and free. Mutating the
// allocator while iterating invalidates the iterator.
func (a *Allocator) Blocks() *BlockIterator {
	return &BlockIterator{
		data: a.arena.Bytes(),
		prev: format.NoBlock,
	}
}

// Next returns the next block, io.EOF after the last one, or a
// *CorruptionError when a header does not decode or does not link back to its
// predecessor. The iterator stops after the first error.
func (it *BlockIterator) Next() (format.Block, error) {
	if it.done || it.off >= len(it.data) {
		it.done = true
		return format.Block{}, io.EOF
	}

	blk, err := format.DecodeBlock(it.data, it.off)
	if err != nil {
		it.done = true
		return format.Block{}, &CorruptionError{Kind: "partition", Offset: it.off,
			Message: "undecodable header", Err: err}
	}
	if blk.Prev != it.prev {
		it.done = true
		return format.Block{}, corruptf("partition", it.off,
			"prev link 0x%X, want 0x%X", blk.Prev, it.prev)
	}

	it.prev = uint32(blk.Off)
	it.off = blk.End()
	return blk, nil
}
