package format

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/buf"
)

// Block is a decoded block header.
type Block struct {
	Off      int    // Offset of the header from the arena base
	Size     uint32 // Payload size, header excluded
	Free     bool   // True when the header carries the free tag
	Prev     uint32 // Offset of the previous adjacent block, NoBlock for the first
	NextFree uint32 // Next free block; NoBlock when free and last, unspecified when used
}

// End returns the offset one past the block's payload, which is where the
// following adjacent block starts.
func (b Block) End() int {
	return b.Off + HeaderSize + int(b.Size)
}

// Payload returns the payload offset.
func (b Block) Payload() int {
	return b.Off + HeaderSize
}

// UsedTag returns the tag stored in an allocated header at off.
func UsedTag(off int) uint32 {
	return TagUsed ^ uint32(off)
}

// FreeTag returns the tag stored in a free header at off.
func FreeTag(off int) uint32 {
	return TagFree ^ uint32(off)
}

// DecodeBlock reads and validates the header at off. b must be the committed
// arena, so the block's payload is checked to end within len(b).
func DecodeBlock(b []byte, off int) (Block, error) {
	hdr, ok := buf.Slice(b, off, HeaderSize)
	if !ok {
		return Block{}, fmt.Errorf("block at 0x%X: header: %w", off, ErrTruncated)
	}
	if !IsAligned(off) {
		return Block{}, fmt.Errorf("block at 0x%X: offset: %w", off, ErrMisaligned)
	}

	blk := Block{
		Off:      off,
		Size:     buf.U32LE(hdr[SizeOffset:]),
		Prev:     buf.U32LE(hdr[PrevOffset:]),
		NextFree: buf.U32LE(hdr[NextFreeOffset:]),
	}
	switch buf.U32LE(hdr[TagOffset:]) {
	case UsedTag(off):
	case FreeTag(off):
		blk.Free = true
	default:
		return Block{}, fmt.Errorf("block at 0x%X: %w", off, ErrBadTag)
	}

	if !IsAligned(int(blk.Size)) || blk.Size < MinPayload {
		return Block{}, fmt.Errorf("block at 0x%X: size %d: %w", off, blk.Size, ErrMisaligned)
	}
	if _, ok := buf.Slice(b, off+HeaderSize, int(blk.Size)); !ok {
		return Block{}, fmt.Errorf("block at 0x%X: size %d: %w", off, blk.Size, ErrTruncated)
	}

	if off == 0 {
		if blk.Prev != NoBlock {
			return Block{}, fmt.Errorf("block at 0x%X: first block has prev 0x%X: %w", off, blk.Prev, ErrBadLink)
		}
	} else if blk.Prev == NoBlock || int(blk.Prev)+MinBlockSize > off || !IsAligned(int(blk.Prev)) {
		return Block{}, fmt.Errorf("block at 0x%X: prev 0x%X: %w", off, blk.Prev, ErrBadLink)
	}

	return blk, nil
}

// PutBlock encodes blk's header at blk.Off.
func PutBlock(b []byte, blk Block) {
	tag := UsedTag(blk.Off)
	if blk.Free {
		tag = FreeTag(blk.Off)
	}
	PutU32(b, blk.Off+TagOffset, tag)
	PutU32(b, blk.Off+SizeOffset, blk.Size)
	PutU32(b, blk.Off+PrevOffset, blk.Prev)
	PutU32(b, blk.Off+NextFreeOffset, blk.NextFree)
}

// PutPrev rewrites only the previous-neighbour link of the header at off.
func PutPrev(b []byte, off int, prev uint32) {
	PutU32(b, off+PrevOffset, prev)
}

// PutNextFree rewrites only the free-list link of the header at off.
func PutNextFree(b []byte, off int, next uint32) {
	PutU32(b, off+NextFreeOffset, next)
}
