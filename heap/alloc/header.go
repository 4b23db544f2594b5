package alloc

import "github.com/joshuapare/heapkit/internal/format"

// headerFor returns the block offset owning payload p.
func headerFor(p Ptr) int {
	return int(p) - format.HeaderSize
}

// payloadFor returns the handle for the block at off.
func payloadFor(off int) Ptr {
	return Ptr(off + format.HeaderSize)
}

// readBlock decodes a header the allocator wrote itself, without validation.
func (a *Allocator) readBlock(off int) format.Block {
	data := a.arena.Bytes()
	return format.Block{
		Off:      off,
		Size:     format.ReadU32(data, off+format.SizeOffset),
		Free:     format.ReadU32(data, off+format.TagOffset) == format.FreeTag(off),
		Prev:     format.ReadU32(data, off+format.PrevOffset),
		NextFree: format.ReadU32(data, off+format.NextFreeOffset),
	}
}

func (a *Allocator) writeBlock(blk format.Block) {
	format.PutBlock(a.arena.Bytes(), blk)
}

// linkSuccessor points the block after blk (if any) back at blk.
func (a *Allocator) linkSuccessor(blk format.Block) {
	if end := blk.End(); end < a.arena.HighWater() {
		format.PutPrev(a.arena.Bytes(), end, uint32(blk.Off))
	}
}

// payloadSize rounds a request to the size actually reserved.
func payloadSize(size uint32) (uint32, error) {
	if size < format.MinPayload {
		return format.MinPayload, nil
	}
	need, ok := format.Align16U32(size)
	if !ok {
		return 0, ErrOverflow
	}
	return need, nil
}
