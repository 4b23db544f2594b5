// Package alloc implements a coalescing free-list heap allocator over an arena.
//
// # Overview
//
// Every allocation is a block: a 16-byte header followed by its payload. The
// caller receives a Ptr, the payload's offset from the arena base. Blocks tile
// the committed arena with no gaps, and every payload is 16-byte aligned.
//
//	a, err := alloc.NewStatic(arena.DefaultSize, nil)
//	if err != nil {
//	    return err
//	}
//	p, err := a.Malloc(64)
//	if errors.Is(err, alloc.ErrOutOfMemory) {
//	    // arena exhausted
//	}
//	b, _ := a.Bytes(p)
//	copy(b, "hello")
//	_ = a.Free(p)
//
// # Block Header
//
//	Offset  Size  Field
//	0x00    4     Tag (used or free magic, XOR block offset)
//	0x04    4     Payload size (multiple of 16)
//	0x08    4     Previous adjacent block (0xFFFFFFFF for the first)
//	0x0C    4     Next free block (free blocks only)
//
// The tag is bound to the block's own offset, so a header copied elsewhere or
// a pointer into the middle of a payload does not pass as a live block.
//
// # Free List
//
// Free blocks are linked in ascending address order. Malloc takes the first
// block that fits (or the smallest, with PolicyBestFit), splits off any
// remainder large enough to hold a header plus a minimum payload, and on a
// miss extends the arena. Free merges the block with free neighbours on both
// sides at once, so no two free blocks are ever adjacent.
//
// # Misuse Detection
//
// Free, Realloc, UsableSize and Bytes validate their handle first. A handle
// whose header carries the free tag yields ErrDoubleFree; a handle outside the
// arena or without a valid header yields ErrInvalidFree; a header whose
// neighbours disagree with it yields a *CorruptionError. Rejected calls leave
// the heap unchanged. Detection is best-effort: a payload that forges a header
// with consistent neighbours is indistinguishable from a real block.
//
// # Thread Safety
//
// Allocator instances are not thread-safe. Callers serialise access.
package alloc
