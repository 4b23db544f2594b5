package alloc

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/joshuapare/heapkit/heap/arena"
	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// Allocator is a coalescing free-list allocator over a single arena.
//   - Blocks carry an inline 16-byte header (see internal/format)
//   - Free blocks form an address-ordered singly linked list
//   - Boundary tags (previous-block offsets) make backward coalescing O(1)
//   - The arena is extended on a miss, merging into a free tail block
//
// NOT thread-safe.
type Allocator struct {
	arena    *arena.Arena
	policy   Policy
	growStep int
	log      *slog.Logger

	freeHead uint32 // First free block, format.NoBlock when the list is empty
	last     uint32 // Last block in arena order, format.NoBlock when the arena is empty
}

// New creates an allocator over a. An arena that already holds blocks (for
// example a reopened mapping) is scanned and its free list rebuilt.
//
// Parameters:
//   - a: The arena to allocate from; the allocator owns it from here on
//   - opts: Policy, growth step and logger (use nil for defaults)
func New(a *arena.Arena, opts *Options) (*Allocator, error) {
	o, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	al := &Allocator{
		arena:    a,
		policy:   o.Policy,
		growStep: o.GrowStep,
		log:      o.Logger,
		freeHead: format.NoBlock,
		last:     format.NoBlock,
	}

	if a.HighWater() > 0 {
		if err := al.initializeFreeList(); err != nil {
			return nil, err
		}
	}
	return al, nil
}

// NewStatic is a convenience constructor for an allocator over a fixed buffer
// of limit bytes.
func NewStatic(limit int, opts *Options) (*Allocator, error) {
	a, err := arena.New(arena.NewStatic(limit))
	if err != nil {
		return nil, err
	}
	return New(a, opts)
}

// Arena returns the backing arena.
func (a *Allocator) Arena() *arena.Arena {
	return a.arena
}

// Policy returns the configured search policy.
func (a *Allocator) Policy() Policy {
	return a.policy
}

// Close releases the arena. All handles become invalid.
func (a *Allocator) Close() error {
	a.freeHead = format.NoBlock
	a.last = format.NoBlock
	return a.arena.Close()
}

// Malloc reserves at least size bytes and returns the payload handle. The
// payload is MaxAlign-aligned relative to the arena base and its contents are
// unspecified. A zero size yields a distinct minimum-size block that must be
// freed like any other.
func (a *Allocator) Malloc(size uint32) (Ptr, error) {
	need, err := payloadSize(size)
	if err != nil {
		return Null, err
	}
	if int64(need)+format.HeaderSize > int64(a.arena.TotalSize()) {
		return Null, fmt.Errorf("%w: %d bytes exceeds arena size %d", ErrOutOfMemory, size, a.arena.TotalSize())
	}

	blk, ok := a.findFit(need)
	if !ok {
		blk, err = a.extend(need)
		if err != nil {
			a.log.Debug("malloc failed", "size", size, "err", err)
			return Null, err
		}
	}

	a.removeFree(blk.Off)
	blk.Free = false
	blk.NextFree = format.NoBlock
	a.writeBlock(blk)
	blk = a.split(blk, need)

	return payloadFor(blk.Off), nil
}

// Calloc reserves count*size bytes and zero-fills the whole payload before
// returning. A product that overflows fails with ErrOverflow and allocates
// nothing.
func (a *Allocator) Calloc(count, size uint32) (Ptr, error) {
	total, ok := buf.MulOverflowSafeU32(count, size)
	if !ok {
		a.log.Debug("calloc overflow", "count", count, "size", size)
		return Null, fmt.Errorf("%w: %d * %d", ErrOverflow, count, size)
	}
	p, err := a.Malloc(total)
	if err != nil {
		return Null, err
	}
	clear(a.payload(a.readBlock(headerFor(p))))
	return p, nil
}

// Free releases the block behind p and coalesces it with free neighbours.
// Null is a no-op. Handles this allocator never returned, or already freed,
// are rejected with ErrInvalidFree, ErrDoubleFree or a *CorruptionError and
// leave the heap unmodified.
func (a *Allocator) Free(p Ptr) error {
	if p == Null {
		return nil
	}
	blk, err := a.resolve(p)
	if err != nil {
		a.log.Error("rejected free", "ptr", uint32(p), "err", err)
		return err
	}
	a.release(blk)
	return nil
}

// Realloc resizes the block behind p to at least size bytes, preserving the
// first min(old, new) bytes. Null behaves like Malloc. The block is shrunk in
// place, grown in place by absorbing a free successor, or moved. On failure p
// is left untouched and still owned by the caller.
func (a *Allocator) Realloc(p Ptr, size uint32) (Ptr, error) {
	if p == Null {
		return a.Malloc(size)
	}
	blk, err := a.resolve(p)
	if err != nil {
		a.log.Error("rejected realloc", "ptr", uint32(p), "err", err)
		return Null, err
	}
	need, err := payloadSize(size)
	if err != nil {
		return Null, err
	}

	if need <= blk.Size {
		a.split(blk, need)
		return p, nil
	}

	if end := blk.End(); end < a.arena.HighWater() {
		next := a.readBlock(end)
		if next.Free && blk.Size+format.HeaderSize+next.Size >= need {
			a.removeFree(next.Off)
			blk.Size += format.HeaderSize + next.Size
			if a.last == uint32(next.Off) {
				a.last = uint32(blk.Off)
			}
			a.writeBlock(blk)
			a.linkSuccessor(blk)
			a.log.Debug("realloc in place", "off", blk.Off, "size", blk.Size)
			a.split(blk, need)
			return p, nil
		}
	}

	np, err := a.Malloc(size)
	if err != nil {
		return Null, err
	}
	// Malloc may have grown the arena; re-read both blocks from fresh views.
	old := a.readBlock(blk.Off)
	copy(a.payload(a.readBlock(headerFor(np))), a.payload(old))
	a.release(old)
	return np, nil
}

// UsableSize returns the payload capacity behind p, which may exceed the size
// originally requested.
func (a *Allocator) UsableSize(p Ptr) (uint32, error) {
	blk, err := a.resolve(p)
	if err != nil {
		return 0, err
	}
	return blk.Size, nil
}

// Bytes returns a view of the payload behind p. The view is invalidated by
// Free, by a moving Realloc, and by arena growth on backings that remap.
func (a *Allocator) Bytes(p Ptr) ([]byte, error) {
	blk, err := a.resolve(p)
	if err != nil {
		return nil, err
	}
	return a.payload(blk), nil
}

func (a *Allocator) payload(blk format.Block) []byte {
	start := blk.Payload()
	return a.arena.Bytes()[start : start+int(blk.Size) : start+int(blk.Size)]
}

// resolve validates that p names a live block of this allocator.
func (a *Allocator) resolve(p Ptr) (format.Block, error) {
	off := headerFor(p)
	if off < 0 || !format.IsAligned(off) || off+format.MinBlockSize > a.arena.HighWater() {
		return format.Block{}, fmt.Errorf("%w: 0x%X outside arena [0x%X, 0x%X)",
			ErrInvalidFree, uint32(p), format.HeaderSize, a.arena.HighWater())
	}

	data := a.arena.Bytes()
	blk, err := format.DecodeBlock(data, off)
	if err != nil {
		return format.Block{}, fmt.Errorf("%w: 0x%X: %w", ErrInvalidFree, uint32(p), err)
	}
	if blk.Free {
		return format.Block{}, fmt.Errorf("%w: 0x%X", ErrDoubleFree, uint32(p))
	}

	if blk.Prev != format.NoBlock {
		prev, err := format.DecodeBlock(data, int(blk.Prev))
		if err != nil {
			return format.Block{}, &CorruptionError{Kind: "header", Offset: off,
				Message: "previous block unreadable", Err: err}
		}
		if prev.End() != off {
			return format.Block{}, corruptf("header", off,
				"previous block 0x%X ends at 0x%X", prev.Off, prev.End())
		}
	}
	if end := blk.End(); end < a.arena.HighWater() {
		next, err := format.DecodeBlock(data, end)
		if err != nil {
			return format.Block{}, &CorruptionError{Kind: "header", Offset: off,
				Message: "next block unreadable", Err: err}
		}
		if next.Prev != uint32(off) {
			return format.Block{}, corruptf("header", off,
				"next block 0x%X links back to 0x%X", next.Off, next.Prev)
		}
	}
	return blk, nil
}

// initializeFreeList rebuilds the free list and last-block pointer from the
// headers already present in the arena.
func (a *Allocator) initializeFreeList() error {
	data := a.arena.Bytes()
	tailFree := format.NoBlock

	it := a.Blocks()
	for {
		b, err := it.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		a.last = uint32(b.Off)
		if !b.Free {
			continue
		}
		format.PutNextFree(data, b.Off, format.NoBlock)
		if tailFree == format.NoBlock {
			a.freeHead = uint32(b.Off)
		} else {
			format.PutNextFree(data, int(tailFree), uint32(b.Off))
		}
		tailFree = uint32(b.Off)
	}
	return nil
}
