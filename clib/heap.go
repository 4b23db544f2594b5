package clib

import (
	"errors"
	"fmt"

	"github.com/joshuapare/heapkit/errno"
	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/arena"
)

// AbortError is the panic value raised when the heap detects misuse.
type AbortError struct {
	Op  string    // Entry point that detected the misuse
	Ptr alloc.Ptr // Offending handle
	Err error     // Reason reported by the allocator
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("clib: %s(0x%X) aborted: %v", e.Op, uint32(e.Ptr), e.Err)
}

func (e *AbortError) Unwrap() error {
	return e.Err
}

// Heap is a malloc/calloc/realloc/free front end over an Allocator.
type Heap struct {
	alloc *alloc.Allocator
	errno *errno.Cell
}

// New wraps a. Failures are recorded in cell; a nil cell gets a private one.
func New(a *alloc.Allocator, cell *errno.Cell) *Heap {
	if cell == nil {
		cell = &errno.Cell{}
	}
	return &Heap{alloc: a, errno: cell}
}

// NewDefault creates a heap over a static arena of arena.DefaultSize bytes
// using first-fit placement.
func NewDefault() (*Heap, error) {
	a, err := alloc.NewStatic(arena.DefaultSize, nil)
	if err != nil {
		return nil, err
	}
	return New(a, nil), nil
}

// Allocator returns the underlying allocator.
func (h *Heap) Allocator() *alloc.Allocator {
	return h.alloc
}

// Errno returns the cell failures are recorded in.
func (h *Heap) Errno() *errno.Cell {
	return h.errno
}

// Malloc returns a handle to at least size bytes, or alloc.Null with ENOMEM
// recorded. malloc(0) returns a distinct minimum-size block.
func (h *Heap) Malloc(size uint32) alloc.Ptr {
	p, err := h.alloc.Malloc(size)
	if err != nil {
		h.errno.Set(errno.ENOMEM)
		return alloc.Null
	}
	return p
}

// Calloc returns a handle to count*size zeroed bytes, or alloc.Null with
// ENOMEM recorded. An overflowing product fails without allocating.
func (h *Heap) Calloc(count, size uint32) alloc.Ptr {
	p, err := h.alloc.Calloc(count, size)
	if err != nil {
		h.errno.Set(errno.ENOMEM)
		return alloc.Null
	}
	return p
}

// Realloc resizes p. On exhaustion it returns alloc.Null, records ENOMEM, and
// leaves p valid. An invalid p aborts.
func (h *Heap) Realloc(p alloc.Ptr, size uint32) alloc.Ptr {
	np, err := h.alloc.Realloc(p, size)
	if err == nil {
		return np
	}
	if errors.Is(err, alloc.ErrOutOfMemory) {
		h.errno.Set(errno.ENOMEM)
		return alloc.Null
	}
	panic(&AbortError{Op: "realloc", Ptr: p, Err: err})
}

// Free releases p. alloc.Null is a no-op. Any other handle the heap does not
// consider live aborts.
func (h *Heap) Free(p alloc.Ptr) {
	if err := h.alloc.Free(p); err != nil {
		panic(&AbortError{Op: "free", Ptr: p, Err: err})
	}
}

// Memory returns the first n bytes of p's payload. An invalid handle or an n
// beyond the usable size aborts.
func (h *Heap) Memory(p alloc.Ptr, n int) []byte {
	b, err := h.alloc.Bytes(p)
	if err != nil {
		panic(&AbortError{Op: "memory", Ptr: p, Err: err})
	}
	if n < 0 || n > len(b) {
		panic(&AbortError{Op: "memory", Ptr: p,
			Err: fmt.Errorf("clib: %d bytes requested, %d usable", n, len(b))})
	}
	return b[:n]
}
