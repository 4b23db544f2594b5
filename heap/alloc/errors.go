package alloc

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfMemory indicates that no free block was large enough and the arena could not grow.
	ErrOutOfMemory = errors.New("alloc: out of memory")

	// ErrOverflow indicates a size computation (count * size, alignment rounding) that
	// does not fit the size type. It matches ErrOutOfMemory under errors.Is.
	ErrOverflow = fmt.Errorf("alloc: size overflow: %w", ErrOutOfMemory)

	// ErrInvalidFree indicates a pointer that was never returned by this allocator.
	ErrInvalidFree = errors.New("alloc: pointer not owned by allocator")

	// ErrDoubleFree indicates an attempt to free a block that is already free.
	ErrDoubleFree = errors.New("alloc: block already free")

	// ErrCorrupt indicates allocator bookkeeping that fails validation.
	ErrCorrupt = errors.New("alloc: heap corruption detected")

	// ErrBadOption indicates an invalid Options field.
	ErrBadOption = errors.New("alloc: invalid option")
)

// CorruptionError describes a failed heap invariant.
type CorruptionError struct {
	Kind    string // Which invariant failed, e.g. "partition", "freelist"
	Offset  int    // Block offset, or -1 when not tied to one block
	Message string
	Err     error // Underlying decode error, if any
}

func (e *CorruptionError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Offset >= 0 {
		return fmt.Sprintf("alloc: %s at offset 0x%X: %s", e.Kind, e.Offset, msg)
	}
	return fmt.Sprintf("alloc: %s: %s", e.Kind, msg)
}

// Is reports ErrCorrupt as a match so callers can test the category.
func (e *CorruptionError) Is(target error) bool {
	return target == ErrCorrupt
}

func (e *CorruptionError) Unwrap() error {
	return e.Err
}

func corruptf(kind string, off int, format string, args ...any) *CorruptionError {
	return &CorruptionError{Kind: kind, Offset: off, Message: fmt.Sprintf(format, args...)}
}
