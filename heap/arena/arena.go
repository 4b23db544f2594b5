package arena

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// Arena is a growable window [0, HighWater) over a Backing.
type Arena struct {
	backing   Backing
	data      []byte
	highWater int
	total     int
	closed    bool

	// Test hook: called after each successful extension (nil in production)
	onGrow func(base, n int)
}

// New creates an empty arena over b. The usable size is b.Limit() rounded down
// to the payload alignment.
func New(b Backing) (*Arena, error) {
	limit := b.Limit()
	if limit < 0 || limit > MaxTotalSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrBadLimit, limit)
	}
	return &Arena{
		backing: b,
		total:   limit &^ format.MaxAlignMask,
	}, nil
}

// EnsureCapacity extends the high-water mark by additional bytes and returns
// the offset where the new region starts. The new region's contents are
// unspecified.
func (a *Arena) EnsureCapacity(additional int) (int, error) {
	if a.closed {
		return 0, ErrClosed
	}
	if additional < 0 {
		return 0, ErrBadIncrement
	}
	newHigh, ok := buf.AddOverflowSafe(a.highWater, additional)
	if !ok || newHigh > a.total {
		return 0, fmt.Errorf("%w: have %d of %d bytes, requested %d more",
			ErrOutOfMemory, a.highWater, a.total, additional)
	}

	data, err := a.backing.Commit(newHigh)
	if err != nil {
		return 0, fmt.Errorf("arena: commit %d bytes: %w", newHigh, err)
	}

	base := a.highWater
	a.data = data
	a.highWater = newHigh

	if a.onGrow != nil {
		a.onGrow(base, additional)
	}
	return base, nil
}

// Bytes returns the committed region. The slice is invalidated by the next
// EnsureCapacity call.
func (a *Arena) Bytes() []byte {
	return a.data
}

// HighWater returns the number of committed bytes.
func (a *Arena) HighWater() int {
	return a.highWater
}

// TotalSize returns the hard limit in bytes.
func (a *Arena) TotalSize() int {
	return a.total
}

// Remaining returns how many more bytes EnsureCapacity can hand out.
func (a *Arena) Remaining() int {
	return a.total - a.highWater
}

// Contains reports whether [off, off+n) lies inside the committed region.
func (a *Arena) Contains(off, n int) bool {
	return buf.Has(a.data, off, n)
}

// Close releases the backing store. Outstanding payload views become invalid.
func (a *Arena) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	a.data = nil
	return a.backing.Release()
}
