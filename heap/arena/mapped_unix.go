//go:build linux || darwin || freebsd

package arena

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/joshuapare/heapkit/internal/format"
)

// Mapped is a Backing that reserves its whole limit as inaccessible address
// space and commits pages on demand.
type Mapped struct {
	mem       []byte
	committed int // bytes made read/write, page aligned
	pageSize  int
}

// NewMapped reserves limit bytes (rounded up to the OS page size).
func NewMapped(limit int) (*Mapped, error) {
	if limit <= 0 || limit > MaxTotalSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrBadLimit, limit)
	}
	pageSize := unix.Getpagesize()
	size := format.AlignTo(limit, pageSize)
	if size > MaxTotalSize {
		size = MaxTotalSize
	}

	mem, err := unix.Mmap(-1, 0, size, unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("arena: reserve %d bytes: %w", size, err)
	}
	return &Mapped{mem: mem, pageSize: pageSize}, nil
}

// Commit implements Backing.
func (m *Mapped) Commit(n int) ([]byte, error) {
	if m.mem == nil {
		return nil, ErrClosed
	}
	if n > len(m.mem) {
		return nil, ErrOutOfMemory
	}
	want := min(format.AlignTo(n, m.pageSize), len(m.mem))
	if want > m.committed {
		if err := unix.Mprotect(m.mem[m.committed:want], unix.PROT_READ|unix.PROT_WRITE); err != nil {
			return nil, fmt.Errorf("arena: commit pages: %w", err)
		}
		m.committed = want
	}
	return m.mem[:n], nil
}

// Limit implements Backing.
func (m *Mapped) Limit() int {
	return len(m.mem)
}

// Committed returns the number of bytes currently backed by read/write pages.
func (m *Mapped) Committed() int {
	return m.committed
}

// Release implements Backing.
func (m *Mapped) Release() error {
	if m.mem == nil {
		return nil
	}
	err := unix.Munmap(m.mem)
	m.mem = nil
	m.committed = 0
	if errors.Is(err, unix.EINVAL) {
		// Treat double-unmap as no-op for callers.
		return nil
	}
	return err
}
