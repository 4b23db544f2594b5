//go:build !linux && !darwin && !freebsd

package arena

import "fmt"

// Mapped falls back to a heap buffer where mmap is not available. The whole
// limit is allocated up front.
type Mapped struct {
	Static
	committed int
}

// NewMapped allocates limit bytes.
func NewMapped(limit int) (*Mapped, error) {
	if limit <= 0 || limit > MaxTotalSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrBadLimit, limit)
	}
	return &Mapped{Static: Static{buf: make([]byte, limit)}}, nil
}

// Commit implements Backing.
func (m *Mapped) Commit(n int) ([]byte, error) {
	data, err := m.Static.Commit(n)
	if err == nil {
		m.committed = max(m.committed, n)
	}
	return data, err
}

// Committed returns the number of bytes handed out so far.
func (m *Mapped) Committed() int {
	return m.committed
}
