package arena

const (
	// DefaultSize is the default hard limit for a static arena (256 KiB, the
	// size of the external work RAM on a Game Boy Advance).
	DefaultSize = 256 * 1024

	// MaxTotalSize is the largest arena supported. Block headers store 32-bit
	// offsets and reserve 0xFFFFFFFF as a sentinel.
	MaxTotalSize = 1 << 31
)

// Backing is the store an Arena commits memory from.
type Backing interface {
	// Commit makes the first n bytes addressable and returns a view of them.
	// n never decreases between calls and never exceeds Limit().
	Commit(n int) ([]byte, error)

	// Limit returns the hard upper bound in bytes.
	Limit() int

	// Release returns any OS resources. The backing must not be used afterwards.
	Release() error
}

// Static is a Backing over a fixed buffer.
type Static struct {
	buf []byte
}

// NewStatic allocates a fixed buffer of size bytes.
func NewStatic(size int) *Static {
	if size < 0 {
		size = 0
	}
	return &Static{buf: make([]byte, size)}
}

// NewStaticAt wraps a caller-supplied buffer. The caller must not touch buf
// while the arena is in use.
func NewStaticAt(buf []byte) *Static {
	return &Static{buf: buf}
}

// Commit implements Backing.
func (s *Static) Commit(n int) ([]byte, error) {
	if n > len(s.buf) {
		return nil, ErrOutOfMemory
	}
	return s.buf[:n], nil
}

// Limit implements Backing.
func (s *Static) Limit() int {
	return len(s.buf)
}

// Release implements Backing.
func (s *Static) Release() error {
	s.buf = nil
	return nil
}
