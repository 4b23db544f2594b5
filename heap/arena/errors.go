package arena

import "errors"

var (
	// ErrOutOfMemory indicates the request would push the high-water mark past the hard limit.
	ErrOutOfMemory = errors.New("arena: out of memory")

	// ErrBadIncrement indicates a negative growth request. Arenas never shrink.
	ErrBadIncrement = errors.New("arena: negative increment")

	// ErrBadLimit indicates a backing store whose limit cannot be addressed with 32-bit offsets.
	ErrBadLimit = errors.New("arena: unusable size limit")

	// ErrClosed indicates use of an arena after Close.
	ErrClosed = errors.New("arena: closed")
)
