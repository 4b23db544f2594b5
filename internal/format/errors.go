package format

import "errors"

var (
	// ErrTruncated indicates the buffer lacked the bytes required for a header or payload.
	ErrTruncated = errors.New("format: truncated block")
	// ErrBadTag indicates a header tag that is neither a used nor a free tag for its offset.
	ErrBadTag = errors.New("format: bad block tag")
	// ErrMisaligned indicates a block offset or payload size off the MaxAlign grid.
	ErrMisaligned = errors.New("format: misaligned block")
	// ErrBadLink indicates a previous-neighbour link that cannot be valid.
	ErrBadLink = errors.New("format: bad block link")
)
