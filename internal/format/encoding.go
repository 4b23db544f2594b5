package format

import "github.com/joshuapare/heapkit/internal/buf"

// PutU32 writes a uint32 value to the buffer at the given offset in little-endian format.
func PutU32(b []byte, off int, v uint32) {
	buf.PutU32LE(b[off:off+4], v)
}

// ReadU32 reads a uint32 value from the buffer at the given offset in little-endian format.
func ReadU32(b []byte, off int) uint32 {
	return buf.U32LE(b[off : off+4])
}
