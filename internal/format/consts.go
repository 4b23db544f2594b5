// Package format describes the in-arena byte layout of heap blocks. The goal
// is to keep header encoding and validation in one place, allocation-free, and
// independent from the allocator so diagnostics and tests can decode an arena
// without going through the allocator's bookkeeping.
package format

const (
	// HeaderSize is the number of bytes of metadata preceding every block
	// payload, free or in use.
	//
	// Header layout (little-endian):
	//
	//	Offset  Size  Description
	//	0x00    4     Tag. TagUsed or TagFree, XORed with the block's own offset.
	//	0x04    4     Payload size in bytes (excludes the header).
	//	0x08    4     Offset of the previous adjacent block, NoBlock for the first.
	//	0x0C    4     Offset of the next free block. Meaningful only while free.
	HeaderSize = 16

	// TagOffset, SizeOffset, PrevOffset and NextFreeOffset locate the header
	// fields relative to the block start.
	TagOffset      = 0x00
	SizeOffset     = 0x04
	PrevOffset     = 0x08
	NextFreeOffset = 0x0C

	// MaxAlign is the alignment guaranteed for every payload. Block offsets and
	// payload sizes are both multiples of it, and the header is exactly one
	// alignment unit, so payloads inherit the arena base alignment.
	MaxAlign = 16

	// MaxAlignMask is MaxAlign-1, used for rounding.
	MaxAlignMask = MaxAlign - 1

	// MinPayload is the smallest payload a block ever carries. Zero-byte
	// requests are rounded up to it so each one gets a distinct handle.
	MinPayload = MaxAlign

	// MinBlockSize is the smallest span a block can occupy in the arena.
	MinBlockSize = HeaderSize + MinPayload

	// PageSize is the default arena growth granule.
	PageSize = 0x1000
)

const (
	// NoBlock marks an absent block link (no previous neighbour, end of the
	// free list).
	NoBlock uint32 = 0xFFFFFFFF

	// TagUsed marks an allocated block header.
	TagUsed uint32 = 0xA110CA7E

	// TagFree marks a free block header.
	TagFree uint32 = 0xF4EEB10C
)
