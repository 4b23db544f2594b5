// Package arena provides the contiguous byte range that backs every heap
// allocation.
//
// # Overview
//
// An Arena tracks a high-water mark inside a backing store with a hard upper
// bound. The allocator asks for more space with EnsureCapacity when its free
// list cannot satisfy a request, the same way a C runtime calls sbrk:
//
//	a, err := arena.New(arena.NewStatic(arena.DefaultSize))
//	if err != nil {
//	    return err
//	}
//	base, err := a.EnsureCapacity(4096)
//	if errors.Is(err, arena.ErrOutOfMemory) {
//	    // hard limit reached
//	}
//
// Newly committed bytes are not zeroed by contract; callers needing zeroed
// memory clear it themselves.
//
// # Backing Stores
//
//   - Static: a fixed buffer, committed by bumping the high-water mark.
//   - Mapped: address space reserved up front with mmap(PROT_NONE) and
//     committed page by page with mprotect. Platforms without mmap fall back
//     to a heap buffer.
//
// # Offsets
//
// All positions are byte offsets from the arena base. Offsets are stored in
// 32-bit header fields, so an arena never exceeds MaxTotalSize.
//
// # Thread Safety
//
// Arena instances are not thread-safe.
package arena
