package format

// Alignment utilities for block layout.

// Align16U32 rounds a requested payload size up to MaxAlign. ok is false when
// rounding would wrap past the uint32 range.
func Align16U32(n uint32) (aligned uint32, ok bool) {
	if n > ^uint32(0)-MaxAlignMask {
		return 0, false
	}
	return (n + MaxAlignMask) &^ MaxAlignMask, true
}

// AlignTo returns n rounded up to a multiple of step. step must be a power of two.
//
// Example:
//
//	AlignTo(1, 4096)    = 4096
//	AlignTo(4096, 4096) = 4096
//	AlignTo(4097, 4096) = 8192
func AlignTo(n, step int) int {
	return (n + step - 1) & ^(step - 1)
}

// IsAligned reports whether n is a multiple of MaxAlign.
func IsAligned(n int) bool {
	return n&MaxAlignMask == 0
}
