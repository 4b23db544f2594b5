// Package clib exposes the heap with C library calling conventions: failures
// return the null handle and record a code in an errno cell, and detected
// misuse of free aborts the program.
//
// # Usage
//
//	h, err := clib.NewDefault()
//	if err != nil {
//	    return err
//	}
//	p := h.Malloc(128)
//	if p == alloc.Null {
//	    // h.Errno().Get() == errno.ENOMEM
//	}
//	h.Free(p)
//
// # Abort
//
// Free and Realloc validate their handle. A double free, a pointer the heap
// never returned, or a damaged header panics with *AbortError, the Go
// equivalent of the C runtime calling abort(). Callers that want to recover
// use the error-returning API in heap/alloc instead.
//
// # Thread Safety
//
// Heap instances are not thread-safe.
package clib
