// Package errno defines the library's fixed error codes and the shared error
// cell that failing operations write to.
package errno

import "fmt"

// Errno is a library error code. The zero value means no error.
type Errno int32

// Error codes. Values are fixed by the library's C header and must not change.
const (
	ENOMEM  Errno = 1 // out of memory
	EINVAL  Errno = 2 // invalid argument
	ENOENT  Errno = 3 // no such file or directory
	EBADF   Errno = 4 // bad file descriptor
	EMFILE  Errno = 5 // too many open files
	ENOTDIR Errno = 6 // not a directory
	EISDIR  Errno = 7 // is a directory
	EACCES  Errno = 8 // permission denied
)

var names = map[Errno]string{
	ENOMEM:  "ENOMEM",
	EINVAL:  "EINVAL",
	ENOENT:  "ENOENT",
	EBADF:   "EBADF",
	EMFILE:  "EMFILE",
	ENOTDIR: "ENOTDIR",
	EISDIR:  "EISDIR",
	EACCES:  "EACCES",
}

var messages = map[Errno]string{
	ENOMEM:  "out of memory",
	EINVAL:  "invalid argument",
	ENOENT:  "no such file or directory",
	EBADF:   "bad file descriptor",
	EMFILE:  "too many open files",
	ENOTDIR: "not a directory",
	EISDIR:  "is a directory",
	EACCES:  "permission denied",
}

// Error implements error.
func (e Errno) Error() string {
	if msg, ok := messages[e]; ok {
		return msg
	}
	return fmt.Sprintf("errno %d", int32(e))
}

// Name returns the symbolic constant name, e.g. "ENOMEM".
func (e Errno) Name() string {
	if e == 0 {
		return "0"
	}
	if n, ok := names[e]; ok {
		return n
	}
	return fmt.Sprintf("E%d", int32(e))
}

// Cell is the process-wide error slot. Components that fail write their code
// with Set; nothing in the library reads or clears it on the caller's behalf.
//
// NOT thread-safe.
type Cell struct {
	v Errno
}

// Set stores e.
func (c *Cell) Set(e Errno) {
	c.v = e
}

// Get returns the last stored code.
func (c *Cell) Get() Errno {
	return c.v
}

// ParseName maps a symbolic name such as "ENOMEM" (or "0") back to its code.
func ParseName(s string) (Errno, bool) {
	if s == "0" {
		return 0, true
	}
	for e, n := range names {
		if n == s {
			return e, true
		}
	}
	return 0, false
}
