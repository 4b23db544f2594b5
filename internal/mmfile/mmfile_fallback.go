//go:build !unix

package mmfile

import (
	"fmt"
	"os"
)

// Map reads the entire image when mmap is not available.
func Map(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, func() error { return nil }, err
	}
	if len(data) > MaxImageSize {
		return nil, func() error { return nil }, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(data))
	}
	return data, func() error { return nil }, nil
}
