// Package mmfile loads and stores heap images: the committed bytes of an
// arena written to a file so a heap can be inspected or resumed later.
package mmfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joshuapare/heapkit/heap/arena"
)

// MaxImageSize is the largest image accepted, the same bound as an arena.
const MaxImageSize = arena.MaxTotalSize

// ErrTooLarge indicates an image bigger than any arena can hold.
var ErrTooLarge = errors.New("mmfile: image too large")

// Save writes data to path through a synced temporary file in the same
// directory and renames it into place, so readers never see a partial image.
func Save(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".heapkit-img-*")
	if err != nil {
		return fmt.Errorf("mmfile: create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	// Clean up temp file on error
	defer func() {
		if tmp != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("mmfile: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("mmfile: sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("mmfile: close temp file: %w", err)
	}
	tmp = nil

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("mmfile: rename temp file: %w", err)
	}
	return nil
}
