package alloc

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joshuapare/heapkit/internal/format"
)

// Ptr is an allocation handle: the payload's byte offset from the arena base.
type Ptr uint32

// Null is the null handle. No payload ever starts at offset 0 because every
// payload follows its header.
const Null Ptr = 0

// Policy selects how the free list is searched.
type Policy uint8

const (
	// PolicyFirstFit returns the lowest-addressed free block that fits.
	PolicyFirstFit Policy = iota

	// PolicyBestFit returns the smallest free block that fits, lowest address
	// on ties. It trades a full list scan for less splitting of large blocks.
	PolicyBestFit
)

func (p Policy) String() string {
	switch p {
	case PolicyFirstFit:
		return "first-fit"
	case PolicyBestFit:
		return "best-fit"
	default:
		return fmt.Sprintf("Policy(%d)", uint8(p))
	}
}

// ParsePolicy maps "first-fit"/"best-fit" (or "first"/"best") to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "first-fit", "first", "firstfit":
		return PolicyFirstFit, nil
	case "best-fit", "best", "bestfit":
		return PolicyBestFit, nil
	default:
		return 0, fmt.Errorf("%w: unknown policy %q", ErrBadOption, s)
	}
}

// Options configures an Allocator. The zero value selects the defaults.
type Options struct {
	// Policy selects the free-list search strategy.
	// Default: PolicyFirstFit
	Policy Policy

	// GrowStep is the granule the arena is extended by when no free block
	// fits. Must be a power of two and at least format.MaxAlign.
	// Default: 4096
	GrowStep int

	// Logger receives debug records for growth, splits, coalescing and
	// rejected frees.
	// Default: discard, or stderr when HEAPKIT_LOG_ALLOC is set
	Logger *slog.Logger
}

// Runtime debug flag for allocation logging - controlled by HEAPKIT_LOG_ALLOC env var.
var logAlloc = os.Getenv("HEAPKIT_LOG_ALLOC") != ""

func (o *Options) withDefaults() (Options, error) {
	var out Options
	if o != nil {
		out = *o
	}
	if out.Policy > PolicyBestFit {
		return out, fmt.Errorf("%w: %v", ErrBadOption, out.Policy)
	}
	if out.GrowStep == 0 {
		out.GrowStep = format.PageSize
	}
	if out.GrowStep < format.MaxAlign || out.GrowStep&(out.GrowStep-1) != 0 {
		return out, fmt.Errorf("%w: grow step %d must be a power of two >= %d",
			ErrBadOption, out.GrowStep, format.MaxAlign)
	}
	if out.Logger == nil {
		out.Logger = defaultLogger()
	}
	return out, nil
}

func defaultLogger() *slog.Logger {
	if logAlloc {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
