package trace

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/joshuapare/heapkit/clib"
	"github.com/joshuapare/heapkit/errno"
	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/internal/buf"
)

// StepResult records the heap state after one step.
type StepResult struct {
	Line  int         `json:"line"`
	Op    string      `json:"op"`
	Ptr   alloc.Ptr   `json:"ptr,omitempty"`
	Errno errno.Errno `json:"errno,omitempty"`
}

// Result is the outcome of a run. Steps holds every step that executed,
// including the failing one.
type Result struct {
	Steps     []StepResult `json:"steps"`
	HighWater int          `json:"high_water"`
}

// Runner replays steps against a heap. Handles persist across Run calls.
type Runner struct {
	heap    *clib.Heap
	log     *slog.Logger
	handles map[string]alloc.Ptr
	sizes   map[string]uint32 // Requested size per handle, used by fill and expect
}

// NewRunner creates a runner over h. A nil logger discards.
func NewRunner(h *clib.Heap, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{
		heap:    h,
		log:     logger,
		handles: make(map[string]alloc.Ptr),
		sizes:   make(map[string]uint32),
	}
}

// Handle returns the pointer currently bound to name.
func (r *Runner) Handle(name string) (alloc.Ptr, bool) {
	p, ok := r.handles[name]
	return p, ok
}

// Run executes steps in order and stops at the first failure. A heap abort is
// recovered and reported as ErrAborted wrapping the *clib.AbortError.
func (r *Runner) Run(steps []Step) (*Result, error) {
	res := &Result{}
	for _, st := range steps {
		p, err := r.exec(st.Op)
		res.Steps = append(res.Steps, StepResult{
			Line:  st.Line,
			Op:    st.Op.String(),
			Ptr:   p,
			Errno: r.heap.Errno().Get(),
		})
		res.HighWater = r.heap.Allocator().Arena().HighWater()
		if err != nil {
			r.log.Debug("step failed", "line", st.Line, "op", st.Op.String(), "err", err)
			return res, &LineError{Line: st.Line, Err: err}
		}
		r.log.Debug("step", "line", st.Line, "op", st.Op.String(), "ptr", uint32(p))
	}
	return res, nil
}

func (r *Runner) exec(op Op) (p alloc.Ptr, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			ae, ok := rec.(*clib.AbortError)
			if !ok {
				panic(rec)
			}
			p, err = alloc.Null, fmt.Errorf("%w: %w", ErrAborted, ae)
		}
	}()

	switch o := op.(type) {
	case OpMalloc:
		p = r.heap.Malloc(o.Size)
		r.bind(o.Dst, p, o.Size)
		return p, nil

	case OpCalloc:
		p = r.heap.Calloc(o.Count, o.Size)
		total, _ := buf.MulOverflowSafeU32(o.Count, o.Size)
		r.bind(o.Dst, p, total)
		return p, nil

	case OpRealloc:
		src, err := r.lookup(o.Src)
		if err != nil {
			return alloc.Null, err
		}
		p = r.heap.Realloc(src, o.Size)
		if p == alloc.Null {
			// Failed: the source keeps its block and the destination gets nothing.
			r.bind(o.Dst, alloc.Null, 0)
			return p, nil
		}
		r.bind(o.Dst, p, o.Size)
		return p, nil

	case OpFree:
		src, err := r.lookup(o.Name)
		if err != nil {
			return alloc.Null, err
		}
		r.heap.Free(src)
		return src, nil

	case OpFill:
		b, err := r.payload(o.Name)
		if err != nil {
			return alloc.Null, err
		}
		for i := range b {
			b[i] = o.Value
		}
		return r.handles[o.Name], nil

	case OpExpect:
		if o.Null {
			got, err := r.lookup(o.Name)
			if err != nil {
				return alloc.Null, err
			}
			if got != alloc.Null {
				return got, fmt.Errorf("%w: %s is 0x%X, want null", ErrExpectation, o.Name, uint32(got))
			}
			return got, nil
		}
		b, err := r.payload(o.Name)
		if err != nil {
			return alloc.Null, err
		}
		for i, v := range b {
			if v != o.Value {
				return r.handles[o.Name], fmt.Errorf("%w: %s[%d] = 0x%02X, want 0x%02X",
					ErrExpectation, o.Name, i, v, o.Value)
			}
		}
		return r.handles[o.Name], nil

	case OpErrno:
		if got := r.heap.Errno().Get(); got != o.Want {
			return alloc.Null, fmt.Errorf("%w: errno %s, want %s", ErrExpectation, got.Name(), o.Want.Name())
		}
		return alloc.Null, nil

	case OpCheck:
		return alloc.Null, r.heap.Allocator().Check()
	}
	return alloc.Null, fmt.Errorf("trace: unsupported op %T", op)
}

func (r *Runner) bind(name string, p alloc.Ptr, size uint32) {
	r.handles[name] = p
	r.sizes[name] = size
}

func (r *Runner) lookup(name string) (alloc.Ptr, error) {
	if name == NullName {
		return alloc.Null, nil
	}
	p, ok := r.handles[name]
	if !ok {
		return alloc.Null, fmt.Errorf("%w: %s", ErrUnknownHandle, name)
	}
	return p, nil
}

// payload returns the requested bytes of name.
func (r *Runner) payload(name string) ([]byte, error) {
	p, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	if p == alloc.Null {
		return nil, fmt.Errorf("%w: %s", ErrNullHandle, name)
	}
	return r.heap.Memory(p, int(r.sizes[name])), nil
}

// IsAbort reports whether err came from a heap abort.
func IsAbort(err error) bool {
	var ae *clib.AbortError
	return errors.As(err, &ae)
}
