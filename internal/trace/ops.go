package trace

import (
	"fmt"

	"github.com/joshuapare/heapkit/errno"
)

// Op is one parsed script operation.
type Op interface {
	fmt.Stringer
	isOp()
}

// OpMalloc binds Dst to malloc(Size).
type OpMalloc struct {
	Dst  string
	Size uint32
}

// OpCalloc binds Dst to calloc(Count, Size).
type OpCalloc struct {
	Dst   string
	Count uint32
	Size  uint32
}

// OpRealloc binds Dst to realloc(Src, Size). Src may be NullName.
type OpRealloc struct {
	Dst  string
	Src  string
	Size uint32
}

// OpFree frees Name. Name may be NullName.
type OpFree struct {
	Name string
}

// OpFill writes Value over the requested bytes of Name.
type OpFill struct {
	Name  string
	Value byte
}

// OpExpect asserts that Name's requested bytes all equal Value, or that Name
// is the null handle when Null is set.
type OpExpect struct {
	Name  string
	Value byte
	Null  bool
}

// OpErrno asserts the heap's errno cell holds Want.
type OpErrno struct {
	Want errno.Errno
}

// OpCheck runs the allocator's full consistency check.
type OpCheck struct{}

func (OpMalloc) isOp()  {}
func (OpCalloc) isOp()  {}
func (OpRealloc) isOp() {}
func (OpFree) isOp()    {}
func (OpFill) isOp()    {}
func (OpExpect) isOp()  {}
func (OpErrno) isOp()   {}
func (OpCheck) isOp()   {}

func (o OpMalloc) String() string {
	return fmt.Sprintf("%s = %s %d", o.Dst, KeywordMalloc, o.Size)
}

func (o OpCalloc) String() string {
	return fmt.Sprintf("%s = %s %d %d", o.Dst, KeywordCalloc, o.Count, o.Size)
}

func (o OpRealloc) String() string {
	return fmt.Sprintf("%s = %s %s %d", o.Dst, KeywordRealloc, o.Src, o.Size)
}

func (o OpFree) String() string {
	return KeywordFree + " " + o.Name
}

func (o OpFill) String() string {
	return fmt.Sprintf("%s %s 0x%02X", KeywordFill, o.Name, o.Value)
}

func (o OpExpect) String() string {
	if o.Null {
		return fmt.Sprintf("%s %s %s", KeywordExpect, o.Name, NullName)
	}
	return fmt.Sprintf("%s %s 0x%02X", KeywordExpect, o.Name, o.Value)
}

func (o OpErrno) String() string {
	return KeywordErrno + " " + o.Want.Name()
}

func (OpCheck) String() string {
	return KeywordCheck
}

// Step is an operation with its source line.
type Step struct {
	Line int
	Op   Op
}
