// Package trace parses and replays allocation scripts against a clib.Heap.
//
// A script holds one operation per line; blank lines and text after '#' are
// ignored:
//
//	a = malloc 64
//	b = calloc 4 16
//	a = realloc a 128
//	fill a 0xAB
//	expect a 0xAB
//	free b
//	c = malloc 1048576
//	expect c null
//	errno ENOMEM
//	check
package trace

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/joshuapare/heapkit/errno"
)

// Parse reads a whole script.
func Parse(r io.Reader) ([]Step, error) {
	scanner := bufio.NewScanner(r)
	var steps []Step
	line := 0

	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.Index(text, CommentPrefix); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		op, err := parseFields(fields)
		if err != nil {
			return nil, &LineError{Line: line, Err: err}
		}
		steps = append(steps, Step{Line: line, Op: op})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return steps, nil
}

// ParseString is Parse over a string.
func ParseString(s string) ([]Step, error) {
	return Parse(strings.NewReader(s))
}

func parseFields(f []string) (Op, error) {
	if len(f) >= 3 && f[1] == Assign {
		dst := f[0]
		if err := checkName(dst, false); err != nil {
			return nil, err
		}
		return parseCall(dst, f[2], f[3:])
	}

	switch f[0] {
	case KeywordFree:
		if err := wantArgs(f, 1); err != nil {
			return nil, err
		}
		if err := checkName(f[1], true); err != nil {
			return nil, err
		}
		return OpFree{Name: f[1]}, nil

	case KeywordFill:
		if err := wantArgs(f, 2); err != nil {
			return nil, err
		}
		if err := checkName(f[1], false); err != nil {
			return nil, err
		}
		v, err := parseByte(f[2])
		if err != nil {
			return nil, err
		}
		return OpFill{Name: f[1], Value: v}, nil

	case KeywordExpect:
		if err := wantArgs(f, 2); err != nil {
			return nil, err
		}
		if err := checkName(f[1], false); err != nil {
			return nil, err
		}
		if f[2] == NullName {
			return OpExpect{Name: f[1], Null: true}, nil
		}
		v, err := parseByte(f[2])
		if err != nil {
			return nil, err
		}
		return OpExpect{Name: f[1], Value: v}, nil

	case KeywordErrno:
		if err := wantArgs(f, 1); err != nil {
			return nil, err
		}
		e, ok := errno.ParseName(f[1])
		if !ok {
			return nil, fmt.Errorf("%w: unknown errno %q", ErrSyntax, f[1])
		}
		return OpErrno{Want: e}, nil

	case KeywordCheck:
		if err := wantArgs(f, 0); err != nil {
			return nil, err
		}
		return OpCheck{}, nil
	}
	return nil, fmt.Errorf("%w: unknown operation %q", ErrSyntax, f[0])
}

func parseCall(dst, call string, args []string) (Op, error) {
	switch call {
	case KeywordMalloc:
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: %s takes 1 argument", ErrSyntax, call)
		}
		size, err := parseUint(args[0])
		if err != nil {
			return nil, err
		}
		return OpMalloc{Dst: dst, Size: size}, nil

	case KeywordCalloc:
		if len(args) != 2 {
			return nil, fmt.Errorf("%w: %s takes 2 arguments", ErrSyntax, call)
		}
		count, err := parseUint(args[0])
		if err != nil {
			return nil, err
		}
		size, err := parseUint(args[1])
		if err != nil {
			return nil, err
		}
		return OpCalloc{Dst: dst, Count: count, Size: size}, nil

	case KeywordRealloc:
		if len(args) != 2 {
			return nil, fmt.Errorf("%w: %s takes 2 arguments", ErrSyntax, call)
		}
		if err := checkName(args[0], true); err != nil {
			return nil, err
		}
		size, err := parseUint(args[1])
		if err != nil {
			return nil, err
		}
		return OpRealloc{Dst: dst, Src: args[0], Size: size}, nil
	}
	return nil, fmt.Errorf("%w: %q cannot be assigned", ErrSyntax, call)
}

func wantArgs(f []string, n int) error {
	if len(f)-1 != n {
		return fmt.Errorf("%w: %s takes %d argument(s), got %d", ErrSyntax, f[0], n, len(f)-1)
	}
	return nil
}

// checkName accepts identifiers; nullOK additionally admits NullName.
func checkName(s string, nullOK bool) error {
	if s == NullName {
		if nullOK {
			return nil
		}
		return fmt.Errorf("%w: %q is reserved", ErrSyntax, s)
	}
	for i, r := range s {
		ok := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (i > 0 && r >= '0' && r <= '9')
		if !ok {
			return fmt.Errorf("%w: bad handle name %q", ErrSyntax, s)
		}
	}
	return nil
}

func parseUint(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: bad size %q", ErrSyntax, s)
	}
	return uint32(v), nil
}

func parseByte(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: bad byte %q", ErrSyntax, s)
	}
	return byte(v), nil
}
