package errno

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodesMatchHeader(t *testing.T) {
	require.Equal(t, Errno(1), ENOMEM)
	require.Equal(t, Errno(2), EINVAL)
	require.Equal(t, Errno(8), EACCES)
}

func TestErrorAndName(t *testing.T) {
	require.Equal(t, "out of memory", ENOMEM.Error())
	require.Equal(t, "ENOMEM", ENOMEM.Name())
	require.Equal(t, "errno 42", Errno(42).Error())
	require.Equal(t, "E42", Errno(42).Name())
	require.Equal(t, "0", Errno(0).Name())

	var err error = EINVAL
	require.True(t, errors.Is(err, EINVAL))
}

func TestCell(t *testing.T) {
	var c Cell
	require.Equal(t, Errno(0), c.Get())
	c.Set(ENOMEM)
	require.Equal(t, ENOMEM, c.Get())
	c.Set(EBADF)
	require.Equal(t, EBADF, c.Get(), "last writer wins")
}

func TestParseName(t *testing.T) {
	for _, e := range []Errno{0, ENOMEM, EINVAL, EISDIR, EACCES} {
		got, ok := ParseName(e.Name())
		require.True(t, ok, e.Name())
		require.Equal(t, e, got)
	}
	_, ok := ParseName("EWHATEVER")
	require.False(t, ok)
}
