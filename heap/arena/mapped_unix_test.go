//go:build linux || darwin || freebsd

package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestMappedCommitsPagesOnDemand(t *testing.T) {
	m, err := NewMapped(1 << 20)
	require.NoError(t, err)

	a, err := New(m)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, a.Close())
	}()

	require.Equal(t, 0, m.Committed(), "nothing committed before first growth")

	_, err = a.EnsureCapacity(100)
	require.NoError(t, err)
	page := unix.Getpagesize()
	require.Equal(t, page, m.Committed())

	// Committed pages are writable.
	data := a.Bytes()
	for i := range data {
		data[i] = byte(i)
	}

	_, err = a.EnsureCapacity(page)
	require.NoError(t, err)
	require.Equal(t, 2*page, m.Committed())
	require.Equal(t, byte(99), a.Bytes()[99])
}

func TestMappedLimit(t *testing.T) {
	m, err := NewMapped(64 * 1024)
	require.NoError(t, err)
	a, err := New(m)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.EnsureCapacity(a.TotalSize())
	require.NoError(t, err)
	_, err = a.EnsureCapacity(16)
	require.ErrorIs(t, err, ErrOutOfMemory)
}

func TestMappedRejectsBadLimit(t *testing.T) {
	_, err := NewMapped(0)
	require.ErrorIs(t, err, ErrBadLimit)
	_, err = NewMapped(MaxTotalSize + 1)
	require.ErrorIs(t, err, ErrBadLimit)
}

func TestMappedReleaseTwice(t *testing.T) {
	m, err := NewMapped(4096)
	require.NoError(t, err)
	require.NoError(t, m.Release())
	require.NoError(t, m.Release())

	_, err = m.Commit(16)
	require.ErrorIs(t, err, ErrClosed)
}
