package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureCapacityBumpsHighWater(t *testing.T) {
	a, err := New(NewStatic(1024))
	require.NoError(t, err)
	require.Equal(t, 0, a.HighWater())
	require.Equal(t, 1024, a.TotalSize())

	base, err := a.EnsureCapacity(256)
	require.NoError(t, err)
	require.Equal(t, 0, base)
	require.Equal(t, 256, a.HighWater())
	require.Len(t, a.Bytes(), 256)

	base, err = a.EnsureCapacity(512)
	require.NoError(t, err)
	require.Equal(t, 256, base, "second region starts at previous high-water mark")
	require.Equal(t, 256, a.Remaining())
}

func TestEnsureCapacityHardLimit(t *testing.T) {
	a, err := New(NewStatic(512))
	require.NoError(t, err)

	_, err = a.EnsureCapacity(400)
	require.NoError(t, err)

	_, err = a.EnsureCapacity(200)
	require.ErrorIs(t, err, ErrOutOfMemory)
	require.Equal(t, 400, a.HighWater(), "failed growth must not move the high-water mark")

	base, err := a.EnsureCapacity(112)
	require.NoError(t, err, "exact remaining capacity should still be granted")
	require.Equal(t, 400, base)
	require.Equal(t, 0, a.Remaining())
}

func TestEnsureCapacityRejectsNegative(t *testing.T) {
	a, err := New(NewStatic(64))
	require.NoError(t, err)
	_, err = a.EnsureCapacity(-16)
	require.ErrorIs(t, err, ErrBadIncrement)
}

func TestLimitRoundedToAlignment(t *testing.T) {
	a, err := New(NewStatic(100))
	require.NoError(t, err)
	require.Equal(t, 96, a.TotalSize())
}

func TestContains(t *testing.T) {
	a, err := New(NewStatic(128))
	require.NoError(t, err)
	_, err = a.EnsureCapacity(64)
	require.NoError(t, err)

	require.True(t, a.Contains(0, 64))
	require.True(t, a.Contains(48, 16))
	require.False(t, a.Contains(48, 17))
	require.False(t, a.Contains(-1, 1))
}

func TestCommittedBytesAreShared(t *testing.T) {
	backing := make([]byte, 64)
	a, err := New(NewStaticAt(backing))
	require.NoError(t, err)
	_, err = a.EnsureCapacity(32)
	require.NoError(t, err)

	a.Bytes()[5] = 0x5A
	require.Equal(t, byte(0x5A), backing[5])

	_, err = a.EnsureCapacity(16)
	require.NoError(t, err)
	require.Equal(t, byte(0x5A), a.Bytes()[5], "growth keeps earlier contents")
}

func TestGrowHook(t *testing.T) {
	a, err := New(NewStatic(256))
	require.NoError(t, err)

	var calls [][2]int
	a.onGrow = func(base, n int) { calls = append(calls, [2]int{base, n}) }

	_, err = a.EnsureCapacity(32)
	require.NoError(t, err)
	_, err = a.EnsureCapacity(1024)
	require.Error(t, err)
	_, err = a.EnsureCapacity(64)
	require.NoError(t, err)

	require.Equal(t, [][2]int{{0, 32}, {32, 64}}, calls)
}

func TestClose(t *testing.T) {
	a, err := New(NewStatic(64))
	require.NoError(t, err)
	require.NoError(t, a.Close())
	require.NoError(t, a.Close(), "second close is a no-op")

	_, err = a.EnsureCapacity(16)
	require.ErrorIs(t, err, ErrClosed)
}
