package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/internal/trace"
)

func TestRunCommand(t *testing.T) {
	resetFlags(t)
	runDump = true

	out, err := captureOutput(t, func() error {
		return runRun([]string{"testdata/basic.trace"})
	})
	require.NoError(t, err)
	assert.Contains(t, out, "a = malloc 64")
	assert.Contains(t, out, "ptr=0x000010")
	assert.Contains(t, out, "errno=ENOMEM")
	assert.Contains(t, out, "High water: 4,096 bytes")
	assert.Contains(t, out, "Blocks:")
	assert.Contains(t, out, "free")
	assert.Contains(t, out, "OK")
}

func TestRunCommandJSON(t *testing.T) {
	resetFlags(t)
	jsonOut = true
	runDump = true
	policy = "best-fit"

	out, err := captureOutput(t, func() error {
		return runRun([]string{"testdata/basic.trace"})
	})
	require.NoError(t, err)

	var got struct {
		Script string        `json:"script"`
		Result *trace.Result `json:"result"`
		Blocks []blockInfo   `json:"blocks"`
		Error  string        `json:"error"`
	}
	decodeJSON(t, out, &got)
	require.Empty(t, got.Error)
	require.Len(t, got.Result.Steps, 15)
	require.Equal(t, alloc.Ptr(16), got.Result.Steps[0].Ptr)
	require.Len(t, got.Blocks, 1, "everything was freed and merged")
	require.True(t, got.Blocks[0].Free)
}

func TestRunCommandAbort(t *testing.T) {
	resetFlags(t)

	out, err := captureOutput(t, func() error {
		return runRun([]string{"testdata/double_free.trace"})
	})
	require.Error(t, err)
	require.ErrorIs(t, err, alloc.ErrDoubleFree)
	assert.Contains(t, err.Error(), "heap aborted")
	assert.NotContains(t, out, "OK")
}

func TestRunCommandMissingScript(t *testing.T) {
	resetFlags(t)
	_, err := captureOutput(t, func() error {
		return runRun([]string{"testdata/does-not-exist.trace"})
	})
	require.ErrorContains(t, err, "failed to open script")
}

func TestRunCommandBadPolicy(t *testing.T) {
	resetFlags(t)
	policy = "worst-fit"
	_, err := captureOutput(t, func() error {
		return runRun([]string{"testdata/basic.trace"})
	})
	require.ErrorIs(t, err, alloc.ErrBadOption)
}

func TestStressCommand(t *testing.T) {
	for _, pol := range []string{"first-fit", "best-fit"} {
		t.Run(pol, func(t *testing.T) {
			resetFlags(t)
			jsonOut = true
			policy = pol

			out, err := captureOutput(t, runStress)
			require.NoError(t, err)

			var rep stressReport
			decodeJSON(t, out, &rep)
			require.Equal(t, 2000, rep.Ops)
			require.Equal(t, pol, rep.Policy)
			require.Positive(t, rep.Mallocs)
			require.Positive(t, rep.Frees)
			require.Positive(t, rep.HighWater)
		})
	}
}

func TestStressCommandUnderPressure(t *testing.T) {
	resetFlags(t)
	jsonOut = true
	limit = 16 * 1024
	stressMaxSize = 4096

	out, err := captureOutput(t, runStress)
	require.NoError(t, err)

	var rep stressReport
	decodeJSON(t, out, &rep)
	require.Positive(t, rep.Failures, "a 16 KiB arena must run out")
	require.LessOrEqual(t, rep.HighWater, 16*1024)
}

func TestStressDeterministic(t *testing.T) {
	run := func() string {
		resetFlags(t)
		jsonOut = true
		stressSeed = 99
		out, err := captureOutput(t, runStress)
		require.NoError(t, err)
		return out
	}
	require.Equal(t, run(), run())
}

func TestStressMapped(t *testing.T) {
	resetFlags(t)
	mapped = true
	limit = 1 << 20

	out, err := captureOutput(t, runStress)
	require.NoError(t, err)
	assert.Contains(t, out, "Heap consistent")
}

func TestInfoCommand(t *testing.T) {
	resetFlags(t)
	limit = 1 << 20

	out, err := captureOutput(t, runInfo)
	require.NoError(t, err)
	assert.Contains(t, out, "1,048,576 bytes")
	assert.Contains(t, out, "first-fit")
	assert.Contains(t, out, "static")

	jsonOut = true
	mapped = true
	out, err = captureOutput(t, runInfo)
	require.NoError(t, err)
	var info heapInfo
	decodeJSON(t, out, &info)
	require.Equal(t, "mapped", info.Backing)
	require.Equal(t, 16, info.HeaderSize)
	require.Equal(t, 32, info.MinBlockSize)
}

func TestInfoCommandBadGrowStep(t *testing.T) {
	resetFlags(t)
	growStep = 100
	_, err := captureOutput(t, runInfo)
	require.ErrorIs(t, err, alloc.ErrBadOption)
}

func TestFormatCount(t *testing.T) {
	require.Equal(t, "262,144", formatCount(262144))
	require.Equal(t, "16", formatCount(16))
}
