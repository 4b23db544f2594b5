package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/internal/mmfile"
	"github.com/joshuapare/heapkit/internal/trace"
)

var (
	runDump bool
	runSave string
)

func init() {
	cmd := newRunCmd()
	cmd.Flags().BoolVar(&runDump, "dump", false, "Print the block map after the script")
	cmd.Flags().StringVar(&runSave, "save", "", "Write the final heap image to this file")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Replay an allocation script",
		Long: `The run command parses an allocation script and executes it against a
fresh heap, printing the handle and errno after every step. The command fails
on the first expectation that does not hold or when the heap aborts.

Example:
  heapctl run testdata/basic.trace
  heapctl run script.trace --policy best-fit --dump
  heapctl run script.trace --save heap.img
  heapctl run - < script.trace --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(args)
		},
	}
	return cmd
}

type blockInfo struct {
	Offset int    `json:"offset"`
	Size   uint32 `json:"size"`
	Free   bool   `json:"free"`
}

type runOutput struct {
	Script string        `json:"script"`
	Result *trace.Result `json:"result"`
	Blocks []blockInfo   `json:"blocks,omitempty"`
	Error  string        `json:"error,omitempty"`
}

func runRun(args []string) error {
	path := args[0]
	steps, err := readScript(path)
	if err != nil {
		return err
	}
	printVerbose("Parsed %d steps from %s\n", len(steps), path)

	h, err := newHeap()
	if err != nil {
		return err
	}
	defer h.Allocator().Close()

	res, runErr := trace.NewRunner(h, logger()).Run(steps)

	if runSave != "" && runErr == nil {
		if err := mmfile.Save(runSave, h.Allocator().Arena().Bytes()); err != nil {
			return err
		}
		printVerbose("Saved %s bytes to %s\n", formatCount(h.Allocator().Arena().HighWater()), runSave)
	}

	var blocks []blockInfo
	if runDump {
		blocks, err = collectBlocks(h.Allocator())
		if err != nil && runErr == nil {
			runErr = err
		}
	}

	if jsonOut {
		out := runOutput{Script: path, Result: res, Blocks: blocks}
		if runErr != nil {
			out.Error = runErr.Error()
		}
		if err := printJSON(out); err != nil {
			return err
		}
		return runErr
	}

	for _, st := range res.Steps {
		line := fmt.Sprintf("%4d  %-28s", st.Line, st.Op)
		if st.Ptr != alloc.Null {
			line += fmt.Sprintf("  ptr=0x%06X", uint32(st.Ptr))
		}
		if st.Errno != 0 {
			line += "  errno=" + st.Errno.Name()
		}
		printInfo("%s\n", line)
	}
	printInfo("\nHigh water: %s bytes\n", formatCount(res.HighWater))

	if runDump {
		printBlocks(blocks)
	}

	if runErr != nil {
		if trace.IsAbort(runErr) {
			return fmt.Errorf("heap aborted: %w", runErr)
		}
		return runErr
	}
	printInfo("OK\n")
	return nil
}

func readScript(path string) ([]trace.Step, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open script: %w", err)
		}
		defer f.Close()
		r = f
	}
	steps, err := trace.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return steps, nil
}

func collectBlocks(a *alloc.Allocator) ([]blockInfo, error) {
	var out []blockInfo
	it := a.Blocks()
	for {
		blk, err := it.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, blockInfo{Offset: blk.Off, Size: blk.Size, Free: blk.Free})
	}
}

func printBlocks(blocks []blockInfo) {
	printInfo("\nBlocks:\n")
	for _, b := range blocks {
		state := "used"
		if b.Free {
			state = "free"
		}
		printInfo("  0x%06X  %10s  %s\n", b.Offset, formatCount(int(b.Size)), state)
	}
}
