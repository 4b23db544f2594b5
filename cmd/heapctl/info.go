package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/internal/format"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Report the arena and block layout configuration",
		Long: `The info command creates a heap with the current flags and reports its
limits and block layout constants.

Example:
  heapctl info
  heapctl info --limit 1048576 --mapped --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo()
		},
	}
	return cmd
}

type heapInfo struct {
	Backing      string `json:"backing"`
	Policy       string `json:"policy"`
	Limit        int    `json:"limit"`
	GrowStep     int    `json:"grow_step"`
	HeaderSize   int    `json:"header_size"`
	Alignment    int    `json:"alignment"`
	MinBlockSize int    `json:"min_block_size"`
}

func runInfo() error {
	h, err := newHeap()
	if err != nil {
		return err
	}
	defer h.Allocator().Close()

	info := heapInfo{
		Backing:      backingName(),
		Policy:       h.Allocator().Policy().String(),
		Limit:        h.Allocator().Arena().TotalSize(),
		GrowStep:     growStep,
		HeaderSize:   format.HeaderSize,
		Alignment:    format.MaxAlign,
		MinBlockSize: format.MinBlockSize,
	}

	if jsonOut {
		return printJSON(info)
	}

	printInfo("\nHeap Configuration:\n")
	printInfo("  Backing:        %s\n", info.Backing)
	printInfo("  Policy:         %s\n", info.Policy)
	printInfo("  Limit:          %s bytes\n", formatCount(info.Limit))
	printInfo("  Grow step:      %s bytes\n", formatCount(info.GrowStep))
	printInfo("  Header size:    %d bytes\n", info.HeaderSize)
	printInfo("  Alignment:      %d bytes\n", info.Alignment)
	printInfo("  Min block size: %d bytes\n", info.MinBlockSize)
	return nil
}
