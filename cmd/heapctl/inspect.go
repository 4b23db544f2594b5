package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/arena"
	"github.com/joshuapare/heapkit/internal/mmfile"
)

func init() {
	rootCmd.AddCommand(newInspectCmd())
}

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <image>",
		Short: "Validate a saved heap image and print its block map",
		Long: `The inspect command maps a heap image written by "heapctl run --save",
rebuilds the allocator state from its block headers, runs the full consistency
check, and prints every block. The image file is never modified.

Example:
  heapctl inspect heap.img
  heapctl inspect heap.img --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(args)
		},
	}
	return cmd
}

type inspectOutput struct {
	Image  string      `json:"image"`
	Size   int         `json:"size"`
	Blocks []blockInfo `json:"blocks"`
}

func runInspect(args []string) error {
	path := args[0]
	printVerbose("Mapping image: %s\n", path)

	data, cleanup, err := mmfile.Map(path)
	if err != nil {
		return fmt.Errorf("failed to map image: %w", err)
	}
	defer cleanup()

	a, err := adoptImage(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := a.Check(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	blocks, err := collectBlocks(a)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(inspectOutput{Image: path, Size: len(data), Blocks: blocks})
	}
	printInfo("\nHeap Image:\n")
	printInfo("  File: %s\n", path)
	printInfo("  Size: %s bytes\n", formatCount(len(data)))
	printBlocks(blocks)
	printInfo("\n  ✓ Heap consistent\n")
	return nil
}

// adoptImage builds an allocator whose committed region is exactly data.
func adoptImage(data []byte) (*alloc.Allocator, error) {
	ar, err := arena.New(arena.NewStaticAt(data))
	if err != nil {
		return nil, err
	}
	if _, err := ar.EnsureCapacity(len(data)); err != nil {
		return nil, fmt.Errorf("image is not a whole number of blocks: %w", err)
	}
	pol, err := alloc.ParsePolicy(policy)
	if err != nil {
		return nil, err
	}
	return alloc.New(ar, &alloc.Options{Policy: pol, GrowStep: growStep, Logger: logger()})
}
