package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/heapkit/clib"
	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/arena"
)

var (
	// Global flags
	verbose  bool
	quiet    bool
	jsonOut  bool
	limit    int
	policy   string
	mapped   bool
	growStep int
)

var rootCmd = &cobra.Command{
	Use:   "heapctl",
	Short: "Exercise and inspect the heapkit allocator",
	Long: `heapctl drives the heapkit allocator from the command line. It replays
allocation scripts, runs randomized stress workloads with full heap checks,
and reports how an arena is configured.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output and allocator debug logging")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().IntVar(&limit, "limit", arena.DefaultSize, "Arena hard limit in bytes")
	rootCmd.PersistentFlags().StringVar(&policy, "policy", "first-fit", "Free-list policy: first-fit or best-fit")
	rootCmd.PersistentFlags().BoolVar(&mapped, "mapped", false, "Back the arena with an mmap reservation")
	rootCmd.PersistentFlags().IntVar(&growStep, "grow-step", 4096, "Arena growth granule in bytes (power of two)")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

// newHeap builds a heap from the global flags.
func newHeap() (*clib.Heap, error) {
	pol, err := alloc.ParsePolicy(policy)
	if err != nil {
		return nil, err
	}

	var backing arena.Backing
	if mapped {
		m, err := arena.NewMapped(limit)
		if err != nil {
			return nil, err
		}
		backing = m
	} else {
		backing = arena.NewStatic(limit)
	}

	ar, err := arena.New(backing)
	if err != nil {
		return nil, err
	}
	a, err := alloc.New(ar, &alloc.Options{Policy: pol, GrowStep: growStep, Logger: logger()})
	if err != nil {
		_ = ar.Close()
		return nil, err
	}
	printVerbose("Arena: %s bytes, %s backing, %s\n", formatCount(ar.TotalSize()), backingName(), pol)
	return clib.New(a, nil), nil
}

// logger returns a stderr debug logger under --verbose, otherwise a discard logger.
func logger() *slog.Logger {
	if verbose && !quiet {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func backingName() string {
	if mapped {
		return "mapped"
	}
	return "static"
}

var printer = message.NewPrinter(language.English)

// formatCount renders n with thousands separators.
func formatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
