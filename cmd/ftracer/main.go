package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var release string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ftracer [limit]",
		Short: "Print the function traces of all threads as one timeline",
		Long: `ftracer reads the trace buffers recorded by every thread of an instrumented
program, merges them by timestamp and prints them side by side, indented by
call depth. When limit is set, only the limit most recent timestamps are shown.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       release,
		RunE:          runReport,
	}

	flags := cmd.Flags()
	flags.String("bucket", "", "bucket URL (file://, gs://) or local directory holding the capture (default: working directory)")
	flags.String("snapshot", "", "key of a captured snapshot (.json, .msgpack, optionally .lz4 or .br compressed)")
	flags.String("dumps", "", "key prefix of raw trace buffer dumps (thread-<id>.bin and frequency)")
	flags.String("symbols", "", "ELF executable to resolve function addresses with")
	flags.String("config", "", "configuration file (yaml, toml or json)")
	flags.String("color", "auto", "colorize the header (auto|on|off)")
	cmd.MarkFlagsMutuallyExclusive("snapshot", "dumps")
	cmd.MarkFlagsOneRequired("snapshot", "dumps")

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ftracer:", err)
		os.Exit(1)
	}
}
