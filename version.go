package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func newVersionCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(opts.stdout, "stratsite %s\n", Version)
			fmt.Fprintf(opts.stdout, "  Git commit: %s\n", GitCommit)
			fmt.Fprintf(opts.stdout, "  Build time: %s\n", BuildTime)
		},
	}
}
