// stratsite - strategy report site generator
//
// Scans a tree of dated strategy runs and writes a browsable site next to it.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/drew/stratsite/internal/config"
	"github.com/drew/stratsite/internal/logger"
	"github.com/drew/stratsite/internal/ui"
)

// options holds the persistent flags shared by every command
type options struct {
	cfgFile string
	debug   bool
	uiMode  string
	noColor bool

	stdout io.Writer
	// newLogger is replaced in tests
	newLogger func(debug bool) (*zap.Logger, error)
}

func defaultOptions() *options {
	return &options{stdout: os.Stdout, newLogger: logger.New}
}

func newRootCmd(opts *options) *cobra.Command {
	rootFlags := &buildFlags{}

	rootCmd := &cobra.Command{
		Use:   "stratsite",
		Short: "Generate a report site from dated strategy runs",
		Long: `stratsite scans <root>/<strategy>/<date>/{output,forward} folders and writes
a browsable site: a single-page dashboard backed by a JSON index, a set of
linked static pages, or both.

Run without a command to rebuild the site with stratsite.toml or the defaults.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), opts, rootFlags)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", "", "config file path (default: "+config.DefaultConfigPath+" if present)")
	rootCmd.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false, "enable debug mode")
	rootCmd.PersistentFlags().StringVar(&opts.uiMode, "ui", string(ui.UIModeBasic), "UI mode: basic, full")
	rootCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		newBuildCmd(opts),
		newPreviewCmd(opts),
		newValidateCmd(opts),
		newVersionCmd(opts),
	)

	return rootCmd
}

func (o *options) renderer() *ui.Renderer {
	mode := ui.UIModeBasic
	if o.uiMode == string(ui.UIModeFull) {
		mode = ui.UIModeFull
	}
	enableColors := !o.noColor && ui.IsColorEnabled(o.stdout)
	return ui.NewRenderer(o.stdout, mode, enableColors)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd(defaultOptions()).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}
