package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/drew/stratsite/internal/config"
	"github.com/drew/stratsite/internal/preview"
)

func newPreviewCmd(opts *options) *cobra.Command {
	flags := &buildFlags{}
	var addr string

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Build the site and serve it locally",
		Long: `Build the site into the local root, then serve the root over HTTP so the
dynamic dashboard can fetch its index. POST /-/rebuild regenerates the site
without restarting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd.Context(), opts, flags, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8000", "Listen address")
	cmd.Flags().StringSliceVar(&flags.modes, "mode", nil, "Modes to render: dynamic, static (overrides config)")
	cmd.Flags().StringVar(&flags.root, "root", "", "Strategy tree root (overrides config)")

	return cmd
}

func runPreview(ctx context.Context, opts *options, flags *buildFlags, addr string) error {
	log, err := opts.newLogger(opts.debug)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	cfg, err := loadConfig(opts.cfgFile, flags, log)
	if err != nil {
		return err
	}
	if cfg.Publish.Type != config.PublishLocal {
		log.Info("Preview writes to the local root", zap.String("publish", cfg.Publish.Type))
		cfg.Publish.Type = config.PublishLocal
	}
	if !cfg.HasMode(config.ModeDynamic) {
		log.Info("Dynamic mode is off; serving static pages only", zap.Strings("modes", cfg.Site.Modes))
	}

	renderer := opts.renderer()
	if _, err := build(ctx, cfg, log, renderer); err != nil {
		return err
	}

	srv := preview.NewServer(os.DirFS(cfg.Site.Root), log, preview.WithRebuild(func(ctx context.Context) error {
		_, err := build(ctx, cfg, log, opts.renderer())
		return err
	}))

	renderer.RenderServing(cfg.Site.Root, addr)
	return srv.ListenAndServe(ctx, addr)
}
