package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/drew/stratsite/internal/config"
	"github.com/drew/stratsite/internal/metrics"
	"github.com/drew/stratsite/internal/site"
	"github.com/drew/stratsite/internal/ui"
)

// buildFlags override the loaded configuration
type buildFlags struct {
	modes []string
	root  string
}

func newBuildCmd(opts *options) *cobra.Command {
	flags := &buildFlags{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Scan the tree and write the site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), opts, flags)
		},
	}

	cmd.Flags().StringSliceVar(&flags.modes, "mode", nil, "Modes to render: dynamic, static (overrides config)")
	cmd.Flags().StringVar(&flags.root, "root", "", "Strategy tree root (overrides config)")

	return cmd
}

// loadConfig merges the config file with defaults, applies flag overrides
// and validates the result. Warnings are logged.
func loadConfig(path string, flags *buildFlags, log *zap.Logger) (config.Config, error) {
	loaded, err := config.LoadConfig(path)
	if err != nil {
		return config.Config{}, err
	}
	if loaded == nil {
		log.Debug("No config file found, using defaults")
	}
	cfg := config.MergeWithDefaults(loaded)

	if flags != nil {
		if len(flags.modes) > 0 {
			cfg.Site.Modes = flags.modes
		}
		if flags.root != "" {
			cfg.Site.Root = flags.root
		}
	}

	result := config.ValidateConfig(&cfg)
	for _, w := range result.Warnings {
		log.Warn("Config warning", zap.String("field", w.Field), zap.String("message", w.Message))
	}
	if err := result.Err(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func runBuild(ctx context.Context, opts *options, flags *buildFlags) error {
	log, err := opts.newLogger(opts.debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := loadConfig(opts.cfgFile, flags, log)
	if err != nil {
		return err
	}

	renderer := opts.renderer()
	_, err = build(ctx, cfg, log, renderer)
	return err
}

// build runs one pipeline pass and prints its summary
func build(ctx context.Context, cfg config.Config, log *zap.Logger, renderer *ui.Renderer) (*site.Report, error) {
	runID := uuid.NewString()
	log = log.With(zap.String("run_id", runID))
	renderer.RenderHeader(runID[:8], cfg.Site.Root, cfg.Site.Modes, cfg.Publish.Type)

	reg := metrics.NewRegistry()
	pipeline, err := site.NewPipeline(cfg, site.WithLogger(log), site.WithMetrics(reg))
	if err != nil {
		return nil, err
	}

	report, err := pipeline.Run(ctx)
	if err != nil {
		renderer.RenderError(err)
		return nil, err
	}
	renderer.RenderSummary(report)

	log.Info("Site built",
		zap.Int("strategies", len(report.Index.Strategies)),
		zap.Int("dates", report.Index.DateCount()),
		zap.Int("files", report.Total()),
		zap.Int("parse_errors", report.ParseErrors),
		zap.Duration("duration", report.Duration))

	if cfg.Site.MetricsFile != "" {
		if err := reg.WriteTextfile(cfg.Site.MetricsFile); err != nil {
			return report, fmt.Errorf("write metrics: %w", err)
		}
	}
	if cfg.Site.SummaryFile != "" {
		if err := renderer.SavePlain(cfg.Site.SummaryFile); err != nil {
			return report, fmt.Errorf("write summary: %w", err)
		}
	}

	return report, nil
}
