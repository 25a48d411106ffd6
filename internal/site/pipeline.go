package site

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/drew/stratsite/internal/config"
	"github.com/drew/stratsite/internal/index"
	"github.com/drew/stratsite/internal/metrics"
	"github.com/drew/stratsite/internal/model"
	"github.com/drew/stratsite/internal/scan"
)

// Report summarizes one build
type Report struct {
	Index *model.Index
	// Artifacts counts written files per backend name
	Artifacts map[string]int
	// Sources counts result files and images copied to a remote sink
	Sources     int
	ParseErrors int
	// FailedResults counts unreadable result files per strategy key
	FailedResults map[string]int
	Duration      time.Duration
}

// Total returns the number of files written
func (r *Report) Total() int {
	n := r.Sources
	for _, c := range r.Artifacts {
		n += c
	}
	return n
}

// Pipeline scans the tree, builds the index and runs every configured backend
type Pipeline struct {
	cfg      config.Config
	fsys     fs.FS
	sink     Sink
	log      *zap.Logger
	metrics  *metrics.Registry
	backends []Backend

	mu            sync.Mutex
	parseErrors   int
	failedResults map[string]int
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger sets the logger
func WithLogger(log *zap.Logger) Option {
	return func(p *Pipeline) {
		p.log = log
	}
}

// WithSink replaces the sink selected by the publish configuration
func WithSink(sink Sink) Option {
	return func(p *Pipeline) {
		p.sink = sink
	}
}

// WithFS replaces the scanned tree, which defaults to the site root on disk
func WithFS(fsys fs.FS) Option {
	return func(p *Pipeline) {
		p.fsys = fsys
	}
}

// WithMetrics records build metrics into reg
func WithMetrics(reg *metrics.Registry) Option {
	return func(p *Pipeline) {
		p.metrics = reg
	}
}

// NewPipeline creates a pipeline for a merged configuration
func NewPipeline(cfg config.Config, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{cfg: cfg}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = zap.NewNop()
	}
	if p.fsys == nil {
		p.fsys = os.DirFS(cfg.Site.Root)
	}
	if p.sink == nil {
		sink, err := NewSink(cfg)
		if err != nil {
			return nil, err
		}
		p.sink = sink
	}

	seen := make(map[string]bool)
	for _, mode := range cfg.Site.Modes {
		if seen[mode] {
			continue
		}
		seen[mode] = true

		switch mode {
		case config.ModeDynamic:
			p.backends = append(p.backends, NewDynamic(cfg.Site))
		case config.ModeStatic:
			p.backends = append(p.backends, NewStatic(p.fsys, cfg.Site, p.log, WithResultErrorHook(p.recordResultError)))
		default:
			return nil, fmt.Errorf("unknown mode %q", mode)
		}
	}
	if len(p.backends) == 0 {
		return nil, fmt.Errorf("no modes configured")
	}

	return p, nil
}

func (p *Pipeline) recordResultError(strategy, _ string, _ error) {
	p.mu.Lock()
	p.parseErrors++
	p.failedResults[strategy]++
	p.mu.Unlock()
	if p.metrics != nil {
		p.metrics.RecordParseError(strategy)
	}
}

// Run performs one full build. The tree is rescanned on every call; nothing
// is cached between runs.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	p.mu.Lock()
	p.parseErrors = 0
	p.failedResults = make(map[string]int)
	p.mu.Unlock()

	dirs, err := scan.New(p.cfg.Scan, p.log).Scan(ctx, p.fsys)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	idx := index.Build(dirs, p.cfg.Strategies, p.cfg.Scan.ResultFile)
	p.log.Debug("Index built",
		zap.Int("strategies", len(idx.Strategies)),
		zap.Int("dates", idx.DateCount()))
	if p.metrics != nil {
		p.metrics.ObserveIndex(idx)
	}

	// Backends only read the index, so they render concurrently
	rendered := make([][]Artifact, len(p.backends))
	g, gctx := errgroup.WithContext(ctx)
	for i, b := range p.backends {
		g.Go(func() error {
			artifacts, err := b.Render(gctx, idx)
			if err != nil {
				return fmt.Errorf("render %s: %w", b.Name(), err)
			}
			rendered[i] = artifacts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Index: idx, Artifacts: make(map[string]int)}
	for i, b := range p.backends {
		if err := p.write(ctx, rendered[i]); err != nil {
			return nil, fmt.Errorf("write %s: %w", b.Name(), err)
		}
		report.Artifacts[b.Name()] = len(rendered[i])
		if p.metrics != nil {
			p.metrics.AddArtifacts(b.Name(), len(rendered[i]))
		}
		p.log.Debug("Backend written", zap.String("backend", b.Name()), zap.Int("files", len(rendered[i])))
	}

	if p.sink.Remote() {
		sources, err := SourceArtifacts(ctx, p.fsys, idx)
		if err != nil {
			return nil, fmt.Errorf("collect sources: %w", err)
		}
		if err := p.write(ctx, sources); err != nil {
			return nil, fmt.Errorf("write sources: %w", err)
		}
		report.Sources = len(sources)
	}

	p.mu.Lock()
	report.ParseErrors = p.parseErrors
	report.FailedResults = p.failedResults
	p.mu.Unlock()
	report.Duration = time.Since(start)
	if p.metrics != nil {
		p.metrics.RecordBuild(report.Duration)
	}

	return report, nil
}

func (p *Pipeline) write(ctx context.Context, artifacts []Artifact) error {
	for _, a := range artifacts {
		if err := p.sink.Write(ctx, a.Path, a.Body); err != nil {
			return fmt.Errorf("%s: %w", a.Path, err)
		}
	}
	return nil
}
