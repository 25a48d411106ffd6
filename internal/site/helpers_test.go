package site

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/drew/stratsite/internal/config"
	"github.com/drew/stratsite/internal/model"
)

// memSink keeps written files in memory
type memSink struct {
	mu     sync.Mutex
	files  map[string][]byte
	order  []string
	remote bool
}

func newMemSink(remote bool) *memSink {
	return &memSink{files: make(map[string][]byte), remote: remote}
}

func (s *memSink) Write(_ context.Context, path string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = append([]byte(nil), data...)
	s.order = append(s.order, path)
	return nil
}

func (s *memSink) Remote() bool { return s.remote }

func file(content string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(content)}
}

// sampleTree has one strategy with every kind of date folder plus one empty strategy
func sampleTree() fstest.MapFS {
	return fstest.MapFS{
		"dma/2025-01-03/output/output.json": file(`[{"Ticker":"AAPL","Signal":"BUY","Return":3.456}]`),
		"dma/2025-01-03/forward/chart.png":  file("png"),
		"dma/2025-01-02/output/output.json": file(`{"Ticker":"MSFT","Signal":"sell"}`),
		"dma/2025-01-01/forward/a.png":      file("png"),
		"dma/2025-01-01/forward/b.png":      file("png"),
		"pv/README.md":                      file("nothing dated here"),
	}
}

func testConfig(modes ...string) config.Config {
	cfg := config.GetDefaults()
	cfg.Site.Modes = modes
	cfg.Scan.Strategies = []string{"dma", "pv"}
	cfg.Strategies = config.StrategyTable{
		"dma": {Title: "Daily Moving Average", Description: "Crossover of <b>fast</b> and slow averages."},
	}
	return cfg
}

func sampleIndex() *model.Index {
	return &model.Index{Strategies: []model.Strategy{
		{
			Key:         "dma",
			Name:        "Daily Moving Average",
			Description: "Crossover of <b>fast</b> and slow averages.",
			Dates: []model.DateEntry{
				{Date: "2025-01-03", HasOutput: true, OutputPath: "dma/2025-01-03/output/output.json", Images: []string{"chart.png"}},
				{Date: "2025-01-02", HasOutput: true, OutputPath: "dma/2025-01-02/output/output.json"},
				{Date: "2025-01-01", Images: []string{"a.png", "b.png"}},
			},
		},
		{Key: "pv", Name: "pv", Description: config.DefaultDescription},
	}}
}

func artifactByPath(t *testing.T, artifacts []Artifact, path string) Artifact {
	t.Helper()
	for _, a := range artifacts {
		if a.Path == path {
			return a
		}
	}
	var paths []string
	for _, a := range artifacts {
		paths = append(paths, a.Path)
	}
	t.Fatalf("artifact %s not found in [%s]", path, strings.Join(paths, ", "))
	return Artifact{}
}

func parseHTML(t *testing.T, body []byte) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	require.NoError(t, err)
	return doc
}
