package site

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drew/stratsite/internal/config"
	"github.com/drew/stratsite/internal/model"
)

func TestManifest_Entries(t *testing.T) {
	data, err := Manifest(sampleIndex())
	require.NoError(t, err)

	var got map[string]ManifestStrategy
	require.NoError(t, json.Unmarshal(data, &got))

	dma := got["dma"]
	assert.Equal(t, "Daily Moving Average", dma.Name)
	require.Len(t, dma.Dates, 3)

	assert.Equal(t, "2025-01-03", dma.Dates[0].Date)
	assert.True(t, dma.Dates[0].HasOutput)
	require.NotNil(t, dma.Dates[0].OutputFile)
	assert.Equal(t, "dma/2025-01-03/output/output.json", *dma.Dates[0].OutputFile)
	assert.Equal(t, []string{"dma/2025-01-03/forward/chart.png"}, dma.Dates[0].Images)

	assert.False(t, dma.Dates[2].HasOutput)
	assert.Nil(t, dma.Dates[2].OutputFile)
	assert.Equal(t, []string{"dma/2025-01-01/forward/a.png", "dma/2025-01-01/forward/b.png"}, dma.Dates[2].Images)

	assert.Empty(t, got["pv"].Dates)
	assert.NotNil(t, got["pv"].Dates, "empty strategies encode an empty list")
}

func TestManifest_Format(t *testing.T) {
	data, err := Manifest(sampleIndex())
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, `"output_file": null`)
	assert.Contains(t, text, `"images": []`)
	assert.Contains(t, text, "<b>fast</b>", "markup is not escaped")
	assert.True(t, strings.HasPrefix(text, "{\n  \"dma\": {"), "two-space indent:\n%s", text)
}

func TestManifest_PreservesIndexOrder(t *testing.T) {
	idx := &model.Index{Strategies: []model.Strategy{
		{Key: "zeta", Name: "zeta"},
		{Key: "alpha", Name: "alpha"},
		{Key: "mid", Name: "mid"},
	}}

	data, err := Manifest(idx)
	require.NoError(t, err)
	text := string(data)

	z := strings.Index(text, `"zeta"`)
	a := strings.Index(text, `"alpha"`)
	m := strings.Index(text, `"mid"`)
	assert.True(t, z < a && a < m, "keys out of order:\n%s", text)
}

func TestManifest_Deterministic(t *testing.T) {
	first, err := Manifest(sampleIndex())
	require.NoError(t, err)
	second, err := Manifest(sampleIndex())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestManifest_EmptyIndex(t *testing.T) {
	data, err := Manifest(&model.Index{})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Empty(t, got)
}

func TestDynamic_Render(t *testing.T) {
	cfg := config.GetDefaults().Site
	cfg.Title = "Research <Desk>"

	artifacts, err := NewDynamic(cfg).Render(context.Background(), sampleIndex())
	require.NoError(t, err)
	require.Len(t, artifacts, 2)
	assert.Equal(t, "manifest.json", artifacts[0].Path)
	assert.Equal(t, "index.html", artifacts[1].Path)

	doc := parseHTML(t, artifacts[1].Body)
	assert.Equal(t, "Research <Desk>", doc.Find("title").Text())
	assert.Equal(t, 1, doc.Find("div#app").Length())

	var shellCfg struct {
		Title    string `json:"title"`
		Manifest string `json:"manifest"`
	}
	require.NoError(t, json.Unmarshal([]byte(doc.Find("script#site-config").Text()), &shellCfg))
	assert.Equal(t, "Research <Desk>", shellCfg.Title)
	assert.Equal(t, "manifest.json", shellCfg.Manifest)

	script := doc.Find("script").Last().Text()
	assert.Contains(t, script, "AbortController")
	assert.Contains(t, doc.Find("style").Text(), ".analysis-table")
}

func TestDynamic_RenderCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDynamic(config.GetDefaults().Site).Render(ctx, sampleIndex())
	assert.ErrorIs(t, err, context.Canceled)
}
