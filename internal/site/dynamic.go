package site

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"path"

	"github.com/tidwall/pretty"

	"github.com/drew/stratsite/assets"
	"github.com/drew/stratsite/internal/config"
	"github.com/drew/stratsite/internal/model"
)

// ManifestDate is one date entry in the index document
type ManifestDate struct {
	Date       string   `json:"date"`
	HasOutput  bool     `json:"has_output"`
	OutputFile *string  `json:"output_file"`
	Images     []string `json:"images"`
}

// ManifestStrategy is one strategy in the index document
type ManifestStrategy struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Dates       []ManifestDate `json:"dates"`
}

// Dynamic writes the index document and a single shell page that renders it in the browser
type Dynamic struct {
	title        string
	manifestPath string
	shellPath    string
}

// NewDynamic creates the dynamic backend
func NewDynamic(cfg config.SiteConfig) *Dynamic {
	return &Dynamic{
		title:        cfg.Title,
		manifestPath: cfg.Manifest,
		shellPath:    cfg.Shell,
	}
}

// Name returns the mode name
func (d *Dynamic) Name() string {
	return config.ModeDynamic
}

// Render produces the index document and the shell page
func (d *Dynamic) Render(ctx context.Context, idx *model.Index) ([]Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	manifest, err := Manifest(idx)
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}

	shell, err := d.renderShell()
	if err != nil {
		return nil, fmt.Errorf("render shell: %w", err)
	}

	return []Artifact{
		{Path: d.manifestPath, Body: manifest},
		{Path: d.shellPath, Body: shell},
	}, nil
}

func (d *Dynamic) renderShell() ([]byte, error) {
	type shellConfig struct {
		Title    string `json:"title"`
		Manifest string `json:"manifest"`
	}
	type shellData struct {
		pageBase
		Config shellConfig
		Script template.JS
	}

	return executePage("shell", shellData{
		pageBase: newPageBase(d.title),
		Config:   shellConfig{Title: d.title, Manifest: d.manifestPath},
		Script:   template.JS(assets.ShellScript),
	})
}

// Manifest encodes the index as a JSON object keyed by strategy, in index
// order, indented with two spaces. Equal indexes encode to equal bytes.
func Manifest(idx *model.Index) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range idx.Strategies {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshal(s.Key)
		if err != nil {
			return nil, err
		}
		body, err := marshal(manifestStrategy(s))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(body)
	}
	buf.WriteByte('}')

	return pretty.PrettyOptions(buf.Bytes(), &pretty.Options{Width: 80, Indent: "  "}), nil
}

func manifestStrategy(s model.Strategy) ManifestStrategy {
	out := ManifestStrategy{
		Name:        s.Name,
		Description: s.Description,
		Dates:       make([]ManifestDate, 0, len(s.Dates)),
	}
	for _, d := range s.Dates {
		entry := ManifestDate{
			Date:      d.Date,
			HasOutput: d.HasOutput,
			Images:    make([]string, 0, len(d.Images)),
		}
		if d.HasOutput {
			outputFile := d.OutputPath
			entry.OutputFile = &outputFile
		}
		for _, img := range d.Images {
			entry.Images = append(entry.Images, path.Join(s.Key, d.Date, config.ForwardDirName, img))
		}
		out.Dates = append(out.Dates, entry)
	}
	return out
}

// marshal encodes v without escaping HTML, since descriptions carry markup
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
