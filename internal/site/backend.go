// Package site renders a model.Index into generated files.
//
// Rendering and writing are separate steps: a Backend turns the index into
// in-memory artifacts, and the Pipeline writes them through a Sink.
package site

import (
	"bytes"
	"context"
	"html/template"

	"github.com/drew/stratsite/assets"
	"github.com/drew/stratsite/internal/model"
)

// Artifact is one generated file. Path is slash-separated and relative to the site root.
type Artifact struct {
	Path string
	Body []byte
}

// Backend renders the index into artifacts
type Backend interface {
	Name() string
	Render(ctx context.Context, idx *model.Index) ([]Artifact, error)
}

var pageTemplates = template.Must(template.New("pages").ParseFS(assets.Templates, "templates/*.html"))

// pageBase carries the fields read by the shared head template
type pageBase struct {
	Title string
	Style template.CSS
}

func newPageBase(title string) pageBase {
	return pageBase{
		Title: title,
		Style: template.CSS(assets.Stylesheet),
	}
}

func executePage(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
