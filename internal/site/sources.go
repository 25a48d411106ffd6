package site

import (
	"context"
	"fmt"
	"io/fs"
	"path"

	"github.com/drew/stratsite/internal/config"
	"github.com/drew/stratsite/internal/model"
)

// SourceArtifacts collects the result files and images the generated pages
// link to. A remote sink needs them to serve a working site.
func SourceArtifacts(ctx context.Context, fsys fs.FS, idx *model.Index) ([]Artifact, error) {
	var artifacts []Artifact

	for _, s := range idx.Strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, d := range s.Dates {
			if d.HasOutput {
				data, err := fs.ReadFile(fsys, d.OutputPath)
				if err != nil {
					return nil, fmt.Errorf("read %s: %w", d.OutputPath, err)
				}
				artifacts = append(artifacts, Artifact{Path: d.OutputPath, Body: data})
			}
			for _, img := range d.Images {
				p := path.Join(s.Key, d.Date, config.ForwardDirName, img)
				data, err := fs.ReadFile(fsys, p)
				if err != nil {
					return nil, fmt.Errorf("read %s: %w", p, err)
				}
				artifacts = append(artifacts, Artifact{Path: p, Body: data})
			}
		}
	}

	return artifacts, nil
}
