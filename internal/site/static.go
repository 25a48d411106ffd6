package site

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/url"
	"path"

	"go.uber.org/zap"

	"github.com/drew/stratsite/internal/config"
	"github.com/drew/stratsite/internal/model"
	"github.com/drew/stratsite/internal/table"
)

// ResultErrorFunc is called for every result file that could not be read or parsed
type ResultErrorFunc func(strategy, date string, err error)

// Static writes one HTML page per strategy and per available report.
// Every page is complete on its own and links to the others with relative paths.
type Static struct {
	fsys      fs.FS
	siteTitle string
	pageName  string
	log       *zap.Logger
	onError   ResultErrorFunc
}

// StaticOption configures a Static backend
type StaticOption func(*Static)

// WithResultErrorHook registers fn for unreadable or malformed result files
func WithResultErrorHook(fn ResultErrorFunc) StaticOption {
	return func(s *Static) {
		s.onError = fn
	}
}

// NewStatic creates the static backend. Result files are read from fsys.
func NewStatic(fsys fs.FS, cfg config.SiteConfig, log *zap.Logger, opts ...StaticOption) *Static {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Static{
		fsys:      fsys,
		siteTitle: cfg.Title,
		pageName:  cfg.PageName,
		log:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the mode name
func (s *Static) Name() string {
	return config.ModeStatic
}

type dateRow struct {
	Date        string
	OutputHref  string
	ForwardHref string
}

type strategyPage struct {
	pageBase
	SiteTitle   string
	Name        string
	Description template.HTML
	Rows        []dateRow
}

type outputPage struct {
	pageBase
	Back        string
	Name        string
	Date        string
	Description template.HTML
	Table       template.HTML
	SiblingHref string
}

type galleryImage struct {
	Name string
	Href string
}

type galleryPage struct {
	pageBase
	Back        string
	Name        string
	Date        string
	Images      []galleryImage
	SiblingHref string
}

// Render produces the strategy, output and gallery pages
func (s *Static) Render(ctx context.Context, idx *model.Index) ([]Artifact, error) {
	var artifacts []Artifact

	for _, strategy := range idx.Strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if len(strategy.Dates) == 0 {
			s.log.Info("Strategy has no dates, no page written", zap.String("strategy", strategy.Key))
			continue
		}

		rows := make([]dateRow, 0, len(strategy.Dates))
		for _, d := range strategy.Dates {
			row := dateRow{Date: d.Date}
			dir := url.PathEscape(d.Date)

			if d.HasOutput {
				page, err := s.renderOutput(strategy, d)
				if err != nil {
					return nil, fmt.Errorf("render %s/%s output: %w", strategy.Key, d.Date, err)
				}
				artifacts = append(artifacts, Artifact{
					Path: path.Join(strategy.Key, d.Date, config.OutputDirName, s.pageName),
					Body: page,
				})
				row.OutputHref = dir + "/" + config.OutputDirName + "/" + s.pageName
			}

			if d.HasImages() {
				page, err := s.renderGallery(strategy, d)
				if err != nil {
					return nil, fmt.Errorf("render %s/%s gallery: %w", strategy.Key, d.Date, err)
				}
				artifacts = append(artifacts, Artifact{
					Path: path.Join(strategy.Key, d.Date, config.ForwardDirName, s.pageName),
					Body: page,
				})
				row.ForwardHref = dir + "/" + config.ForwardDirName + "/" + s.pageName
			}

			rows = append(rows, row)
		}

		page, err := executePage("strategy", strategyPage{
			pageBase:    newPageBase(strategy.Name),
			SiteTitle:   s.siteTitle,
			Name:        strategy.Name,
			Description: template.HTML(strategy.Description),
			Rows:        rows,
		})
		if err != nil {
			return nil, fmt.Errorf("render %s index: %w", strategy.Key, err)
		}
		artifacts = append(artifacts, Artifact{
			Path: path.Join(strategy.Key, s.pageName),
			Body: page,
		})
	}

	return artifacts, nil
}

func (s *Static) renderOutput(strategy model.Strategy, d model.DateEntry) ([]byte, error) {
	data := outputPage{
		pageBase:    newPageBase(strategy.Name + " - " + d.Date),
		Back:        "../../" + s.pageName,
		Name:        strategy.Name,
		Date:        d.Date,
		Description: template.HTML(strategy.Description),
		Table:       s.resultTable(strategy.Key, d),
	}
	if d.HasImages() {
		data.SiblingHref = "../" + config.ForwardDirName + "/" + s.pageName
	}
	return executePage("output", data)
}

// resultTable never fails the build; bad input becomes an inline message
func (s *Static) resultTable(key string, d model.DateEntry) template.HTML {
	raw, err := fs.ReadFile(s.fsys, d.OutputPath)
	if err != nil {
		s.reportError(key, d.Date, err)
		return table.ErrorHTML(err)
	}

	html, err := table.RenderFile(raw)
	if err != nil {
		s.reportError(key, d.Date, err)
	}
	return html
}

func (s *Static) reportError(key, date string, err error) {
	s.log.Warn("Could not load result data",
		zap.String("strategy", key),
		zap.String("date", date),
		zap.Error(err))
	if s.onError != nil {
		s.onError(key, date, err)
	}
}

func (s *Static) renderGallery(strategy model.Strategy, d model.DateEntry) ([]byte, error) {
	images := make([]galleryImage, 0, len(d.Images))
	for _, name := range d.Images {
		images = append(images, galleryImage{Name: name, Href: "./" + url.PathEscape(name)})
	}

	data := galleryPage{
		pageBase: newPageBase(strategy.Name + " - " + d.Date),
		Back:     "../../" + s.pageName,
		Name:     strategy.Name,
		Date:     d.Date,
		Images:   images,
	}
	if d.HasOutput {
		data.SiblingHref = "../" + config.OutputDirName + "/" + s.pageName
	}
	return executePage("gallery", data)
}
