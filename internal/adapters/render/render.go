// Package render turns page records into HTML files.
package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/okian/qehtml/pkg/logger"
	"github.com/okian/qehtml/pkg/metrics"
)

//go:embed templates/*
var templateFS embed.FS

// Template names, relative to the template root.
const (
	TemplateIndex        = "index.html"
	TemplateResultsIndex = "results/index.html"
	TemplateResultsClass = "results/class.html"
	TemplateStartsIndex  = "startlists/index.html"
	TemplateStartsClass  = "startlists/class.html"
	TemplateTotalsIndex  = "total/index.html"
	TemplateTotalsClass  = "total/class.html"
)

const (
	layoutTemplate  = "layout.html"
	partialsPattern = "partials/*.html"
)

var pageTemplates = []string{
	TemplateIndex,
	TemplateResultsIndex,
	TemplateResultsClass,
	TemplateStartsIndex,
	TemplateStartsClass,
	TemplateTotalsIndex,
	TemplateTotalsClass,
}

// Page is one file to render.
type Page struct {
	// Kind labels the page in metrics: index, results, startlists or totals.
	Kind     string
	Template string
	Path     string
	Data     any
}

// Renderer executes parsed page templates and writes the output files.
type Renderer struct {
	templates fs.FS
	pages     map[string]*template.Template
	log       logger.Logger
}

// New parses every page template. Missing or malformed templates wrap ErrTemplate.
func New(opts ...Option) (*Renderer, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemplate, err)
	}

	r := &Renderer{
		templates: sub,
		pages:     make(map[string]*template.Template, len(pageTemplates)),
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, name := range pageTemplates {
		t, err := template.New(layoutTemplate).
			Funcs(funcs()).
			ParseFS(r.templates, layoutTemplate, partialsPattern, name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrTemplate, name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render executes the page template and writes the result to page.Path,
// creating parent directories as needed. Existing files are replaced.
func (r *Renderer) Render(ctx context.Context, page Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t, ok := r.pages[page.Template]
	if !ok {
		return fmt.Errorf("%w: unknown template %q", ErrTemplate, page.Template)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, layoutTemplate, page.Data); err != nil {
		metrics.RecordError("render")
		return fmt.Errorf("%w: %s: %w", ErrTemplate, page.Template, err)
	}

	if err := writeFile(page.Path, buf.Bytes()); err != nil {
		metrics.RecordError("render")
		return err
	}

	metrics.RecordPageWritten(page.Kind)
	r.log.Debug(ctx, "page written",
		logger.String("kind", page.Kind),
		logger.String("path", page.Path))
	return nil
}

// writeFile replaces path through a temporary file in the same directory
// so readers never see a half written page.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	tmp, err := os.CreateTemp(dir, ".page-*")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	return nil
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"datetime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2006-01-02 15:04")
		},
		"clock": func(t time.Time) string {
			return t.Format("15:04:05")
		},
		"metres": func(v *int64) string {
			if v == nil {
				return ""
			}
			return strconv.FormatInt(*v, 10) + " m"
		},
	}
}
