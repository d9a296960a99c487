package render

import (
	"io/fs"
	"os"

	"github.com/okian/qehtml/pkg/logger"
)

// Option applies a configuration option to the Renderer.
type Option func(*Renderer)

// WithLogger sets the logger for written pages.
func WithLogger(l logger.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.log = l
		}
	}
}

// WithTemplateDir loads templates from dir instead of the embedded set.
// The directory must hold the full set, layout and partials included.
func WithTemplateDir(dir string) Option {
	return func(r *Renderer) {
		if dir != "" {
			r.templates = os.DirFS(dir)
		}
	}
}

// WithTemplateFS loads templates from fsys.
func WithTemplateFS(fsys fs.FS) Option {
	return func(r *Renderer) {
		if fsys != nil {
			r.templates = fsys
		}
	}
}
