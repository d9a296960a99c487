package app

import (
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/okian/qehtml/internal/adapters/repository"
	"github.com/okian/qehtml/pkg/logger"
)

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithLogger sets a custom logger for the generator.
func WithLogger(l logger.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.log = l
		}
	}
}

// WithTracer sets the tracer used for pass spans.
func WithTracer(t trace.Tracer) Option {
	return func(g *Generator) {
		if t != nil {
			g.tracer = t
		}
	}
}

// WithClock overrides the generation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithStage sets the stage rendered by results and startlists.
func WithStage(stage int) Option {
	return func(g *Generator) {
		if stage > 0 {
			g.stage = stage
		}
	}
}

// WithStageCount sets how many stages the totals add up.
func WithStageCount(n int) Option {
	return func(g *Generator) {
		g.stageCount = n
	}
}

// WithReports selects the report kinds generated by every pass.
func WithReports(results, startlists, totals bool) Option {
	return func(g *Generator) {
		g.results = results
		g.startlists = startlists
		g.totals = totals
	}
}

// WithMainIndex enables the stage index page.
func WithMainIndex(on bool) Option {
	return func(g *Generator) {
		g.mainIndex = on
	}
}

// WithHours splits hours out of displayed times.
func WithHours(on bool) Option {
	return func(g *Generator) {
		g.hours = on
	}
}

// WithOutputDir sets the root of the generated tree.
func WithOutputDir(dir string) Option {
	return func(g *Generator) {
		if dir != "" {
			g.outDir = dir
		}
	}
}

// WithClassFilter restricts every report to matching classes.
func WithClassFilter(f repository.Filter) Option {
	return func(g *Generator) {
		g.filter = f
	}
}

// WithXLSX also writes the totals as a spreadsheet.
func WithXLSX(on bool) Option {
	return func(g *Generator) {
		g.xlsx = on
	}
}

// WithRefreshInterval sets the pause between passes; zero runs once.
func WithRefreshInterval(d time.Duration) Option {
	return func(g *Generator) {
		if d >= 0 {
			g.interval = d
		}
	}
}

// WithMetricsTextfile writes the metrics registry to path after each pass.
func WithMetricsTextfile(path string) Option {
	return func(g *Generator) {
		g.metricsTextfile = path
	}
}
