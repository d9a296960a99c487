// Package app runs generation passes that turn a QuickEvent database into
// static result pages.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/okian/qehtml/internal/adapters/render"
	"github.com/okian/qehtml/internal/adapters/repository"
	"github.com/okian/qehtml/internal/domain/ranking"
	"github.com/okian/qehtml/internal/domain/types"
	"github.com/okian/qehtml/pkg/logger"
	"github.com/okian/qehtml/pkg/metrics"
)

// Renderer writes one page.
type Renderer interface {
	Render(ctx context.Context, page render.Page) error
}

// Output directory names below the output root.
const (
	resultsDir = "results"
	startsDir  = "starts"
	totalDir   = "total"
	xlsxName   = "results.xlsx"
)

// Generator reads one event and writes its report pages.
type Generator struct {
	source   repository.Source
	renderer Renderer

	stage      int
	stageCount int
	results    bool
	startlists bool
	totals     bool
	mainIndex  bool
	hours      bool
	xlsx       bool
	outDir     string
	filter     repository.Filter
	interval   time.Duration

	metricsTextfile string

	log    logger.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// New constructs a Generator. By default it renders results, startlists
// and totals of stage 1 over two stages into ./html once.
func New(source repository.Source, renderer Renderer, opts ...Option) *Generator {
	g := &Generator{
		source:     source,
		renderer:   renderer,
		stage:      1,
		stageCount: 2,
		results:    true,
		startlists: true,
		totals:     true,
		hours:      true,
		outDir:     "html",
		log:        logger.Nop(),
		tracer:     otel.Tracer("github.com/okian/qehtml/internal/app"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Run repeats Generate every refresh interval until ctx is done. With a zero
// interval it generates once. A failed pass ends the loop with its error.
func (g *Generator) Run(ctx context.Context) error {
	for {
		if err := g.Generate(ctx); err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return nil
			}
			return err
		}
		if g.interval <= 0 {
			return nil
		}

		g.log.Debug(ctx, "waiting for next pass", logger.Duration("interval", g.interval))
		timer := time.NewTimer(g.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// Generate runs one full pass over the configured report kinds.
func (g *Generator) Generate(ctx context.Context) error {
	runID := uuid.NewString()
	log := g.log.With(logger.String("run_id", runID))

	ctx, span := g.tracer.Start(ctx, "Generator.Generate", trace.WithAttributes(
		attribute.String("run_id", runID),
		attribute.Int("stage", g.stage),
	))
	defer span.End()

	start := time.Now()
	log.Debug(ctx, "pass started", logger.Int("stage", g.stage), logger.String("out", g.outDir))

	err := g.generate(ctx, log)
	elapsed := time.Since(start)
	if err != nil {
		metrics.RecordPass(metrics.ResultFailure, elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error(ctx, "pass failed", logger.Error(err), logger.Duration("duration", elapsed))
	} else {
		metrics.RecordPass(metrics.ResultSuccess, elapsed)
		log.Info(ctx, "pass complete", logger.Duration("duration", elapsed))
	}

	if g.metricsTextfile != "" {
		if werr := metrics.WriteTextfile(g.metricsTextfile); werr != nil {
			log.Warn(ctx, "metrics textfile not written", logger.Error(werr))
		}
	}
	return err
}

func (g *Generator) generate(ctx context.Context, log logger.Logger) error {
	event, err := g.source.Event(ctx)
	if err != nil {
		return err
	}
	meta := types.Meta{
		Event:      event,
		Stage:      g.stage,
		StageCount: g.stageCount,
		Generated:  g.now(),
	}

	if g.results || g.startlists || g.mainIndex {
		if err := g.stagePass(ctx, log, meta); err != nil {
			return err
		}
	}
	if g.totals {
		if err := g.totalsPass(ctx, log, meta); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) stageDir() string {
	return filepath.Join(g.outDir, "E"+strconv.Itoa(g.stage))
}

// mkdirs creates output directories, wrapping failures in ErrOutputDir.
func mkdirs(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			metrics.RecordError("output")
			return fmt.Errorf("%w: %w", ErrOutputDir, err)
		}
	}
	return nil
}

// stagePass writes the stage index, results and startlists of one stage.
func (g *Generator) stagePass(ctx context.Context, log logger.Logger, meta types.Meta) error {
	ctx, span := g.tracer.Start(ctx, "Generator.stagePass")
	defer span.End()

	classes, err := g.source.Classes(ctx, g.stage, g.filter)
	if err != nil {
		return err
	}
	summaries, err := summarize(classes)
	if err != nil {
		return err
	}
	metrics.UpdateClasses(len(summaries))
	log.Debug(ctx, "classes loaded", logger.Int("classes", len(summaries)))

	stageDir := g.stageDir()
	dirs := []string{stageDir}
	if g.results {
		dirs = append(dirs, filepath.Join(stageDir, resultsDir))
	}
	if g.startlists {
		dirs = append(dirs, filepath.Join(stageDir, startsDir))
	}
	if err := mkdirs(dirs...); err != nil {
		return err
	}

	index := types.IndexPage{Meta: meta, Classes: summaries}
	if g.mainIndex {
		if err := g.renderer.Render(ctx, render.Page{
			Kind:     "index",
			Template: render.TemplateIndex,
			Path:     filepath.Join(stageDir, "index.html"),
			Data:     index,
		}); err != nil {
			return err
		}
	}

	if g.results {
		if err := g.renderer.Render(ctx, render.Page{
			Kind:     "results",
			Template: render.TemplateResultsIndex,
			Path:     filepath.Join(stageDir, resultsDir, "index.html"),
			Data:     index,
		}); err != nil {
			return err
		}
	}
	if g.startlists {
		if err := g.renderer.Render(ctx, render.Page{
			Kind:     "startlists",
			Template: render.TemplateStartsIndex,
			Path:     filepath.Join(stageDir, startsDir, "index.html"),
			Data:     index,
		}); err != nil {
			return err
		}
	}
	if !g.results && !g.startlists {
		return nil
	}

	var stageStart time.Time
	if g.startlists {
		stageStart, err = g.source.StageStart(ctx, g.stage)
		if errors.Is(err, repository.ErrStageNotFound) {
			log.Warn(ctx, "stage start unknown", logger.Int("stage", g.stage))
		} else if err != nil {
			return err
		}
	}

	for _, class := range summaries {
		entries, err := g.source.Runs(ctx, g.stage, class.ID)
		if err != nil {
			return err
		}

		if g.results {
			if err := g.renderer.Render(ctx, render.Page{
				Kind:     "results",
				Template: render.TemplateResultsClass,
				Path:     filepath.Join(stageDir, resultsDir, class.ASCII+".html"),
				Data: types.ResultsPage{
					Meta:    meta,
					Classes: summaries,
					Class:   class,
					Rows:    resultRows(entries, g.hours),
				},
			}); err != nil {
				return err
			}
		}

		if g.startlists {
			if err := g.renderer.Render(ctx, render.Page{
				Kind:     "startlists",
				Template: render.TemplateStartsClass,
				Path:     filepath.Join(stageDir, startsDir, class.ASCII+".html"),
				Data: types.StartsPage{
					Meta:       meta,
					Classes:    summaries,
					Class:      class,
					StageStart: stageStart,
					Rows:       startRows(entries, g.hours),
				},
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

// totalsPass writes the multi-stage standings of every class.
func (g *Generator) totalsPass(ctx context.Context, log logger.Logger, meta types.Meta) error {
	ctx, span := g.tracer.Start(ctx, "Generator.totalsPass",
		trace.WithAttributes(attribute.Int("stage_count", g.stageCount)))
	defer span.End()

	if g.stageCount < 1 {
		return fmt.Errorf("%w: got %d", ranking.ErrNoStages, g.stageCount)
	}

	classes, err := g.source.AllClasses(ctx, g.filter)
	if err != nil {
		return err
	}
	summaries, err := summarize(classes)
	if err != nil {
		return err
	}

	dir := filepath.Join(g.outDir, totalDir)
	if err := mkdirs(dir); err != nil {
		return err
	}

	stages := make([]int, g.stageCount)
	for i := range stages {
		stages[i] = i + 1
	}

	tables := make([]types.TotalTable, 0, len(summaries))
	for _, class := range summaries {
		totals, err := ranking.NewTotals(g.stageCount)
		if err != nil {
			return err
		}
		for _, stage := range stages {
			entries, err := g.source.Runs(ctx, stage, class.ID)
			if err != nil {
				return err
			}
			if err := totals.Add(stage, entries); err != nil {
				return err
			}
		}

		rows := totalRows(totals.Standings(), g.hours)
		tables = append(tables, types.TotalTable{Class: class, StageCount: g.stageCount, Rows: rows})

		if err := g.renderer.Render(ctx, render.Page{
			Kind:     "totals",
			Template: render.TemplateTotalsClass,
			Path:     filepath.Join(dir, class.ASCII+".html"),
			Data: types.TotalsPage{
				Meta:    meta,
				Classes: summaries,
				Class:   class,
				Stages:  stages,
				Rows:    rows,
			},
		}); err != nil {
			return err
		}
	}

	if err := g.renderer.Render(ctx, render.Page{
		Kind:     "totals",
		Template: render.TemplateTotalsIndex,
		Path:     filepath.Join(dir, "index.html"),
		Data:     types.IndexPage{Meta: meta, Classes: summaries},
	}); err != nil {
		return err
	}

	if g.xlsx {
		path := filepath.Join(dir, xlsxName)
		if err := render.WriteTotalsXLSX(path, tables); err != nil {
			return err
		}
		log.Debug(ctx, "spreadsheet written", logger.String("path", path))
	}
	return nil
}
