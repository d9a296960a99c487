package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/okian/qehtml/internal/adapters/render"
	"github.com/okian/qehtml/internal/adapters/repository"
	"github.com/okian/qehtml/internal/app"
	"github.com/okian/qehtml/internal/config"
	"github.com/okian/qehtml/pkg/logger"
	"github.com/okian/qehtml/pkg/metrics"
)

var errEventArgs = errors.New("expected at most one EVENT argument")

// Metrics listener timeouts.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "qehtml",
		Usage:     "render QuickEvent results, startlists and totals as static HTML",
		ArgsUsage: "EVENT",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "sql-driver", Usage: "database backend: psql, sqlite or mysql"},
			&cli.StringFlag{Name: "sql-server", Aliases: []string{"s"}, Usage: "database host"},
			&cli.IntFlag{Name: "sql-port", Usage: "database port"},
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Usage: "database user"},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "database password"},
			&cli.StringFlag{Name: "sql-database", Aliases: []string{"b"}, Usage: "database name"},
			&cli.IntFlag{Name: "stage", Aliases: []string{"n"}, Usage: "stage rendered by results and startlists"},
			&cli.IntFlag{Name: "stage-count", Usage: "number of stages summed by totals"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Usage: "reports: all, results, startlists, totals or a comma list"},
			&cli.BoolFlag{Name: "main-index", Usage: "write E{stage}/index.html"},
			&cli.StringFlag{Name: "html-dir", Aliases: []string{"d"}, Usage: "output directory"},
			&cli.IntFlag{Name: "refresh-interval", Aliases: []string{"r"}, Usage: "seconds between passes, 0 runs once"},
			&cli.BoolFlag{Name: "hours", Usage: "format times as h:mm:ss (--hours=false for minutes only)"},
			&cli.StringFlag{Name: "classes-like", Usage: "SQL LIKE pattern classes must match"},
			&cli.StringFlag{Name: "classes-not-like", Usage: "SQL LIKE pattern classes must not match"},
			&cli.StringFlag{Name: "templates", Usage: "directory overriding the built-in templates"},
			&cli.BoolFlag{Name: "xlsx", Usage: "also export totals to total/results.xlsx"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "debug logging"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "warnings and errors only"},
			&cli.StringFlag{Name: "log-format", Usage: "console or json"},
			&cli.StringFlag{Name: "metrics-addr", Usage: "serve /metrics on this address"},
			&cli.StringFlag{Name: "metrics-textfile", Usage: "write metrics to this file after every pass"},
		},
		Action: run,
	}
}

// overrides collects the flags given on the command line, keyed by config key.
// Flags must precede EVENT; anything after it is rejected instead of dropped.
func overrides(c *cli.Context) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	if c.NArg() > 1 {
		return nil, fmt.Errorf("%w (flags must precede it): got %q", errEventArgs, c.Args().Slice())
	}
	if c.NArg() == 1 {
		out["event"] = c.Args().First()
	}
	for _, f := range c.App.Flags {
		name := f.Names()[0]
		if name == "verbose" || name == "quiet" || !c.IsSet(name) {
			continue
		}
		if v := c.Value(name); v != nil {
			out[strings.ReplaceAll(name, "-", "_")] = v
		}
	}
	switch {
	case c.Bool("verbose"):
		out["log_level"] = "debug"
	case c.Bool("quiet"):
		out["log_level"] = "warn"
	}
	return out, nil
}

func run(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	flags, err := overrides(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	cfg, err := config.Load(ctx, flags)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	if err := logger.Init(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat}); err != nil {
		return cli.Exit("failed to initialize logging: "+err.Error(), 2)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	src, err := repository.Open(ctx, repository.Conn{
		Driver:   cfg.SQLDriver,
		Host:     cfg.SQLServer,
		Port:     cfg.SQLPort,
		User:     cfg.User,
		Password: cfg.Password,
		Database: cfg.SQLDatabase,
		Event:    cfg.Event,
	}, repository.WithLogger(log.Named("repository")), repository.WithQueryDebug(logger.DebugEnabled()))
	if err != nil {
		return exitError(err)
	}
	defer src.Close()

	renderOpts := []render.Option{render.WithLogger(log.Named("render"))}
	if cfg.Templates != "" {
		renderOpts = append(renderOpts, render.WithTemplateDir(cfg.Templates))
	}
	r, err := render.New(renderOpts...)
	if err != nil {
		return exitError(err)
	}

	if cfg.MetricsAddr != "" {
		srv := serveMetrics(ctx, log, cfg.MetricsAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error(ctx, "metrics server shutdown failed", logger.Error(err))
			}
		}()
	}

	modes := cfg.Modes()
	gen := app.New(src, r,
		app.WithLogger(log.Named("generator")),
		app.WithStage(cfg.Stage),
		app.WithStageCount(cfg.StageCount),
		app.WithReports(modes.Results, modes.Startlists, modes.Totals),
		app.WithMainIndex(modes.MainIndex),
		app.WithHours(cfg.Hours),
		app.WithOutputDir(cfg.HTMLDir),
		app.WithClassFilter(repository.Filter{Like: cfg.ClassesLike, NotLike: cfg.ClassesNotLike}),
		app.WithXLSX(cfg.XLSX),
		app.WithRefreshInterval(cfg.Refresh()),
		app.WithMetricsTextfile(cfg.MetricsTextfile),
	)

	log.Info(ctx, "generator starting",
		logger.String("event", cfg.Event),
		logger.String("driver", cfg.SQLDriver),
		logger.Int("stage", cfg.Stage),
		logger.String("html_dir", cfg.HTMLDir))

	return exitError(gen.Run(ctx))
}

// exitError turns a run failure into exit code 1 with the error as the message.
// repository.ErrConnect and app.ErrOutputDir already read as operator messages.
func exitError(err error) error {
	if err == nil {
		return nil
	}
	return cli.Exit(err.Error(), 1)
}

func serveMetrics(ctx context.Context, log logger.Logger, addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		log.Info(ctx, "starting metrics server", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "metrics server failed", logger.Error(err))
		}
	}()
	return srv
}
