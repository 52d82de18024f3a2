package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/waterpath/internal/config"
	"github.com/udisondev/waterpath/internal/db"
	"github.com/udisondev/waterpath/internal/scenario"
)

const ConfigPath = "config/shipnav.yaml"

var errNoScenarios = errors.New("no scenario files given")

type options struct {
	configPath string
	dump       bool
	record     bool
	workers    int
	scenarios  []string
}

type report struct {
	runID    uuid.UUID
	outcomes []scenario.Outcome
	found    int
	elapsed  time.Duration
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	opts := options{configPath: ConfigPath}
	if p := os.Getenv("WATERPATH_CONFIG"); p != "" {
		opts.configPath = p
	}

	fs := flag.NewFlagSet("shipnav", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", opts.configPath, "path to the YAML config")
	fs.BoolVar(&opts.dump, "dump", false, "log the water region labels of every scenario")
	fs.BoolVar(&opts.record, "record", false, "store query outcomes in PostgreSQL")
	fs.IntVar(&opts.workers, "workers", 0, "scenarios run in parallel (0 keeps the config value)")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.scenarios = fs.Args()
	return opts, nil
}

func run(ctx context.Context, args []string, out io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := config.LoadShipNav(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if opts.workers > 0 {
		cfg.Workers = opts.workers
	}
	if opts.record {
		cfg.Record = true
	}
	if len(opts.scenarios) > 0 {
		cfg.Scenarios = opts.scenarios
	}

	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if opts.dump {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	logger.Info("shipnav starting", "config", opts.configPath, "workers", cfg.Workers, "record", cfg.Record)

	rep, err := execute(ctx, cfg, opts.dump, logger)
	if err != nil {
		return err
	}

	logger.Info("shipnav finished",
		"run_id", rep.runID,
		"queries", humanize.Comma(int64(len(rep.outcomes))),
		"found", humanize.Comma(int64(rep.found)),
		"search_time", rep.elapsed)
	return nil
}

// execute runs every scenario of cfg and records the outcomes if asked to.
func execute(ctx context.Context, cfg config.ShipNav, dump bool, logger *slog.Logger) (report, error) {
	rep := report{runID: uuid.New()}

	paths, err := expand(cfg.Scenarios)
	if err != nil {
		return rep, err
	}
	scenarios := make([]*scenario.Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := scenario.Load(p)
		if err != nil {
			return rep, err
		}
		if s.Name == "" {
			s.Name = filepath.Base(p)
		}
		scenarios = append(scenarios, s)
	}
	logger.Info("scenarios loaded", "count", len(scenarios))

	runner := scenario.NewRunner(cfg.Ship, cfg.Region, dump, logger)
	results := make([][]scenario.Outcome, len(scenarios))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i, s := range scenarios {
		g.Go(func() error {
			outcomes, err := runner.Run(gctx, s)
			if err != nil {
				return fmt.Errorf("scenario %s: %w", s.Name, err)
			}
			results[i] = outcomes
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return rep, err
	}

	for _, outcomes := range results {
		for _, o := range outcomes {
			rep.outcomes = append(rep.outcomes, o)
			rep.elapsed += o.Elapsed
			if o.Found {
				rep.found++
			}
		}
	}

	if cfg.Record {
		if err := record(ctx, cfg.Database, rep, logger); err != nil {
			return rep, fmt.Errorf("recording run: %w", err)
		}
	}
	return rep, nil
}

// expand resolves glob patterns. A pattern without matches is an error.
func expand(patterns []string) ([]string, error) {
	var paths []string
	for _, p := range patterns {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("scenario pattern %q: %w", p, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("scenario pattern %q: %w", p, os.ErrNotExist)
		}
		paths = append(paths, matches...)
	}
	if len(paths) == 0 {
		return nil, errNoScenarios
	}
	return paths, nil
}

func record(ctx context.Context, dbCfg config.DatabaseConfig, rep report, logger *slog.Logger) error {
	dsn := dbCfg.DSN()
	if _, err := db.RunMigrations(ctx, dsn, logger); err != nil {
		return err
	}

	database, err := db.New(ctx, dsn)
	if err != nil {
		return err
	}
	defer database.Close()
	logger.Info("database connected")

	records := make([]db.RouteRecord, 0, len(rep.outcomes))
	for _, o := range rep.outcomes {
		records = append(records, db.RouteRecord{
			RunID:    rep.runID,
			Scenario: o.Scenario,
			Query:    int32(o.Query),
			Kind:     o.Kind,
			ShipID:   int32(o.Ship),
			Found:    o.Found,
			Trackdir: o.Trackdir,
			TileX:    int32(o.Point.X),
			TileY:    int32(o.Point.Y),
			Reverse:  o.Reverse,
			Steps:    int32(o.Steps),
			Cost:     int32(o.Cost),
			Elapsed:  o.Elapsed,
		})
	}

	repo := db.NewRouteRepository(database.Pool())
	if err := repo.Insert(ctx, records); err != nil {
		return err
	}
	sum, err := repo.Summary(ctx, rep.runID)
	if err != nil {
		return err
	}
	logger.Info("route log written",
		"run_id", rep.runID,
		"records", humanize.Comma(int64(sum.Queries)),
		"found", humanize.Comma(int64(sum.Found)))
	return nil
}
