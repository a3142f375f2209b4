package main

import (
	"fmt"
	"log/slog"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/parkrevil/firebat-sub000/internal/cache"
	"github.com/parkrevil/firebat-sub000/internal/output"
	"github.com/parkrevil/firebat-sub000/internal/progress"
	"github.com/parkrevil/firebat-sub000/internal/service/analysis"
	"github.com/parkrevil/firebat-sub000/internal/vcs"
	"github.com/parkrevil/firebat-sub000/pkg/config"
)

const (
	metaLogger = "logger"
	metaConfig = "config"
)

// setup installs the logger and loads the configuration once per run.
func setup(c *cli.Context) error {
	level := slog.LevelWarn
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: level}))
	c.App.Metadata[metaLogger] = logger

	var opts []config.LoadOption
	if path := c.String("config"); path != "" {
		opts = append(opts, config.WithPath(path))
	}
	result, err := config.LoadConfig(opts...)
	if err != nil {
		// config subcommands report load errors themselves
		if c.Args().First() == "config" {
			return nil
		}
		return fmt.Errorf("failed to load config: %w", err)
	}
	if result.Source != "" {
		logger.Debug("loaded config", "path", result.Source)
	}
	c.App.Metadata[metaConfig] = result.Config
	return nil
}

func appLogger(c *cli.Context) *slog.Logger {
	if l, ok := c.App.Metadata[metaLogger].(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

func appConfig(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[metaConfig].(*config.Config); ok {
		return cfg
	}
	return config.DefaultConfig()
}

// getPaths returns paths from positional args, defaulting to ["."]
func getPaths(c *cli.Context) []string {
	if c.Args().Len() > 0 {
		return c.Args().Slice()
	}
	return []string{"."}
}

// newService builds the analysis service with the configured cache. The
// returned function closes the cache.
func newService(c *cli.Context, paths []string) (*analysis.Service, func(), error) {
	cfg := appConfig(c)
	logger := appLogger(c)

	cacheCfg := cfg.Cache
	if c.Bool("no-cache") {
		cacheCfg.Enabled = false
	}
	root := vcs.ResolveProject(vcs.DefaultOpener(), paths[0]).Root
	store, err := cache.Open(cacheCfg, root, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open cache: %w", err)
	}

	svc := analysis.New(
		analysis.WithConfig(cfg),
		analysis.WithCache(store),
		analysis.WithLogger(logger),
	)
	closeStore := func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close cache", "error", err)
		}
	}
	return svc, closeStore, nil
}

// newFormatter writes to the --output file or the app writer.
func newFormatter(c *cli.Context) (*output.Formatter, error) {
	cfg := appConfig(c)
	format := c.String("format")
	if format == "" {
		format = cfg.Output.Format
	}
	colored := cfg.Output.Color && !color.NoColor

	if path := c.String("output"); path != "" {
		return output.NewFormatter(output.ParseFormat(format), path, colored)
	}
	return output.NewWriterFormatter(output.ParseFormat(format), c.App.Writer, colored), nil
}

// newSpinner shows progress on stderr unless disabled.
func newSpinner(c *cli.Context, label string) *progress.Tracker {
	if c.Bool("no-progress") || c.Bool("verbose") {
		return nil
	}
	return progress.NewSpinnerTo(c.App.ErrWriter, label)
}

// render writes data with a fresh formatter.
func render(c *cli.Context, data any) error {
	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()
	return formatter.Output(data)
}
