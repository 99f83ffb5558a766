package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/q939055502/jy-syzn"
	"github.com/q939055502/jy-syzn/internal/config"
	"github.com/q939055502/jy-syzn/internal/hints"
)

// runRender orchestrates a batch: config, discovery, renderer pool, output.
func runRender(ctx context.Context, positionalArgs []string, flags *renderFlags, env *Environment) error {
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	envCfg := loadEnvConfig()
	warnUnknownEnvVars(env.Stderr)

	cfg, err := loadRenderConfig(flags.common.config, envCfg, env)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	devices, err := resolveDevices(cfg.Devices)
	if err != nil {
		return err
	}

	files, err := discoverFiles(positionalArgs)
	if err != nil {
		return err
	}

	logger := newCLILogger(env.Stderr, flags.common.quiet, flags.common.verbose)
	opts, err := buildRendererOptions(cfg, logger)
	if err != nil {
		return err
	}

	workers := flags.workers
	if workers == 0 {
		workers = envCfg.Workers
	}
	poolSize := min(paramtable.ResolvePoolSize(workers), len(files))
	logger.Debug("starting render",
		paramtable.Int("files", len(files)),
		paramtable.Int("workers", poolSize),
		paramtable.Int("devices", len(devices)))

	pool, err := paramtable.NewRendererPool(poolSize, opts...)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.Output.Raster {
		warnMissingCJKFont(pool, env)
	}

	params := &renderParams{
		devices:   devices,
		outputDir: cfg.Output.DefaultDir,
		sort:      cfg.Input.Sort,
		vector:    cfg.Output.Vector,
		raster:    cfg.Output.Raster,
		logger:    logger,
	}
	results := renderBatch(ctx, &poolAdapter{pool: pool}, files, params)

	failed := printResults(results, flags.common.quiet, flags.common.verbose, env)
	if failed == 0 {
		return nil
	}
	if len(results) == 1 {
		return firstError(results)
	}
	return fmt.Errorf("%d of %d file(s) failed: %w", failed, len(results), firstError(results))
}

// loadRenderConfig loads the named config (flag first, then environment) or
// falls back to the environment's default config.
func loadRenderConfig(name string, envCfg *envConfig, env *Environment) (*config.Config, error) {
	if name == "" {
		name = envCfg.ConfigPath
	}
	if name == "" {
		if env.Config != nil {
			cp := *env.Config
			return &cp, nil
		}
		return config.DefaultConfig(), nil
	}
	cfg, err := config.LoadConfig(name)
	if err != nil {
		return nil, &configError{name: name, err: err}
	}
	return cfg, nil
}

// configError keeps the config name for the not-found hint.
type configError struct {
	name string
	err  error
}

func (e *configError) Error() string { return "loading config: " + e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

// warnMissingCJKFont prints a hint when PNG text would fall back to a font
// without CJK glyphs.
func warnMissingCJKFont(pool *paramtable.RendererPool, env *Environment) {
	r := pool.Acquire()
	if r == nil {
		return
	}
	defer pool.Release(r)
	if r.FontSupportsCJK() {
		return
	}
	fmt.Fprintf(env.Stderr, "warning: %v (using %s)%s\n",
		paramtable.ErrFontUnavailable, r.FontName(), hints.ForFontUnavailable(envFontPath))
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	var cfgErr *configError
	switch {
	case errors.As(err, &cfgErr) && errors.Is(err, config.ErrConfigNotFound):
		var searched []string
		if !filepath.IsAbs(cfgErr.name) {
			if dir, dirErr := os.UserConfigDir(); dirErr == nil {
				searched = append(searched, filepath.Join(dir, config.AppDir, cfgErr.name+".yaml"))
			}
		}
		return hints.ForConfigNotFound(searched)
	case errors.Is(err, paramtable.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, paramtable.ErrUnknownDevice):
		return hints.ForUnknownDevice(paramtable.DeviceNames())
	case errors.Is(err, ErrInvalidRecords):
		return hints.ForRecordsFormat()
	case errors.Is(err, ErrWriteOutput), errors.Is(err, os.ErrPermission):
		return hints.ForOutputDirectory()
	}
	return ""
}
