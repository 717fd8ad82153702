package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/wraith/internal/cache"
	"github.com/panbanda/wraith/internal/progress"
	"github.com/panbanda/wraith/internal/scanner"
	"github.com/panbanda/wraith/pkg/analyzer"
	"github.com/panbanda/wraith/pkg/analyzer/deadcode"
)

// errDeadCodeFound makes the process exit non-zero under --fail-on-dead.
var errDeadCodeFound = errors.New("dead code found")

func deadcodeCmd() *cli.Command {
	return &cli.Command{
		Name:      "deadcode",
		Aliases:   []string{"dc"},
		Usage:     "Report classes, modules, methods and constants that are never referenced",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "plugins",
				Usage: "Built-in plugins to enable, in run order (default: all)",
			},
			&cli.StringSliceFlag{
				Name:  "ignore",
				Usage: "Method names to treat as used; wrap in slashes for a regexp",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent indexing workers (default from config, 0 = 2x CPU count)",
			},
			&cli.BoolFlag{
				Name:  "show-ignored",
				Usage: "Also list definitions excluded by plugins",
			},
			&cli.BoolFlag{
				Name:  "fail-on-dead",
				Usage: "Exit with status 1 when dead code is found",
			},
		},
		Action: runDeadcodeCmd,
	}
}

func runDeadcodeCmd(c *cli.Context) error {
	paths := getPaths(c)
	cfg := configFrom(c)
	logger := loggerFrom(c)

	if plugins := c.StringSlice("plugins"); len(plugins) > 0 {
		cfg.Plugins.Enabled = plugins
	}
	cfg.Ignore.Methods = append(cfg.Ignore.Methods, c.StringSlice("ignore")...)
	if c.IsSet("workers") {
		cfg.Analysis.Workers = c.Int("workers")
	}
	if c.Bool("show-ignored") {
		cfg.Analysis.ShowIgnored = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	chain, err := cfg.Chain()
	if err != nil {
		return err
	}

	files, err := scanner.NewScanner(cfg).ScanPaths(paths)
	if err != nil {
		return fmt.Errorf("failed to scan: %w", err)
	}
	if len(files) == 0 {
		fmt.Fprintln(c.App.ErrWriter, color.YellowString("No Ruby files found"))
		return nil
	}
	logger.Debug("scanned", "files", len(files))

	fileCache := cache.Disabled()
	if cfg.Cache.Enabled && !c.Bool("no-cache") {
		fileCache, err = cache.New(cacheDir(cfg.Cache.Dir), cfg.Cache.TTL, true)
		if err != nil {
			logger.Warn("cache unavailable", "error", err)
			fileCache = cache.Disabled()
		}
	}

	a := deadcode.New(
		deadcode.WithChain(chain),
		deadcode.WithCache(fileCache),
		deadcode.WithLogger(logger),
		deadcode.WithWorkers(cfg.Analysis.Workers),
		deadcode.WithMaxFileSize(cfg.Analysis.MaxFileSize),
		deadcode.WithShowIgnored(cfg.Analysis.ShowIgnored),
	)
	defer a.Close()

	ctx := c.Context
	var bar *progress.Bar
	if showProgress(c) {
		bar = progress.NewBar(c.App.ErrWriter, "Indexing", len(files))
		ctx = analyzer.WithTracker(ctx, bar.Tracker())
	}

	analysis, err := a.Analyze(ctx, files)
	if bar != nil {
		if err != nil {
			bar.FinishError(err)
		} else {
			bar.FinishSuccess()
		}
	}
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if err := formatter.Output(analysis); err != nil {
		return err
	}
	if c.Bool("fail-on-dead") && !analysis.Clean() {
		return errDeadCodeFound
	}
	return nil
}

// cacheDir anchors a relative cache directory at the working directory.
func cacheDir(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, dir)
	}
	return dir
}

// showProgress draws a bar only for interactive terminals and quiet runs.
func showProgress(c *cli.Context) bool {
	if c.Bool("verbose") {
		return false
	}
	f, ok := c.App.ErrWriter.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
