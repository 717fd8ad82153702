package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/wraith/internal/output"
	"github.com/panbanda/wraith/pkg/config"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

const (
	metaLogger = "logger"
	metaConfig = "config"
)

// getPaths returns paths from positional args, defaulting to ["."]
func getPaths(c *cli.Context) []string {
	if c.Args().Len() > 0 {
		return c.Args().Slice()
	}
	return []string{"."}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "wraith",
		Usage:     "Find dead code in Ruby projects",
		Version:   version,
		Writer:    stdout,
		ErrWriter: stderr,
		Metadata:  make(map[string]interface{}),
		Description: `Wraith indexes every class, module, method, accessor and constant in a
Ruby codebase and reports the ones whose name is never referenced.

Plugins teach it the entry points of Ruby, Rails, Minitest, RSpec, Rake,
Thor and Sorbet.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"WRAITH_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, markdown, toon, yaml (default from config)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable caching",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			deadcodeCmd(),
			pluginsCmd(),
			metricsCmd(),
			initCmd(),
			mcpCmd(),
		},
	}
}

// setup installs the logger and loads the configuration once for every
// command.
func setup(c *cli.Context) error {
	level := slog.LevelWarn
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: level}))
	c.App.Metadata[metaLogger] = logger

	var (
		cfg    *config.Config
		source string
		err    error
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
		source = path
	} else {
		cfg, source, err = config.LoadOrDefault(".")
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if source != "" {
		logger.Debug("loaded config", "path", source)
	}
	c.App.Metadata[metaConfig] = cfg
	return nil
}

func loggerFrom(c *cli.Context) *slog.Logger {
	if l, ok := c.App.Metadata[metaLogger].(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func configFrom(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[metaConfig].(*config.Config); ok {
		return cfg
	}
	return config.DefaultConfig()
}

// newFormatter honours --format over the configured format and writes to
// --output or the app's writer.
func newFormatter(c *cli.Context) (*output.Formatter, error) {
	cfg := configFrom(c)
	name := c.String("format")
	if name == "" {
		name = cfg.Output.Format
	}
	format := output.ParseFormat(name)
	colored := cfg.Output.Color && !color.NoColor

	if path := c.String("output"); path != "" {
		return output.NewFormatter(format, path, false)
	}
	return output.NewWriterFormatter(format, c.App.Writer, colored), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout, os.Stderr).RunContext(ctx, os.Args); err != nil {
		if !errors.Is(err, errDeadCodeFound) {
			color.Red("Error: %v", err)
		}
		os.Exit(1)
	}
}
