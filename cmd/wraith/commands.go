package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/wraith/internal/mcpserver"
	"github.com/panbanda/wraith/internal/output"
	"github.com/panbanda/wraith/pkg/config"
	"github.com/panbanda/wraith/pkg/deadcode/plugins"
	"github.com/panbanda/wraith/pkg/sorbet"
)

func pluginsCmd() *cli.Command {
	return &cli.Command{
		Name:   "plugins",
		Usage:  "List built-in plugins in default run order",
		Action: runPluginsCmd,
	}
}

func runPluginsCmd(c *cli.Context) error {
	list := plugins.List()
	rows := make([][]string, 0, len(list))
	for _, p := range list {
		rows = append(rows, []string{p.Name, p.Description})
	}

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(output.NewTable("Plugins", []string{"Name", "Description"}, rows, nil, list))
}

func metricsCmd() *cli.Command {
	return &cli.Command{
		Name:      "metrics",
		Usage:     "Summarise a Sorbet metrics file (srb tc --metrics-file)",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "prefix",
				Value: sorbet.DefaultPrefix,
				Usage: "Metric name prefix to strip",
			},
		},
		Action: runMetricsCmd,
	}
}

func runMetricsCmd(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("metrics expects exactly one FILE argument")
	}

	m, err := sorbet.ParseFile(c.Args().First(), c.String("prefix"))
	if err != nil {
		return err
	}
	snap := m.Snapshot()

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format().Structured() {
		return formatter.Output(snap)
	}

	coverage := output.NewTable("Coverage",
		[]string{"Metric", "Value"},
		[][]string{
			{"Files", fmt.Sprint(snap.Files)},
			{"Modules", fmt.Sprint(snap.Modules)},
			{"Classes", fmt.Sprint(snap.Classes)},
			{"Singleton classes", fmt.Sprint(snap.SingletonClasses)},
			{"Methods with sig", fmt.Sprintf("%d (%.1f%%)", snap.MethodsWithSig, snap.SigCoverage())},
			{"Methods without sig", fmt.Sprint(snap.MethodsWithoutSig)},
			{"Typed calls", fmt.Sprintf("%d (%.1f%%)", snap.CallsTyped, snap.CallCoverage())},
			{"Untyped calls", fmt.Sprint(snap.CallsUntyped)},
		},
		nil, nil)

	total := m.FilesCount()
	sigilRows := make([][]string, 0, len(sorbet.Strictnesses))
	for _, s := range sorbet.Strictnesses {
		n := snap.Sigils[s]
		sigilRows = append(sigilRows, []string{s, fmt.Sprint(n), fmt.Sprintf("%.1f%%", sorbet.Percent(n, total))})
	}
	sigils := output.NewTable("Sigils", []string{"Strictness", "Files", "Share"}, sigilRows,
		[]string{"total", fmt.Sprint(total), ""}, nil)

	return formatter.Output(&output.Report{
		Title:    "Sorbet Metrics",
		Sections: []output.Renderable{coverage, sigils},
		Data:     snap,
	})
}

func initCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write a default wraith.toml (or --output path)",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing file",
			},
		},
		Action: runInitCmd,
	}
}

func runInitCmd(c *cli.Context) error {
	path := c.String("output")
	if path == "" {
		path = "wraith.toml"
	}
	if !strings.HasSuffix(path, ".toml") {
		return fmt.Errorf("init writes TOML; %s must end in .toml", path)
	}

	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	content, err := config.DefaultConfig().TOML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintln(c.App.Writer, color.GreenString("Wrote %s", path))
	return nil
}

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve wraith tools over the Model Context Protocol (stdio)",
		Subcommands: []*cli.Command{
			{
				Name:  "manifest",
				Usage: "Print the MCP server manifest (server.json)",
				Action: func(c *cli.Context) error {
					data, err := mcpserver.GenerateManifest(version)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(c.App.Writer, string(data))
					return err
				},
			},
		},
		Action: func(c *cli.Context) error {
			return mcpserver.NewServer(version, loggerFrom(c)).Run(c.Context)
		},
	}
}
