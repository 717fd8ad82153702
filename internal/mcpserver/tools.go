package mcpserver

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/wraith/internal/output"
	"github.com/panbanda/wraith/internal/scanner"
	"github.com/panbanda/wraith/pkg/analyzer/deadcode"
	"github.com/panbanda/wraith/pkg/config"
	"github.com/panbanda/wraith/pkg/deadcode/plugins"
	"github.com/panbanda/wraith/pkg/sorbet"
)

// FindDeadCodeInput configures a find_dead_code call.
type FindDeadCodeInput struct {
	Paths       []string `json:"paths,omitempty" jsonschema:"Files or directories to analyze. Defaults to current directory if empty."`
	Plugins     []string `json:"plugins,omitempty" jsonschema:"Built-in plugins to enable, in run order. Defaults to all."`
	Ignore      []string `json:"ignore,omitempty" jsonschema:"Extra method names to treat as used. Wrap in slashes for a regular expression."`
	ShowIgnored bool     `json:"show_ignored,omitempty" jsonschema:"Also list definitions excluded by plugins."`
	Format      string   `json:"format,omitempty" jsonschema:"Output format: toon (default), json, yaml, or markdown."`
}

// ListPluginsInput configures a list_plugins call.
type ListPluginsInput struct {
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, yaml, or markdown."`
}

// SorbetMetricsInput configures a sorbet_metrics call.
type SorbetMetricsInput struct {
	File   string `json:"file" jsonschema:"Path to the JSON file written by srb tc --metrics-file."`
	Prefix string `json:"prefix,omitempty" jsonschema:"Metric name prefix to strip. Default ruby_typer.unknown."`
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, yaml, or markdown."`
}

// Helper functions

func getPaths(paths []string) []string {
	if len(paths) == 0 {
		return []string{"."}
	}
	return paths
}

// getFormat defaults to TOON, the most compact encoding for model context.
func getFormat(format string) output.Format {
	switch format {
	case "":
		return output.FormatTOON
	case "text":
		return output.FormatMarkdown
	default:
		return output.ParseFormat(format)
	}
}

func formatOutput(data any, format output.Format) (string, error) {
	var buf bytes.Buffer
	if err := output.NewWriterFormatter(format, &buf, false).Output(data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

// configRoot is the directory searched for a project config: the first path,
// or its parent when it names a file.
func configRoot(paths []string) string {
	root := paths[0]
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		root = filepath.Dir(root)
	}
	return root
}

// Tool handlers

func (s *Server) handleFindDeadCode(ctx context.Context, req *mcp.CallToolRequest, input FindDeadCodeInput) (*mcp.CallToolResult, any, error) {
	paths := getPaths(input.Paths)
	format := getFormat(input.Format)

	cfg, source, err := config.LoadOrDefault(configRoot(paths))
	if err != nil {
		return toolError(err.Error())
	}
	if source != "" {
		s.logger.Debug("loaded config", "path", source)
	}
	if len(input.Plugins) > 0 {
		cfg.Plugins.Enabled = input.Plugins
	}
	cfg.Ignore.Methods = append(cfg.Ignore.Methods, input.Ignore...)

	chain, err := cfg.Chain()
	if err != nil {
		return toolError(err.Error())
	}

	files, err := scanner.NewScanner(cfg).ScanPaths(paths)
	if err != nil {
		return toolError(err.Error())
	}
	if len(files) == 0 {
		return toolError("no Ruby files found")
	}

	a := deadcode.New(
		deadcode.WithChain(chain),
		deadcode.WithLogger(s.logger),
		deadcode.WithWorkers(cfg.Analysis.Workers),
		deadcode.WithMaxFileSize(cfg.Analysis.MaxFileSize),
		deadcode.WithShowIgnored(input.ShowIgnored),
	)
	defer a.Close()

	result, err := a.Analyze(ctx, files)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(result, format)
}

func (s *Server) handleListPlugins(ctx context.Context, req *mcp.CallToolRequest, input ListPluginsInput) (*mcp.CallToolResult, any, error) {
	out := struct {
		Plugins []plugins.Info `json:"plugins" toon:"plugins" yaml:"plugins"`
	}{plugins.List()}
	return toolResult(out, getFormat(input.Format))
}

func (s *Server) handleSorbetMetrics(ctx context.Context, req *mcp.CallToolRequest, input SorbetMetricsInput) (*mcp.CallToolResult, any, error) {
	if input.File == "" {
		return toolError("file is required")
	}
	prefix := input.Prefix
	if prefix == "" {
		prefix = sorbet.DefaultPrefix
	}

	m, err := sorbet.ParseFile(input.File, prefix)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(m.Snapshot(), getFormat(input.Format))
}
