package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/wraith/internal/testutil"
)

// TestGetPaths verifies path handling from CLI arguments.
func TestGetPaths(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "no args defaults to current dir",
			args:     []string{},
			expected: []string{"."},
		},
		{
			name:     "single path",
			args:     []string{"/foo/bar"},
			expected: []string{"/foo/bar"},
		},
		{
			name:     "multiple paths",
			args:     []string{"/foo", "/bar"},
			expected: []string{"/foo", "/bar"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := &cli.App{
				Action: func(c *cli.Context) error {
					result := getPaths(c)
					if len(result) != len(tt.expected) {
						t.Errorf("getPaths() = %v, want %v", result, tt.expected)
						return nil
					}
					for i := range result {
						if result[i] != tt.expected[i] {
							t.Errorf("getPaths()[%d] = %q, want %q", i, result[i], tt.expected[i])
						}
					}
					return nil
				},
			}
			args := append([]string{"test"}, tt.args...)
			_ = app.Run(args)
		})
	}
}

// run executes the CLI inside dir and returns stdout, stderr and the error.
func run(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	t.Chdir(dir)
	var stdout, stderr bytes.Buffer
	err := newApp(&stdout, &stderr).Run(append([]string{"wraith"}, args...))
	return stdout.String(), stderr.String(), err
}

var project = map[string]string{
	"lib/report.rb": `class Report
  def build
    header
  end

  def header; end

  def stale; end
end
`,
	"bin/run.rb": "Report.new.build\n",
}

type jsonReport struct {
	Dead []struct {
		FullName string `json:"full_name"`
		File     string `json:"file"`
		Line     int    `json:"line"`
	} `json:"dead"`
	Summary struct {
		TotalFilesAnalyzed int      `json:"total_files_analyzed"`
		FilesFromCache     int      `json:"files_from_cache"`
		Plugins            []string `json:"plugins"`
	} `json:"summary"`
}

func decode(t *testing.T, out string) jsonReport {
	t.Helper()
	var r jsonReport
	if err := json.Unmarshal([]byte(out), &r); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	return r
}

func TestDeadcodeCommand(t *testing.T) {
	dir := testutil.TempTree(t, project)

	out, _, err := run(t, dir, "--format", "json", "--no-cache", "deadcode")
	if err != nil {
		t.Fatalf("deadcode failed: %v", err)
	}
	r := decode(t, out)
	if len(r.Dead) != 1 || r.Dead[0].FullName != "Report#stale" {
		t.Fatalf("dead = %+v, want only Report#stale", r.Dead)
	}
	if r.Dead[0].Line != 8 {
		t.Errorf("line = %d, want 8", r.Dead[0].Line)
	}
	if r.Summary.TotalFilesAnalyzed != 2 {
		t.Errorf("files = %d, want 2", r.Summary.TotalFilesAnalyzed)
	}
	if _, err := os.Stat(filepath.Join(dir, ".wraith")); !os.IsNotExist(err) {
		t.Error("--no-cache should not create a cache directory")
	}
}

func TestDeadcodeCommandText(t *testing.T) {
	dir := testutil.TempTree(t, project)

	out, _, err := run(t, dir, "--no-cache", "dc", ".")
	if err != nil {
		t.Fatalf("dc failed: %v", err)
	}
	if !strings.Contains(out, "Report#stale") {
		t.Errorf("text output missing Report#stale:\n%s", out)
	}
}

func TestDeadcodeCommandFlags(t *testing.T) {
	dir := testutil.TempTree(t, project)

	out, _, err := run(t, dir, "-f", "json", "--no-cache", "deadcode", "--ignore", "stale", "--plugins", "ruby")
	if err != nil {
		t.Fatalf("deadcode failed: %v", err)
	}
	r := decode(t, out)
	if len(r.Dead) != 0 {
		t.Errorf("dead = %+v, want none with --ignore stale", r.Dead)
	}
	if strings.Join(r.Summary.Plugins, ",") != "ruby,custom" {
		t.Errorf("plugins = %v, want [ruby custom]", r.Summary.Plugins)
	}

	_, _, err = run(t, dir, "--no-cache", "deadcode", "--plugins", "django")
	if err == nil || !strings.Contains(err.Error(), "unknown plugin") {
		t.Errorf("unknown plugin error = %v", err)
	}
}

func TestDeadcodeCommandFailOnDead(t *testing.T) {
	dir := testutil.TempTree(t, project)

	_, _, err := run(t, dir, "-f", "json", "--no-cache", "deadcode", "--fail-on-dead")
	if !errors.Is(err, errDeadCodeFound) {
		t.Errorf("err = %v, want errDeadCodeFound", err)
	}

	clean := testutil.TempTree(t, map[string]string{"a.rb": "def used; end\nused\n"})
	if _, _, err := run(t, clean, "-f", "json", "--no-cache", "deadcode", "--fail-on-dead"); err != nil {
		t.Errorf("clean project err = %v", err)
	}
}

func TestDeadcodeCommandCache(t *testing.T) {
	dir := testutil.TempTree(t, project)

	out, _, err := run(t, dir, "-f", "json", "deadcode")
	if err != nil {
		t.Fatalf("cold run failed: %v", err)
	}
	if r := decode(t, out); r.Summary.FilesFromCache != 0 {
		t.Errorf("cold run cached = %d", r.Summary.FilesFromCache)
	}

	out, _, err = run(t, dir, "-f", "json", "deadcode")
	if err != nil {
		t.Fatalf("warm run failed: %v", err)
	}
	r := decode(t, out)
	if r.Summary.FilesFromCache != 2 {
		t.Errorf("warm run cached = %d, want 2", r.Summary.FilesFromCache)
	}
	if len(r.Dead) != 1 || r.Dead[0].FullName != "Report#stale" {
		t.Errorf("warm run dead = %+v", r.Dead)
	}
}

func TestDeadcodeCommandNoFiles(t *testing.T) {
	dir := t.TempDir()
	out, errOut, err := run(t, dir, "--no-cache", "deadcode")
	if err != nil {
		t.Fatalf("deadcode failed: %v", err)
	}
	if out != "" || !strings.Contains(errOut, "No Ruby files found") {
		t.Errorf("stdout = %q, stderr = %q", out, errOut)
	}
}

func TestDeadcodeCommandOutputFile(t *testing.T) {
	dir := testutil.TempTree(t, project)
	target := filepath.Join(t.TempDir(), "report.md")

	out, _, err := run(t, dir, "--no-cache", "-f", "markdown", "-o", target, "deadcode")
	if err != nil {
		t.Fatalf("deadcode failed: %v", err)
	}
	if out != "" {
		t.Errorf("stdout should be empty when writing to a file, got %q", out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# Dead Code Report") {
		t.Errorf("report file =\n%s", data)
	}
}

func TestConfigFile(t *testing.T) {
	dir := testutil.TempTree(t, project)
	cfg := filepath.Join(dir, "wraith.toml")
	if err := os.WriteFile(cfg, []byte("[ignore]\nmethods = [\"/^st/\"]\n[output]\nformat = \"json\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	out, _, err := run(t, dir, "--no-cache", "deadcode")
	if err != nil {
		t.Fatalf("deadcode failed: %v", err)
	}
	if r := decode(t, out); len(r.Dead) != 0 {
		t.Errorf("dead = %+v, want none with config ignore", r.Dead)
	}

	if err := os.WriteFile(cfg, []byte("[output]\nformat = \"xml\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := run(t, dir, "deadcode"); err == nil {
		t.Error("invalid config should fail")
	}

	other := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(other, []byte("output:\n  format: json\n"), 0644); err != nil {
		t.Fatal(err)
	}
	out, _, err = run(t, dir, "--config", other, "--no-cache", "deadcode")
	if err != nil {
		t.Fatalf("--config failed: %v", err)
	}
	decode(t, out)
}

func TestPluginsCommand(t *testing.T) {
	out, _, err := run(t, t.TempDir(), "plugins")
	if err != nil {
		t.Fatalf("plugins failed: %v", err)
	}
	for _, name := range []string{"ruby", "rails", "minitest", "rspec", "rake", "thor", "sorbet"} {
		if !strings.Contains(out, name) {
			t.Errorf("plugins output missing %s:\n%s", name, out)
		}
	}
}

const metricsDoc = `{"metrics": [
  {"name": "ruby_typer.unknown.types.input.files", "value": 2},
  {"name": "ruby_typer.unknown.types.input.files.sigil.true", "value": 1},
  {"name": "ruby_typer.unknown.types.input.files.sigil.strict", "value": 1},
  {"name": "ruby_typer.unknown.types.input.methods.total", "value": 4},
  {"name": "ruby_typer.unknown.types.sig.count", "value": 3}
]}`

func TestMetricsCommand(t *testing.T) {
	dir := testutil.TempTree(t, map[string]string{"metrics.json": metricsDoc})

	out, _, err := run(t, dir, "-f", "json", "metrics", "metrics.json")
	if err != nil {
		t.Fatalf("metrics failed: %v", err)
	}
	var snap struct {
		Files          int64 `json:"files"`
		MethodsWithSig int64 `json:"methods_with_sig"`
	}
	if err := json.Unmarshal([]byte(out), &snap); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if snap.Files != 2 || snap.MethodsWithSig != 3 {
		t.Errorf("snapshot = %+v", snap)
	}

	out, _, err = run(t, dir, "metrics", "metrics.json")
	if err != nil {
		t.Fatalf("metrics failed: %v", err)
	}
	for _, want := range []string{"Sorbet Metrics", "Sigils", "strict", "75.0%"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}

	if _, _, err := run(t, dir, "metrics"); err == nil {
		t.Error("metrics without FILE should fail")
	}
	if _, _, err := run(t, dir, "metrics", "--prefix", "x.", "missing.json"); err == nil {
		t.Error("metrics with a missing file should fail")
	}
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()

	out, _, err := run(t, dir, "init")
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if !strings.Contains(out, "Wrote wraith.toml") {
		t.Errorf("init output = %q", out)
	}
	data, err := os.ReadFile(filepath.Join(dir, "wraith.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# wraith configuration") {
		t.Errorf("config =\n%s", data)
	}

	if _, _, err := run(t, dir, "init"); err == nil {
		t.Error("init should refuse to overwrite")
	}
	if _, _, err := run(t, dir, "init", "--force"); err != nil {
		t.Errorf("init --force failed: %v", err)
	}
	if _, _, err := run(t, dir, "-o", "custom.yaml", "init"); err == nil {
		t.Error("init should only write TOML")
	}
	if _, _, err := run(t, dir, "-o", "alt.toml", "init"); err != nil {
		t.Errorf("init -o alt.toml failed: %v", err)
	}
}

func TestMCPManifest(t *testing.T) {
	out, _, err := run(t, t.TempDir(), "mcp", "manifest")
	if err != nil {
		t.Fatalf("mcp manifest failed: %v", err)
	}
	var m struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(out), &m); err != nil {
		t.Fatalf("manifest is not JSON: %v", err)
	}
	if m.Name != "io.github.panbanda/wraith" {
		t.Errorf("name = %q", m.Name)
	}
}
