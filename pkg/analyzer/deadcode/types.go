package deadcode

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/fatih/color"

	"github.com/panbanda/wraith/internal/output"
	core "github.com/panbanda/wraith/pkg/deadcode"
)

// Item is one definition in the report.
type Item struct {
	Kind       core.Kind `json:"kind" toon:"kind" yaml:"kind"`
	Name       string    `json:"name" toon:"name" yaml:"name"`
	FullName   string    `json:"full_name" toon:"full_name" yaml:"full_name"`
	Owner      string    `json:"owner,omitempty" toon:"owner,omitempty" yaml:"owner,omitempty"`
	File       string    `json:"file" toon:"file" yaml:"file"`
	Line       int       `json:"line" toon:"line" yaml:"line"`
	Column     int       `json:"column" toon:"column" yaml:"column"`
	EndLine    int       `json:"end_line" toon:"end_line" yaml:"end_line"`
	Visibility string    `json:"visibility" toon:"visibility" yaml:"visibility"`
}

func itemOf(d *core.Definition) Item {
	loc := d.Location()
	return Item{
		Kind:       d.Kind(),
		Name:       d.Name(),
		FullName:   d.FullName(),
		Owner:      d.Owner(),
		File:       loc.File,
		Line:       loc.StartLine,
		Column:     loc.StartColumn,
		EndLine:    loc.EndLine,
		Visibility: d.Visibility().String(),
	}
}

// Lines returns the number of source lines the item spans.
func (i Item) Lines() int {
	if i.EndLine < i.Line {
		return 1
	}
	return i.EndLine - i.Line + 1
}

// FileError records a file excluded from the analysis.
type FileError struct {
	Path  string `json:"path" toon:"path" yaml:"path"`
	Error string `json:"error" toon:"error" yaml:"error"`
}

// Summary provides aggregate statistics.
type Summary struct {
	TotalFilesAnalyzed int               `json:"total_files_analyzed" toon:"total_files_analyzed" yaml:"total_files_analyzed"`
	FilesFromCache     int               `json:"files_from_cache" toon:"files_from_cache" yaml:"files_from_cache"`
	FilesFailed        int               `json:"files_failed" toon:"files_failed" yaml:"files_failed"`
	TotalDefinitions   int               `json:"total_definitions" toon:"total_definitions" yaml:"total_definitions"`
	TotalReferences    int               `json:"total_references" toon:"total_references" yaml:"total_references"`
	LiveDefinitions    int               `json:"live_definitions" toon:"live_definitions" yaml:"live_definitions"`
	DeadDefinitions    int               `json:"dead_definitions" toon:"dead_definitions" yaml:"dead_definitions"`
	IgnoredDefinitions int               `json:"ignored_definitions" toon:"ignored_definitions" yaml:"ignored_definitions"`
	DeadLines          int               `json:"dead_lines" toon:"dead_lines" yaml:"dead_lines"`
	DeadPercentage     float64           `json:"dead_percentage" toon:"dead_percentage" yaml:"dead_percentage"`
	ByKind             map[core.Kind]int `json:"by_kind" toon:"by_kind" yaml:"by_kind"`
	ByFile             map[string]int    `json:"by_file" toon:"by_file" yaml:"by_file"`
	Plugins            []string          `json:"plugins" toon:"plugins" yaml:"plugins"`
}

// NewSummary creates an initialized summary.
func NewSummary() Summary {
	return Summary{
		ByKind: make(map[core.Kind]int),
		ByFile: make(map[string]int),
	}
}

// AddDead updates the summary with a dead item.
func (s *Summary) AddDead(item Item) {
	s.DeadDefinitions++
	s.DeadLines += item.Lines()
	s.ByKind[item.Kind]++
	s.ByFile[item.File]++
}

// CalculatePercentage computes the share of non-ignored definitions found dead.
func (s *Summary) CalculatePercentage() {
	considered := s.DeadDefinitions + s.LiveDefinitions
	if considered > 0 {
		s.DeadPercentage = float64(s.DeadDefinitions) / float64(considered) * 100
	}
}

// Analysis represents the full dead code detection result.
type Analysis struct {
	Dead    []Item      `json:"dead" toon:"dead" yaml:"dead"`
	Ignored []Item      `json:"ignored,omitempty" toon:"ignored,omitempty" yaml:"ignored,omitempty"`
	Errors  []FileError `json:"errors,omitempty" toon:"errors,omitempty" yaml:"errors,omitempty"`
	Summary Summary     `json:"summary" toon:"summary" yaml:"summary"`
}

// FileMetrics groups the dead items of one file.
type FileMetrics struct {
	Path      string `json:"path" toon:"path" yaml:"path"`
	DeadItems int    `json:"dead_items" toon:"dead_items" yaml:"dead_items"`
	DeadLines int    `json:"dead_lines" toon:"dead_lines" yaml:"dead_lines"`
	Items     []Item `json:"items" toon:"items" yaml:"items"`
}

// ByFile groups dead items per file, most dead items first.
func (a *Analysis) ByFile() []FileMetrics {
	index := make(map[string]int)
	var files []FileMetrics
	for _, item := range a.Dead {
		i, ok := index[item.File]
		if !ok {
			i = len(files)
			index[item.File] = i
			files = append(files, FileMetrics{Path: item.File})
		}
		files[i].DeadItems++
		files[i].DeadLines += item.Lines()
		files[i].Items = append(files[i].Items, item)
	}
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].DeadItems != files[j].DeadItems {
			return files[i].DeadItems > files[j].DeadItems
		}
		return files[i].Path < files[j].Path
	})
	return files
}

// Clean reports whether the analysis found nothing dead.
func (a *Analysis) Clean() bool {
	return len(a.Dead) == 0
}

// Compile-time check that Analysis renders through the output formatter.
var _ output.Renderable = (*Analysis)(nil)

func (a *Analysis) RenderData() any {
	return a
}

func (a *Analysis) tables() []*output.Table {
	rows := make([][]string, 0, len(a.Dead))
	for _, item := range a.Dead {
		rows = append(rows, []string{
			fmt.Sprintf("%s:%d", item.File, item.Line),
			string(item.Kind),
			item.FullName,
			item.Visibility,
		})
	}
	tables := []*output.Table{
		output.NewTable("Dead Code", []string{"Location", "Kind", "Name", "Visibility"}, rows,
			[]string{"", "", fmt.Sprintf("%d dead", len(a.Dead)), ""}, nil),
	}

	if len(a.Ignored) > 0 {
		ignored := make([][]string, 0, len(a.Ignored))
		for _, item := range a.Ignored {
			ignored = append(ignored, []string{fmt.Sprintf("%s:%d", item.File, item.Line), string(item.Kind), item.FullName})
		}
		tables = append(tables, output.NewTable("Ignored by plugins", []string{"Location", "Kind", "Name"}, ignored, nil, nil))
	}

	if len(a.Errors) > 0 {
		errs := make([][]string, 0, len(a.Errors))
		for _, e := range a.Errors {
			errs = append(errs, []string{e.Path, e.Error})
		}
		tables = append(tables, output.NewTable("Skipped files", []string{"File", "Error"}, errs, nil, nil))
	}
	return tables
}

func (a *Analysis) summaryRows() [][]string {
	s := a.Summary
	rows := [][]string{
		{"Files analyzed", strconv.Itoa(s.TotalFilesAnalyzed)},
		{"Files from cache", strconv.Itoa(s.FilesFromCache)},
		{"Files skipped", strconv.Itoa(s.FilesFailed)},
		{"Definitions", strconv.Itoa(s.TotalDefinitions)},
		{"References", strconv.Itoa(s.TotalReferences)},
		{"Ignored", strconv.Itoa(s.IgnoredDefinitions)},
		{"Dead", fmt.Sprintf("%d (%.1f%%)", s.DeadDefinitions, s.DeadPercentage)},
	}
	for _, k := range core.Kinds {
		if n := s.ByKind[k]; n > 0 {
			rows = append(rows, []string{"  " + string(k), strconv.Itoa(n)})
		}
	}
	return rows
}

func (a *Analysis) RenderText(w io.Writer, colored bool) error {
	if a.Clean() {
		msg := fmt.Sprintf("No dead code found in %d files.", a.Summary.TotalFilesAnalyzed)
		if colored {
			color.New(color.FgGreen).Fprintln(w, msg)
		} else {
			fmt.Fprintln(w, msg)
		}
	} else {
		for _, t := range a.tables() {
			if err := t.RenderText(w, colored); err != nil {
				return err
			}
		}
	}

	return output.NewTable("Summary", []string{"Metric", "Value"}, a.summaryRows(), nil, nil).RenderText(w, colored)
}

func (a *Analysis) RenderMarkdown(w io.Writer) error {
	fmt.Fprintf(w, "# Dead Code Report\n\n")
	for _, t := range a.tables() {
		if err := t.RenderMarkdown(w); err != nil {
			return err
		}
	}

	files := a.ByFile()
	if len(files) > 0 {
		rows := make([][]string, 0, len(files))
		for _, f := range files {
			rows = append(rows, []string{f.Path, strconv.Itoa(f.DeadItems), strconv.Itoa(f.DeadLines)})
		}
		if err := output.NewTable("By File", []string{"File", "Dead", "Lines"}, rows, nil, nil).RenderMarkdown(w); err != nil {
			return err
		}
	}

	return output.NewTable("Summary", []string{"Metric", "Value"}, a.summaryRows(), nil, nil).RenderMarkdown(w)
}
