// Package deadcode runs the Ruby dead-code analysis over a set of files: it
// indexes every file in parallel, replays unchanged files from the cache, and
// resolves the sealed index into a report.
package deadcode

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/panbanda/wraith/internal/cache"
	"github.com/panbanda/wraith/internal/fileproc"
	"github.com/panbanda/wraith/pkg/analyzer"
	core "github.com/panbanda/wraith/pkg/deadcode"
	"github.com/panbanda/wraith/pkg/deadcode/plugins"
	"github.com/panbanda/wraith/pkg/parser"
)

// Analyzer finds Ruby definitions whose bare name is never referenced.
type Analyzer struct {
	chain       *core.Chain
	cache       *cache.Cache
	logger      *slog.Logger
	workers     int
	maxFileSize int64
	showIgnored bool
}

// Compile-time check that Analyzer implements analyzer.FileAnalyzer[*Analysis]
var _ analyzer.FileAnalyzer[*Analysis] = (*Analyzer)(nil)

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithChain sets the plugin chain. The default is every built-in plugin.
func WithChain(chain *core.Chain) Option {
	return func(a *Analyzer) {
		if chain != nil {
			a.chain = chain
		}
	}
}

// WithCache replays unchanged files from c and stores fresh results in it.
func WithCache(c *cache.Cache) Option {
	return func(a *Analyzer) {
		a.cache = c
	}
}

// WithLogger sets the logger for skipped files and phase timings.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithWorkers caps concurrent indexing goroutines (0 = 2x NumCPU).
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		a.workers = n
	}
}

// WithMaxFileSize sets the maximum file size to analyze (0 = no limit).
func WithMaxFileSize(maxSize int64) Option {
	return func(a *Analyzer) {
		a.maxFileSize = maxSize
	}
}

// WithShowIgnored lists definitions excluded by plugins in the report.
func WithShowIgnored(show bool) Option {
	return func(a *Analyzer) {
		a.showIgnored = show
	}
}

// New creates a new dead code analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		chain:  plugins.Default(),
		cache:  cache.Disabled(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Chain returns the plugin chain the analyzer indexes with.
func (a *Analyzer) Chain() *core.Chain {
	return a.chain
}

// Analyze indexes files concurrently, waits for every worker, seals the
// index and resolves it. Files that cannot be read or parsed contribute
// nothing and are listed in Analysis.Errors; the run continues without them.
// A cancelled context returns its error instead of a partial analysis.
func (a *Analyzer) Analyze(ctx context.Context, files []string) (*Analysis, error) {
	start := time.Now()
	analysis := &Analysis{
		Dead:    make([]Item, 0),
		Summary: NewSummary(),
	}
	for _, p := range a.chain.Plugins() {
		analysis.Summary.Plugins = append(analysis.Summary.Plugins, p.Name())
	}

	idx := core.NewIndex()
	fingerprint := a.chain.Fingerprint()
	var cached atomic.Int32

	opts := fileproc.Options{Workers: a.workers, MaxFileSize: a.maxFileSize}
	results, errs := fileproc.MapSourceFiles(ctx, files, opts, func(psr *parser.Parser, path string, content []byte) (string, error) {
		hash := cache.ContentHash(content, fingerprint)
		if snap, ok := a.cache.Get(path, hash); ok {
			if err := idx.Restore(snap); err == nil {
				cached.Add(1)
				return path, nil
			}
			a.logger.Debug("discarding unusable cache entry", "path", path)
		}

		result, err := psr.Parse(content, path)
		if err != nil {
			return "", err
		}
		defer result.Close()

		ix := core.NewFileIndexer(path, result.Source, idx, a.chain)
		ix.IndexParsed(result)

		if err := a.cache.Put(path, hash, ix.Snapshot()); err != nil {
			a.logger.Debug("cache write failed", "path", path, "error", err)
		}
		return path, nil
	})

	for _, e := range errs.Sorted() {
		a.logger.Warn("skipping file", "path", e.Path, "error", e.Err)
		analysis.Errors = append(analysis.Errors, FileError{Path: e.Path, Error: e.Err.Error()})
	}
	a.logger.Debug("indexed files",
		"files", len(results),
		"cached", cached.Load(),
		"failed", len(analysis.Errors),
		"elapsed", time.Since(start))

	// A partial index would report live code as dead.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx.Seal()
	resolveStart := time.Now()
	result := core.Resolve(idx)
	a.logger.Debug("resolved index",
		"definitions", result.Total,
		"dead", len(result.Dead),
		"elapsed", time.Since(resolveStart))

	for _, d := range result.Dead {
		item := itemOf(d)
		analysis.Dead = append(analysis.Dead, item)
		analysis.Summary.AddDead(item)
	}
	if a.showIgnored {
		for _, d := range idx.Definitions() {
			if d.Ignored() {
				analysis.Ignored = append(analysis.Ignored, itemOf(d))
			}
		}
	}

	s := &analysis.Summary
	s.TotalFilesAnalyzed = len(results)
	s.FilesFromCache = int(cached.Load())
	s.FilesFailed = len(analysis.Errors)
	s.TotalDefinitions = result.Total
	s.TotalReferences = idx.ReferenceCount()
	s.LiveDefinitions = result.LiveCount()
	s.IgnoredDefinitions = result.Ignored
	s.CalculatePercentage()
	return analysis, nil
}

// Close releases analyzer resources.
func (a *Analyzer) Close() {}
