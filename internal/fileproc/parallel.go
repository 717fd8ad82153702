// Package fileproc provides concurrent file processing utilities.
package fileproc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/panbanda/wraith/pkg/analyzer"
	"github.com/panbanda/wraith/pkg/parser"
)

// ErrFileTooLarge is recorded for files skipped by the size limit.
var ErrFileTooLarge = errors.New("file exceeds size limit")

// ProcessingError represents an error that occurred while processing a file.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Unwrap exposes the underlying error to errors.Is.
func (e ProcessingError) Unwrap() error {
	return e.Err
}

// ProcessingErrors collects multiple file processing errors.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error to the collection (thread-safe).
func (e *ProcessingErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	if e == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// Sorted returns the collected errors ordered by path.
func (e *ProcessingErrors) Sorted() []ProcessingError {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	out := append([]ProcessingError(nil), e.Errors...)
	e.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker count.
// 2x is optimal for mixed I/O and CGO workloads.
const DefaultWorkerMultiplier = 2

// Options tune a parallel run.
type Options struct {
	// Workers caps concurrent goroutines. <= 0 means 2x NumCPU.
	Workers int
	// MaxFileSize skips larger files with ErrFileTooLarge. 0 means no limit.
	MaxFileSize int64
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU() * DefaultWorkerMultiplier
}

// MapFiles processes files in parallel, calling fn with a pooled parser.
// Results keep the input order of the files that succeeded.
// Progress is tracked via context using analyzer.WithTracker.
func MapFiles[T any](ctx context.Context, files []string, fn func(*parser.Parser, string) (T, error)) ([]T, *ProcessingErrors) {
	return MapFilesN(ctx, files, Options{}, fn)
}

// MapFilesWithSizeLimit is MapFiles skipping files larger than maxSize bytes.
func MapFilesWithSizeLimit[T any](ctx context.Context, files []string, maxSize int64, fn func(*parser.Parser, string) (T, error)) ([]T, *ProcessingErrors) {
	return MapFilesN(ctx, files, Options{MaxFileSize: maxSize}, fn)
}

// MapFilesN processes files with explicit options.
func MapFilesN[T any](ctx context.Context, files []string, opts Options, fn func(*parser.Parser, string) (T, error)) ([]T, *ProcessingErrors) {
	return run(ctx, files, opts, func(psr *parser.Parser, path string) (T, error) {
		if opts.MaxFileSize > 0 {
			info, err := os.Stat(path)
			if err != nil {
				var zero T
				return zero, err
			}
			if info.Size() > opts.MaxFileSize {
				var zero T
				return zero, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, info.Size())
			}
		}
		return fn(psr, path)
	})
}

// MapSourceFiles reads each file inside its worker and hands the content to
// fn, so callers can hash or cache before parsing.
func MapSourceFiles[T any](ctx context.Context, files []string, opts Options, fn func(*parser.Parser, string, []byte) (T, error)) ([]T, *ProcessingErrors) {
	return run(ctx, files, opts, func(psr *parser.Parser, path string) (T, error) {
		var zero T
		content, err := os.ReadFile(path)
		if err != nil {
			return zero, fmt.Errorf("failed to read file: %w", err)
		}
		if opts.MaxFileSize > 0 && int64(len(content)) > opts.MaxFileSize {
			return zero, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, len(content))
		}
		return fn(psr, path, content)
	})
}

func run[T any](ctx context.Context, files []string, opts Options, fn func(*parser.Parser, string) (T, error)) ([]T, *ProcessingErrors) {
	if len(files) == 0 {
		return nil, nil
	}

	tracker := analyzer.TrackerFromContext(ctx)
	if tracker != nil {
		tracker.Add(len(files))
	}

	maxWorkers := opts.workers()
	parsers := newParserPool(maxWorkers)
	defer parsers.close()

	slots := make([]T, len(files))
	ok := make([]bool, len(files))
	errs := &ProcessingErrors{}

	p := pool.New().WithMaxGoroutines(maxWorkers).WithContext(ctx)
	for i, path := range files {
		p.Go(func(ctx context.Context) error {
			defer func() {
				if tracker != nil {
					tracker.Tick(path)
				}
			}()

			// Check for cancellation before processing
			select {
			case <-ctx.Done():
				errs.Add(path, ctx.Err())
				return ctx.Err()
			default:
			}

			psr := parsers.get()
			defer parsers.put(psr)

			result, err := fn(psr, path)
			if err != nil {
				errs.Add(path, err)
				return nil // Don't stop pool on individual file errors
			}

			slots[i] = result
			ok[i] = true
			return nil
		})
	}
	_ = p.Wait() // Context errors are already captured in errs

	results := make([]T, 0, len(files))
	for i := range slots {
		if ok[i] {
			results = append(results, slots[i])
		}
	}

	if !errs.HasErrors() {
		return results, nil
	}
	return results, errs
}

// parserPool reuses tree-sitter parsers across files. Parsers are not safe
// for concurrent use, so each is held by one goroutine at a time.
type parserPool struct {
	ch chan *parser.Parser
}

func newParserPool(size int) *parserPool {
	return &parserPool{ch: make(chan *parser.Parser, size)}
}

func (p *parserPool) get() *parser.Parser {
	select {
	case psr := <-p.ch:
		return psr
	default:
		return parser.New()
	}
}

func (p *parserPool) put(psr *parser.Parser) {
	select {
	case p.ch <- psr:
	default:
		psr.Close()
	}
}

func (p *parserPool) close() {
	close(p.ch)
	for psr := range p.ch {
		psr.Close()
	}
}
