// Package analyzer holds the contracts shared by wraith's analyzers.
package analyzer

import "context"

// FileAnalyzer analyzes a set of source files as one program.
type FileAnalyzer[T any] interface {
	// Analyze processes files and returns the result. Cancelling ctx stops
	// scheduling new files; a progress Tracker may ride on ctx.
	Analyze(ctx context.Context, files []string) (T, error)

	// Close releases any resources held by the analyzer.
	Close()
}
