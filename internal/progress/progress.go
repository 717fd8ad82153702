// Package progress renders indexing progress on a terminal.
package progress

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"

	"github.com/panbanda/wraith/pkg/analyzer"
)

// Bar wraps a progress bar for file processing.
type Bar struct {
	bar   *progressbar.ProgressBar
	w     io.Writer
	label string
}

// NewSpinner creates a spinner for operations with unknown total count.
func NewSpinner(w io.Writer, label string) *Bar {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	return &Bar{bar: bar, w: w, label: label}
}

// NewBar creates a progress bar with the given label and total count.
func NewBar(w io.Writer, label string, total int) *Bar {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Bar{bar: bar, w: w, label: label}
}

// Tick increments the progress by 1. Safe for concurrent use.
func (b *Bar) Tick() {
	_ = b.bar.Add(1)
}

// Tracker returns an analyzer tracker that advances this bar once per file.
func (b *Bar) Tracker() *analyzer.Tracker {
	return analyzer.NewTracker(func(int, int, string) {
		b.Tick()
	})
}

// FinishSuccess clears the bar completely (no output).
func (b *Bar) FinishSuccess() {
	_ = b.bar.Finish()
	_ = b.bar.Clear()
}

// FinishError clears the bar and prints an error message.
func (b *Bar) FinishError(err error) {
	_ = b.bar.Finish()
	_ = b.bar.Clear()
	fmt.Fprintf(b.w, "  %s error: %v\n", b.label, err)
}
