package fileproc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/panbanda/wraith/pkg/analyzer"
	"github.com/panbanda/wraith/pkg/parser"
)

func TestMapFiles(t *testing.T) {
	tmpDir := t.TempDir()

	files := []string{
		createTestFile(t, tmpDir, "a.rb", "def a\nend\n"),
		createTestFile(t, tmpDir, "b.rb", "def b\nend\n"),
		createTestFile(t, tmpDir, "c.rb", "def c\nend\n"),
	}

	ctx := context.Background()
	results, errs := MapFiles(ctx, files, func(p *parser.Parser, path string) (string, error) {
		return filepath.Base(path), nil
	})

	if errs != nil {
		t.Errorf("Unexpected errors: %v", errs)
	}

	want := []string{"a.rb", "b.rb", "c.rb"}
	if fmt.Sprint(results) != fmt.Sprint(want) {
		t.Errorf("results = %v, want %v in input order", results, want)
	}
}

func TestMapFiles_EmptyFileList(t *testing.T) {
	results, errs := MapFiles(context.Background(), []string{}, func(p *parser.Parser, path string) (string, error) {
		return path, nil
	})

	if results != nil {
		t.Errorf("Expected nil for empty file list, got %v", results)
	}
	if errs != nil {
		t.Errorf("Expected nil errors for empty file list, got %v", errs)
	}
}

func TestMapFiles_WithErrors(t *testing.T) {
	tmpDir := t.TempDir()
	good := createTestFile(t, tmpDir, "good.rb", "class Good\nend\n")
	bad := createTestFile(t, tmpDir, "bad.rb", "class Bad\n  def oops(\nend\n")

	results, errs := MapFiles(context.Background(), []string{good, bad}, func(p *parser.Parser, path string) (string, error) {
		res, err := p.ParseFile(path)
		if err != nil {
			return "", err
		}
		defer res.Close()
		return filepath.Base(path), nil
	})

	if len(results) != 1 || results[0] != "good.rb" {
		t.Errorf("results = %v, want [good.rb]", results)
	}
	if errs == nil || len(errs.Errors) != 1 {
		t.Fatalf("Expected 1 error, got %v", errs)
	}
	if errs.Errors[0].Path != bad {
		t.Errorf("error path = %s, want %s", errs.Errors[0].Path, bad)
	}
	if !errors.Is(errs.Errors[0], parser.ErrSyntax) {
		t.Errorf("error should wrap parser.ErrSyntax: %v", errs.Errors[0])
	}
}

func TestMapFiles_ParserReuse(t *testing.T) {
	tmpDir := t.TempDir()
	fileCount := 50
	files := make([]string, fileCount)
	for i := range fileCount {
		files[i] = createTestFile(t, tmpDir, fmt.Sprintf("f%d.rb", i), "x = 1\n")
	}

	var parsed atomic.Int32
	results, errs := MapFilesN(context.Background(), files, Options{Workers: 2}, func(p *parser.Parser, path string) (int, error) {
		res, err := p.ParseFile(path)
		if err != nil {
			return 0, err
		}
		res.Close()
		parsed.Add(1)
		return 1, nil
	})

	if errs != nil {
		t.Errorf("Unexpected errors: %v", errs)
	}
	if len(results) != fileCount || int(parsed.Load()) != fileCount {
		t.Errorf("Expected %d parsed files, got %d results and %d parses", fileCount, len(results), parsed.Load())
	}
}

func TestMapFiles_WithProgress(t *testing.T) {
	tmpDir := t.TempDir()
	files := []string{
		createTestFile(t, tmpDir, "1.rb", "a"),
		createTestFile(t, tmpDir, "2.rb", "b"),
		createTestFile(t, tmpDir, "3.rb", "c"),
	}

	progressCount := atomic.Int32{}
	tracker := analyzer.NewTracker(func(current, total int, path string) {
		progressCount.Add(1)
	})

	ctx := analyzer.WithTracker(context.Background(), tracker)
	results, errs := MapFiles(ctx, files, func(p *parser.Parser, path string) (int, error) {
		return 1, nil
	})

	if errs != nil {
		t.Errorf("Unexpected errors: %v", errs)
	}
	if len(results) != len(files) {
		t.Errorf("Expected %d results, got %d", len(files), len(results))
	}
	if int(progressCount.Load()) != len(files) {
		t.Errorf("Expected progress callback %d times, got %d", len(files), progressCount.Load())
	}
	if tracker.Total() != len(files) {
		t.Errorf("tracker total = %d, want %d", tracker.Total(), len(files))
	}
}

func TestMapFiles_Cancellation(t *testing.T) {
	tmpDir := t.TempDir()

	fileCount := 100
	files := make([]string, fileCount)
	for i := range fileCount {
		files[i] = createTestFile(t, tmpDir, fmt.Sprintf("file%d.rb", i), "x")
	}

	ctx, cancel := context.WithCancel(context.Background())

	var processed atomic.Int32
	go func() {
		for processed.Load() < 10 {
			runtime.Gosched()
		}
		cancel()
	}()

	results, errs := MapFiles(ctx, files, func(p *parser.Parser, path string) (string, error) {
		processed.Add(1)
		for range 1000 {
			runtime.Gosched()
		}
		return filepath.Base(path), nil
	})

	errorCount := 0
	if errs != nil {
		errorCount = len(errs.Errors)
		for _, e := range errs.Errors {
			if !errors.Is(e, context.Canceled) {
				t.Errorf("unexpected error: %v", e)
			}
		}
	}
	if len(results)+errorCount != fileCount {
		t.Errorf("Results (%d) + errors (%d) should equal file count (%d)", len(results), errorCount, fileCount)
	}
}

func TestMapFilesWithSizeLimit(t *testing.T) {
	tmpDir := t.TempDir()

	smallFile := createTestFile(t, tmpDir, "small.rb", "x = 1")
	largeContent := make([]byte, 1024)
	for i := range largeContent {
		largeContent[i] = '#'
	}
	largeFile := filepath.Join(tmpDir, "large.rb")
	if err := os.WriteFile(largeFile, largeContent, 0644); err != nil {
		t.Fatalf("failed to create large file: %v", err)
	}

	t.Run("with size limit", func(t *testing.T) {
		results, errs := MapFilesWithSizeLimit(context.Background(), []string{smallFile, largeFile}, 100, func(p *parser.Parser, path string) (string, error) {
			return filepath.Base(path), nil
		})

		if len(results) != 1 {
			t.Errorf("Expected 1 result (small file only), got %d", len(results))
		}
		if errs == nil || len(errs.Errors) != 1 {
			t.Fatalf("Expected 1 error for large file, got %v", errs)
		}
		if !errors.Is(errs.Errors[0], ErrFileTooLarge) {
			t.Errorf("expected ErrFileTooLarge, got %v", errs.Errors[0])
		}
	})

	t.Run("no size limit", func(t *testing.T) {
		results, errs := MapFilesWithSizeLimit(context.Background(), []string{smallFile, largeFile}, 0, func(p *parser.Parser, path string) (string, error) {
			return filepath.Base(path), nil
		})

		if errs != nil {
			t.Errorf("Unexpected errors: %v", errs)
		}
		if len(results) != 2 {
			t.Errorf("Expected 2 results with no limit, got %d", len(results))
		}
	})

	t.Run("stat error handling", func(t *testing.T) {
		nonExistent := filepath.Join(tmpDir, "nonexistent.rb")
		results, errs := MapFilesWithSizeLimit(context.Background(), []string{nonExistent}, 100, func(p *parser.Parser, path string) (string, error) {
			return filepath.Base(path), nil
		})

		if len(results) != 0 {
			t.Errorf("Expected 0 results, got %d", len(results))
		}
		if errs == nil || len(errs.Errors) != 1 {
			t.Errorf("Expected 1 error, got %v", errs)
		}
	})
}

func TestMapSourceFiles(t *testing.T) {
	tmpDir := t.TempDir()
	files := []string{
		createTestFile(t, tmpDir, "a.rb", "abc"),
		filepath.Join(tmpDir, "missing.rb"),
	}

	results, errs := MapSourceFiles(context.Background(), files, Options{}, func(p *parser.Parser, path string, content []byte) (int, error) {
		return len(content), nil
	})

	if len(results) != 1 || results[0] != 3 {
		t.Errorf("results = %v, want [3]", results)
	}
	if !errs.HasErrors() {
		t.Fatal("expected a read error for the missing file")
	}
	sorted := errs.Sorted()
	if len(sorted) != 1 || sorted[0].Path != files[1] {
		t.Errorf("sorted errors = %v", sorted)
	}
}

func TestProcessingErrors(t *testing.T) {
	var nilErrs *ProcessingErrors
	if nilErrs.HasErrors() {
		t.Error("nil ProcessingErrors should report no errors")
	}

	errs := &ProcessingErrors{}
	if errs.Error() != "no errors" {
		t.Errorf("empty Error() = %q", errs.Error())
	}

	errs.Add("b.rb", errors.New("boom"))
	if errs.Error() != "b.rb: boom" {
		t.Errorf("single Error() = %q", errs.Error())
	}

	errs.Add("a.rb", errors.New("bang"))
	if got := errs.Sorted()[0].Path; got != "a.rb" {
		t.Errorf("Sorted()[0] = %s, want a.rb", got)
	}
	if errs.Error() != "2 files failed to process (first: b.rb: boom)" {
		t.Errorf("multi Error() = %q", errs.Error())
	}
}

func createTestFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create test file %s: %v", name, err)
	}
	return path
}
