package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Analyzer runs a detector over every screenshot in a directory
type Analyzer struct {
	Dir      string
	Detector Detector
	Workers  int           // parallelism for local detectors
	Delay    time.Duration // pause between remote calls
	Out      io.Writer     // per image progress, nil for none
}

func NewAnalyzer(dir string, detector Detector) (*Analyzer, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("screenshots directory %q does not exist", dir)
	}
	return &Analyzer{
		Dir:      dir,
		Detector: detector,
		Workers:  4,
		Delay:    time.Second,
		Out:      os.Stdout,
	}, nil
}

// image files in dir, sorted by name
func ListScreenshots(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing screenshots: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !isImageFile(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func (a *Analyzer) AnalyzeAll(ctx context.Context) ([]*Result, error) {
	files, err := ListScreenshots(a.Dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		a.printf("No screenshots found in '%s'\n", a.Dir)
		return nil, nil
	}

	a.printf("Analyzing %d screenshots using %s...\n", len(files), a.Detector.Name())

	if a.Detector.Name() == providerSimulated {
		return a.analyzeParallel(ctx, files), nil
	}
	return a.analyzeSequential(ctx, files), nil
}

// spreads files over a worker pool, results keep the input order
func (a *Analyzer) analyzeParallel(ctx context.Context, files []string) []*Result {
	workers := a.Workers
	if workers < 1 {
		workers = 1
	}

	results := make([]*Result, len(files))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = analyzeFile(ctx, a.Detector, files[idx])
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// one file at a time, Delay between calls
func (a *Analyzer) analyzeSequential(ctx context.Context, files []string) []*Result {
	var results []*Result
	for i, path := range files {
		if ctx.Err() != nil {
			break
		}

		a.printf("Analyzing %s...\n", filepath.Base(path))
		result := analyzeFile(ctx, a.Detector, path)
		if result.Status == statusError {
			slog.Error("error processing screenshot", "file", path, "err", result.Error)
		}
		results = append(results, result)
		if a.Out != nil {
			printResultLine(a.Out, result)
		}

		if i < len(files)-1 && a.Delay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(a.Delay):
			}
		}
	}
	return results
}

func (a *Analyzer) printf(format string, args ...any) {
	if a.Out != nil {
		fmt.Fprintf(a.Out, format, args...)
	}
}
