package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Watcher runs the capture loop and a periodic batch analysis side by side
type Watcher struct {
	Taker            *Taker
	Analyzer         *Analyzer
	History          *History
	Store            *ResultStore // optional
	AnalysisInterval time.Duration
	Out              io.Writer
}

func (w *Watcher) Run(ctx context.Context) error {
	if w.AnalysisInterval <= 0 {
		return fmt.Errorf("analysis interval must be positive, got %v", w.AnalysisInterval)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, 1)

	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := w.Taker.Run(ctx, w.History.RecordShot); err != nil {
			errCh <- err
			cancel()
		}
	}()
	go func() {
		defer wg.Done()
		w.analyzePeriodically(ctx)
	}()

	fmt.Fprintln(w.Out, "Press Ctrl+C to stop.")
	wg.Wait()
	fmt.Fprintln(w.Out, "\nShutting down...")

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}

// the first pass runs one full interval after start
func (w *Watcher) analyzePeriodically(ctx context.Context) {
	fmt.Fprintf(w.Out, "Calorie analysis (%s) will run every %v.\n", w.Analyzer.Detector.Name(), w.AnalysisInterval)

	ticker := time.NewTicker(w.AnalysisInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		fmt.Fprintf(w.Out, "\n--- Running %s calorie analysis ---\n", w.Analyzer.Detector.Name())
		results, err := w.Analyzer.AnalyzeAll(ctx)
		if err != nil {
			slog.Error("calorie analysis failed", "err", err)
			continue
		}

		w.History.Append(results...)
		if w.Store != nil && len(results) > 0 {
			if err := w.Store.Save(results...); err != nil {
				slog.Error("saving results", "err", err)
			}
		}
		if w.Analyzer.Detector.Name() == providerSimulated {
			PrintReport(w.Out, providerSimulated, results)
		} else {
			PrintSummary(w.Out, results)
		}
	}
}
