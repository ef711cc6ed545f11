package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
)

// Monitor ties a taker to a detector: every screenshot is analyzed as soon
// as it is written. The HTTP API and the tray drive the same Monitor.
type Monitor struct {
	Taker    *Taker
	Detector Detector // nil disables analysis
	Notifier Notifier
	History  *History
	Store    *ResultStore // optional
	Out      io.Writer
}

// analyze one saved screenshot, report it and record it
func (m *Monitor) Analyze(ctx context.Context, path string) *Result {
	fmt.Fprintf(m.Out, "Analyzing %s...\n", filepath.Base(path))

	result := analyzeFile(ctx, m.Detector, path)
	printResultLine(m.Out, result)

	switch {
	case result.Status == statusError:
		slog.Error("error processing screenshot", "file", path, "err", result.Error)
		sendNotification(m.Notifier, "Calorie Monitor Error", "Error: "+truncate(result.Error, notifySubtitleMax))
	case result.HasFood():
		foods := truncate(strings.Join(result.FoodItems, ", "), notifySubtitleMax)
		sendNotification(m.Notifier, "Food Detected!", fmt.Sprintf("%d calories detected\n%s", result.Calories, foods))
	}

	m.History.Append(result)
	if m.Store != nil {
		if err := m.Store.Save(result); err != nil {
			slog.Error("saving result", "err", err)
		}
	}
	return result
}

// take one screenshot and record it without analysis
func (m *Monitor) Shoot() (string, error) {
	path, err := m.Taker.TakeScreenshot()
	if err != nil {
		return "", err
	}
	m.History.RecordShot(path)
	return path, nil
}

// take one screenshot and, when a detector is configured, analyze it
func (m *Monitor) CaptureOnce(ctx context.Context) (string, *Result, error) {
	path, err := m.Shoot()
	if err != nil {
		return "", nil, err
	}

	if m.Detector == nil {
		return path, nil, nil
	}
	return path, m.Analyze(ctx, path), nil
}

// Run captures and analyzes every interval until ctx is done
func (m *Monitor) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", interval)
	}

	sendNotification(m.Notifier, "Calorie Monitor Started", "Taking screenshots and analyzing for food")
	fmt.Fprintf(m.Out, "Taking screenshots every %v\n", interval)
	fmt.Fprintln(m.Out, "Press Ctrl+C to stop.")

	for {
		if _, _, err := m.CaptureOnce(ctx); err != nil {
			slog.Error("error taking screenshot", "err", err)
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			fmt.Fprintln(m.Out, "\nCalorie Monitor stopped.")
			fmt.Fprintf(m.Out, "Total screenshots taken: %d\n", m.Taker.Count())
			return nil
		case <-timer.C:
		}
	}
}
