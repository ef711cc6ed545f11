package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type TakerOptions struct {
	Directory string
	Interval  time.Duration
	Format    string
	Prefix    string
	Region    Region
	Compress  int
}

// Taker captures the screen and writes numbered, timestamped image files.
// TakeScreenshot is safe for concurrent use.
type Taker struct {
	capturer Capturer
	opts     TakerOptions
	now      func() time.Time

	mu      sync.Mutex
	counter int
}

func NewTaker(capturer Capturer, opts TakerOptions) (*Taker, error) {
	format, err := normalizeFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	opts.Format = format

	if opts.Prefix == "" {
		opts.Prefix = "screenshot"
	}
	if opts.Compress > 9 {
		opts.Compress = 9
	}

	if err := os.MkdirAll(opts.Directory, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	if abs, err := filepath.Abs(opts.Directory); err == nil {
		slog.Info("screenshots will be saved to", "dir", abs)
	}

	return &Taker{
		capturer: capturer,
		opts:     opts,
		now:      time.Now,
	}, nil
}

// number of screenshots successfully written
func (t *Taker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counter
}

// capture a screenshot and save it with a timestamp, returns the file path
func (t *Taker) TakeScreenshot() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	filename := ScreenshotName(t.opts.Prefix, t.now(), t.counter, t.opts.Format)
	path := filepath.Join(t.opts.Directory, filename)

	img, err := t.capturer.Capture(t.opts.Region)
	if err != nil {
		return "", fmt.Errorf("taking screenshot: %w", err)
	}

	compress := 0
	if t.opts.Format == "png" {
		compress = t.opts.Compress
	}
	if err := writeImageFile(path, img, t.opts.Format, compress); err != nil {
		return "", err
	}

	t.counter++
	slog.Info("screenshot saved", "n", t.counter, "file", filename)
	return path, nil
}

// delay until the next tick so that ticks stay aligned to start
func nextDelay(start, now time.Time, interval time.Duration) time.Duration {
	if interval <= 0 {
		return 0
	}
	elapsed := now.Sub(start)
	if elapsed < 0 {
		return interval
	}
	return interval - elapsed%interval
}

// Run takes a screenshot every interval until ctx is cancelled. onShot, if
// not nil, is called with each saved path.
func (t *Taker) Run(ctx context.Context, onShot func(path string)) error {
	if t.opts.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", t.opts.Interval)
	}

	slog.Info("starting screenshot capture", "interval", t.opts.Interval)
	start := time.Now()

	for {
		path, err := t.TakeScreenshot()
		if err != nil {
			slog.Error("error taking screenshot", "err", err)
		} else if onShot != nil {
			onShot(path)
		}

		timer := time.NewTimer(nextDelay(start, time.Now(), t.opts.Interval))
		select {
		case <-ctx.Done():
			timer.Stop()
			slog.Info("screenshot capture stopped", "total", t.Count())
			return nil
		case <-timer.C:
		}
	}
}
