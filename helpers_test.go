package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeCapturer hands out a small solid image and remembers the regions asked for
type fakeCapturer struct {
	mu      sync.Mutex
	bounds  image.Rectangle
	regions []Region
	err     error
}

func newFakeCapturer() *fakeCapturer {
	return &fakeCapturer{bounds: image.Rect(0, 0, 64, 32)}
}

func (f *fakeCapturer) Bounds() (image.Rectangle, error) {
	return f.bounds, nil
}

func (f *fakeCapturer) Capture(region Region) (image.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.regions = append(f.regions, region)
	if f.err != nil {
		return nil, f.err
	}

	rect := f.bounds
	if !region.IsZero() {
		rect = image.Rect(0, 0, region.Width, region.Height)
	}
	img := image.NewRGBA(rect)
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			img.SetRGBA(x, y, color.RGBA{200, 120, 40, 255})
		}
	}
	return img, nil
}

// fakeDetector returns canned detections keyed by file name
type fakeDetector struct {
	name    string
	mu      sync.Mutex
	calls   []string
	results map[string]*Detection
	err     error
}

func (f *fakeDetector) Name() string {
	if f.name == "" {
		return "fake"
	}
	return f.name
}

func (f *fakeDetector) Detect(ctx context.Context, path string) (*Detection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, filepath.Base(path))
	if f.err != nil {
		return nil, f.err
	}
	if d, ok := f.results[filepath.Base(path)]; ok {
		return d, nil
	}
	return &Detection{}, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	titles []string
	bodies []string
}

func (n *recordingNotifier) Notify(title, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.titles = append(n.titles, title)
	n.bodies = append(n.bodies, message)
	return nil
}

var errFake = errors.New("boom")

func newTestTaker(t *testing.T, capturer Capturer, format string) *Taker {
	t.Helper()
	taker, err := NewTaker(capturer, TakerOptions{
		Directory: t.TempDir(),
		Interval:  20 * time.Millisecond,
		Format:    format,
		Prefix:    "screenshot",
	})
	require.NoError(t, err)
	return taker
}

// writes n png screenshots through a taker and returns their directory
func writeScreenshots(t *testing.T, n int) string {
	t.Helper()
	taker := newTestTaker(t, newFakeCapturer(), "png")
	for i := 0; i < n; i++ {
		_, err := taker.TakeScreenshot()
		require.NoError(t, err)
	}
	return taker.opts.Directory
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	n := 0
	for _, e := range entries {
		if !e.IsDir() && isImageFile(e.Name()) {
			n++
		}
	}
	return n
}

// syncBuffer is a bytes.Buffer safe for the concurrent writers in Watcher
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
