package main

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/go-vgo/robotgo"
	"github.com/kbinani/screenshot"
)

var ErrNoDisplay = errors.New("no active display found")

const (
	backendRobotgo = "robotgo"
	backendDisplay = "display"
)

// Region is a capture rectangle in screen coordinates. The zero value means
// the whole screen.
type Region struct {
	Left, Top, Width, Height int
}

func (r Region) IsZero() bool {
	return r == Region{}
}

func (r Region) Rect() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Left+r.Width, r.Top+r.Height)
}

func (r Region) String() string {
	if r.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d,%d,%d,%d", r.Left, r.Top, r.Width, r.Height)
}

// parses "left,top,width,height"
func ParseRegion(s string) (Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Region{}, fmt.Errorf("region must have 4 values: left,top,width,height")
	}

	var vals [4]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Region{}, fmt.Errorf("invalid region value %q: %w", p, err)
		}
		vals[i] = v
	}

	r := Region{Left: vals[0], Top: vals[1], Width: vals[2], Height: vals[3]}
	if r.Width <= 0 || r.Height <= 0 {
		return Region{}, fmt.Errorf("region width and height must be positive, got %dx%d", r.Width, r.Height)
	}
	return r, nil
}

// left or right half of the given screen bounds
func HalfRegion(bounds image.Rectangle, half string) (Region, error) {
	halfWidth := bounds.Dx() / 2
	switch half {
	case "left":
		return Region{Left: bounds.Min.X, Top: bounds.Min.Y, Width: halfWidth, Height: bounds.Dy()}, nil
	case "right":
		return Region{Left: bounds.Min.X + halfWidth, Top: bounds.Min.Y, Width: halfWidth, Height: bounds.Dy()}, nil
	}
	return Region{}, fmt.Errorf("invalid screen half %q", half)
}

// Capturer grabs pixels from the screen
type Capturer interface {
	Capture(region Region) (image.Image, error)
	Bounds() (image.Rectangle, error)
}

func newCapturer(backend string, display int) (Capturer, error) {
	switch backend {
	case "", backendRobotgo:
		return robotgoCapturer{}, nil
	case backendDisplay:
		return &displayCapturer{display: display}, nil
	}
	return nil, fmt.Errorf("unknown capture backend %q", backend)
}

type robotgoCapturer struct{}

func (robotgoCapturer) Bounds() (image.Rectangle, error) {
	w, h := robotgo.GetScreenSize()
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, ErrNoDisplay
	}
	return image.Rect(0, 0, w, h), nil
}

func (robotgoCapturer) Capture(region Region) (image.Image, error) {
	var img image.Image
	if region.IsZero() {
		img = robotgo.CaptureImg()
	} else {
		img = robotgo.CaptureImg(region.Left, region.Top, region.Width, region.Height)
	}
	if img == nil {
		return nil, fmt.Errorf("robotgo returned no image")
	}
	return img, nil
}

// captures from a single display through kbinani/screenshot
type displayCapturer struct {
	display int
}

func (c *displayCapturer) Bounds() (image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n <= 0 {
		return image.Rectangle{}, ErrNoDisplay
	}
	if c.display < 0 || c.display >= n {
		return image.Rectangle{}, fmt.Errorf("display %d out of range, %d active", c.display, n)
	}
	return screenshot.GetDisplayBounds(c.display), nil
}

func (c *displayCapturer) Capture(region Region) (image.Image, error) {
	bounds, err := c.Bounds()
	if err != nil {
		return nil, err
	}

	rect := bounds
	if !region.IsZero() {
		rect = region.Rect()
	}

	img, err := screenshot.CaptureRect(rect)
	if err != nil {
		return nil, fmt.Errorf("capturing screen: %w", err)
	}
	return img, nil
}
