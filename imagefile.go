package main

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/bmp"
)

const timestampLayout = "20060102_150405"

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".bmp"}

func normalizeFormat(format string) (string, error) {
	f := strings.ToLower(strings.TrimPrefix(format, "."))
	switch f {
	case "png", "jpg", "jpeg", "bmp":
		return f, nil
	}
	return "", fmt.Errorf("unsupported image format %q (png, jpg, jpeg, bmp)", format)
}

// ScreenshotName builds prefix_YYYYMMDD_HHMMSS_counter.ext
func ScreenshotName(prefix string, t time.Time, counter int, format string) string {
	return fmt.Sprintf("%s_%s_%d.%s", prefix, t.Format(timestampLayout), counter, format)
}

// maps the 0-9 zlib style level onto the coarser levels image/png offers
func pngCompression(level int) png.CompressionLevel {
	switch {
	case level <= 0:
		return png.DefaultCompression
	case level <= 3:
		return png.BestSpeed
	case level < 9:
		return png.DefaultCompression
	default:
		return png.BestCompression
	}
}

func encodeImage(w io.Writer, img image.Image, format string, compress int) error {
	switch format {
	case "png":
		enc := png.Encoder{CompressionLevel: pngCompression(compress)}
		return enc.Encode(w, img)
	case "jpg", "jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 90})
	case "bmp":
		return bmp.Encode(w, img)
	}
	return fmt.Errorf("unsupported image format %q", format)
}

func writeImageFile(path string, img image.Image, format string, compress int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	if err := encodeImage(f, img, format, compress); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

func isImageFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range imageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func mimeTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".bmp":
		return "image/bmp"
	default:
		return "image/png"
	}
}
