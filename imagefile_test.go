package main

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScreenshotName(t *testing.T) {
	ts := time.Date(2024, 3, 7, 9, 5, 2, 0, time.Local)
	assert.Equal(t, "screenshot_20240307_090502_0.png", ScreenshotName("screenshot", ts, 0, "png"))
	assert.Equal(t, "lunch_20240307_090502_12.jpg", ScreenshotName("lunch", ts, 12, "jpg"))
}

func TestNormalizeFormat(t *testing.T) {
	for _, in := range []string{"png", "PNG", ".jpg", "jpeg", "bmp"} {
		_, err := normalizeFormat(in)
		assert.NoError(t, err, in)
	}

	f, err := normalizeFormat("JPEG")
	require.NoError(t, err)
	assert.Equal(t, "jpeg", f)

	_, err = normalizeFormat("gif")
	assert.Error(t, err)
}

func TestPNGCompression(t *testing.T) {
	assert.Equal(t, png.DefaultCompression, pngCompression(0))
	assert.Equal(t, png.BestSpeed, pngCompression(1))
	assert.Equal(t, png.BestSpeed, pngCompression(3))
	assert.Equal(t, png.DefaultCompression, pngCompression(6))
	assert.Equal(t, png.BestCompression, pngCompression(9))
	assert.Equal(t, png.BestCompression, pngCompression(42))
}

func TestWriteImageFile_Formats(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 6))
	dir := t.TempDir()

	for _, format := range []string{"png", "jpg", "bmp"} {
		t.Run(format, func(t *testing.T) {
			path := filepath.Join(dir, "shot."+format)
			require.NoError(t, writeImageFile(path, src, format, 9))

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, 10, cfg.Width)
			assert.Equal(t, 6, cfg.Height)
		})
	}
}

func TestWriteImageFile_UnknownFormatLeavesNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.tiff")
	err := writeImageFile(path, image.NewRGBA(image.Rect(0, 0, 1, 1)), "tiff", 0)
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestIsImageFile(t *testing.T) {
	assert.True(t, isImageFile("a.png"))
	assert.True(t, isImageFile("a.JPG"))
	assert.True(t, isImageFile("a.jpeg"))
	assert.True(t, isImageFile("a.bmp"))
	assert.False(t, isImageFile("snapcal.db"))
	assert.False(t, isImageFile("notes.txt"))
}

func TestMimeTypeFor(t *testing.T) {
	assert.Equal(t, "image/png", mimeTypeFor("a.png"))
	assert.Equal(t, "image/jpeg", mimeTypeFor("a.jpg"))
	assert.Equal(t, "image/jpeg", mimeTypeFor("a.JPEG"))
	assert.Equal(t, "image/bmp", mimeTypeFor("a.bmp"))
}
