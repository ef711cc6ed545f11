package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

var (
	iconBlue  = circleIcon(color.RGBA{0x2d, 0x6c, 0xdf, 0xff})
	iconRed   = circleIcon(color.RGBA{0xd9, 0x38, 0x38, 0xff})
	iconGreen = circleIcon(color.RGBA{0x2e, 0xa0, 0x43, 0xff})
	iconGrey  = circleIcon(color.RGBA{0x88, 0x88, 0x88, 0xff})
)

// 32x32 PNG with a filled circle, used for the tray states
func circleIcon(c color.RGBA) []byte {
	const size = 32
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	center := float64(size-1) / 2
	radius := float64(size)/2 - 1

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x)-center, float64(y)-center
			if dx*dx+dy*dy <= radius*radius {
				img.SetRGBA(x, y, c)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
