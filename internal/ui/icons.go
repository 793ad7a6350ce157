package ui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

// Icon dimensions for system tray.
const iconSize = 22

var (
	uploadColor   = color.RGBA{46, 160, 67, 255} // Green
	downloadColor = color.RGBA{218, 54, 51, 255} // Red
)

// iconPNG is the tray icon: a green up arrow next to a red down arrow.
var iconPNG = generateArrowsIcon(uploadColor, downloadColor)

// generateArrowsIcon draws two arrows side by side.
func generateArrowsIcon(up, down color.RGBA) []byte {
	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))

	drawArrow(img, 5, true, up)
	drawArrow(img, 16, false, down)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}

// drawArrow draws a vertical arrow centred on column cx.
func drawArrow(img *image.RGBA, cx int, pointsUp bool, c color.RGBA) {
	const (
		top       = 3
		bottom    = 18
		headDepth = 5
	)

	// Shaft, two pixels wide.
	for y := top; y <= bottom; y++ {
		img.Set(cx, y, c)
		img.Set(cx+1, y, c)
	}

	// Head: a triangle widening away from the tip.
	for i := 0; i < headDepth; i++ {
		y := top + i
		if !pointsUp {
			y = bottom - i
		}
		for x := cx - i; x <= cx+1+i; x++ {
			img.Set(x, y, c)
		}
	}
}
