// Package colorutil provides shared color utilities for the viewport overlays.
package colorutil

import (
	"image/color"

	"golang.org/x/image/colornames"
)

// Overlay colors used throughout the application.
var (
	Background = color.NRGBA{R: 0xFA, G: 0xFA, B: 0xFA, A: 0xFF}
	Skeleton   = color.NRGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xFF}
	Soma       = nrgba(colornames.Red)
	Selected   = nrgba(colornames.Blue)
	Unselected = nrgba(colornames.Red)
	Hover      = color.NRGBA{R: 0xFF, G: 0xFF, B: 0x00, A: 0x99}
	PointCloud = nrgba(colornames.Cyan)
	Subtree    = nrgba(colornames.Darkorange)
	Mesh       = color.NRGBA{R: 0x90, G: 0x90, B: 0x90, A: 0x60}
	ScaleBar   = color.NRGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xFF}
)

func nrgba(c color.RGBA) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Fade blends c toward bg by t in [0,1]; t=0 leaves c unchanged. Used for
// depth cueing on projected skeleton segments.
func Fade(c, bg color.NRGBA, t float64) color.NRGBA {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	lerp := func(a, b uint8) uint8 {
		return uint8(float64(a) + (float64(b)-float64(a))*t)
	}
	return color.NRGBA{
		R: lerp(c.R, bg.R),
		G: lerp(c.G, bg.G),
		B: lerp(c.B, bg.B),
		A: c.A,
	}
}

// Flatten composites c over an opaque background. The raster viewport does
// no alpha blending, so translucent overlay colors are resolved at draw
// time.
func Flatten(c, bg color.NRGBA) color.NRGBA {
	out := Fade(c, bg, 1-float64(c.A)/0xFF)
	out.A = 0xFF
	return out
}
