package server

import (
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	gridLine    = color.NRGBA{255, 0, 0, 128}
	gridLabelFg = color.RGBA{255, 255, 255, 255}
	gridLabelBg = color.RGBA{0, 0, 0, 180}
)

// gridOverlay copies img and draws a coordinate grid every spacing pixels,
// labelling each intersection with its "x,y" position.
func gridOverlay(img image.Image, spacing int) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	w, h := out.Bounds().Dx(), out.Bounds().Dy()

	line := image.NewUniform(gridLine)
	for x := spacing; x < w; x += spacing {
		draw.Draw(out, image.Rect(x, 0, x+1, h), line, image.Point{}, draw.Over)
	}
	for y := spacing; y < h; y += spacing {
		draw.Draw(out, image.Rect(0, y, w, y+1), line, image.Point{}, draw.Over)
	}

	face := basicfont.Face7x13
	d := &font.Drawer{Dst: out, Src: image.NewUniform(gridLabelFg), Face: face}
	bg := image.NewUniform(gridLabelBg)
	for y := spacing; y < h; y += spacing {
		for x := spacing; x < w; x += spacing {
			label := strconv.Itoa(x) + "," + strconv.Itoa(y)
			box := image.Rect(x+1, y+1, x+3+d.MeasureString(label).Ceil(), y+3+face.Height)
			draw.Draw(out, box, bg, image.Point{}, draw.Over)
			d.Dot = fixed.P(x+2, y+2+face.Ascent)
			d.DrawString(label)
		}
	}
	return out
}
