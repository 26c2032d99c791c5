package render

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"
)

// TitleCard rasters the request onto a fresh dark canvas of the given size
// with the title block centered. Used for the standalone title image.
func TitleCard(req Request, width, height int) (image.Image, error) {
	dc := gg.NewContext(width, height)
	dc.SetRGB(0.07, 0.07, 0.09)
	dc.Clear()

	size := fontSize(req, height)
	if err := dc.LoadFontFace(req.Font.Path, size); err != nil {
		return nil, fmt.Errorf("load font %q: %w", req.Font.Path, err)
	}

	lines := dc.WordWrap(req.Text, float64(width)*req.MaxWidthFrac)
	lineGap := size * req.LineSpacing
	blockH := float64(len(lines))*size + float64(len(lines)-1)*lineGap
	y := (float64(height)-blockH)/2 + size*0.8

	for _, line := range lines {
		drawShadowed(dc, req, line, float64(width)/2, y)
		y += size + lineGap
	}
	return dc.Image(), nil
}

// Overlay draws the request's text across the bottom of base, wrapped and
// bottom-anchored the way the caption layout works: lines are placed from
// the bottom margin upward over a darkened band.
func Overlay(req Request, base image.Image) (image.Image, error) {
	bounds := base.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	dc := gg.NewContext(width, height)
	dc.DrawImage(base, 0, 0)

	size := fontSize(req, height)
	if err := dc.LoadFontFace(req.Font.Path, size); err != nil {
		return nil, fmt.Errorf("load font %q: %w", req.Font.Path, err)
	}

	lines := dc.WordWrap(req.Text, float64(width)*req.MaxWidthFrac)
	lineGap := size * req.LineSpacing
	blockH := float64(len(lines))*size + float64(len(lines)-1)*lineGap

	// Darkened band behind the text keeps light frames readable.
	bandTop := float64(height) - blockH - float64(req.BottomMargin)*2
	dc.SetRGBA(0, 0, 0, 0.45)
	dc.DrawRectangle(0, bandTop, float64(width), float64(height)-bandTop)
	dc.Fill()

	y := float64(height) - float64(req.BottomMargin)
	for i := len(lines) - 1; i >= 0; i-- {
		drawShadowed(dc, req, lines[i], float64(width)/2, y)
		y -= size + lineGap
	}
	return dc.Image(), nil
}

// SavePNG writes an image to disk. Thin wrapper so callers need no gg import.
func SavePNG(path string, img image.Image) error {
	return gg.SavePNG(path, img)
}

// LoadPNG reads a PNG from disk, for overlaying onto extracted frames.
func LoadPNG(path string) (image.Image, error) {
	return gg.LoadPNG(path)
}

// drawShadowed draws one line with a drop shadow, baseline-anchored and
// horizontally centered at x.
func drawShadowed(dc *gg.Context, req Request, line string, x, y float64) {
	off := float64(req.ShadowOffset)
	dc.SetRGBA(0, 0, 0, 0.6)
	dc.DrawStringAnchored(line, x+off, y+off, 0.5, 0)
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(line, x, y, 0.5, 0)
}

// fontSize resolves the title size for an image height.
func fontSize(req Request, height int) float64 {
	size := float64(height) * req.FontSizeFrac
	if size < req.MinFontSize {
		size = req.MinFontSize
	}
	return size
}
