// Package render turns a corrected title phrase into a composition request
// and rasters it: a standalone title card or a caption overlay on a frame.
// Compose is pure orchestration; only the Render functions touch pixels.
package render

import (
	"github.com/backmassage/stillcap/internal/fonts"
	"github.com/backmassage/stillcap/internal/title"
)

// Request carries everything the rendering primitive needs: the final
// corrected text, the chosen font, and layout hints. Hints mirror the
// card layout defaults; callers may adjust them before rendering.
type Request struct {
	Text string
	Font fonts.Descriptor

	MaxWidthFrac float64 // Text block width as a fraction of image width.
	FontSizeFrac float64 // Title size as a fraction of image height.
	MinFontSize  float64 // Lower bound on the title size in points.
	LineSpacing  float64 // Extra spacing between wrapped lines, fraction of font size.
	BottomMargin int     // Pixels between the last line and the bottom edge.
	ShadowOffset int     // Drop-shadow offset in pixels.
}

// Layout defaults; sized against a 1080p canvas.
const (
	defaultMaxWidthFrac = 0.6
	defaultFontSizeFrac = 0.12
	defaultMinFontSize  = 60
	defaultLineSpacing  = 0.25
	defaultBottomMargin = 40
	defaultShadowOffset = 2
)

// Compose builds the rendering request for a checked phrase. It fails with
// [fonts.ErrNoFontSelected] when the descriptor is empty; an empty phrase
// is the caller's concern (it means "no title available", not an error
// here).
func Compose(p title.Phrase, font fonts.Descriptor) (Request, error) {
	if font.Zero() {
		return Request{}, fonts.ErrNoFontSelected
	}
	return Request{
		Text:         p.String(),
		Font:         font,
		MaxWidthFrac: defaultMaxWidthFrac,
		FontSizeFrac: defaultFontSizeFrac,
		MinFontSize:  defaultMinFontSize,
		LineSpacing:  defaultLineSpacing,
		BottomMargin: defaultBottomMargin,
		ShadowOffset: defaultShadowOffset,
	}, nil
}
